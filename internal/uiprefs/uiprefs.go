// Package uiprefs persists terminal UI choices in ~/.config/roost/ui.toml.
//
// These are local to the terminal front end and never sent to the host.
package uiprefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/roost/internal/config"
)

// Prefs holds UI preferences.
type Prefs struct {
	Theme       string `toml:"theme"`
	ShowSources bool   `toml:"show_sources"`
}

const (
	defaultPath  = "~/.config/roost/ui.toml"
	DefaultTheme = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPath
}

// Load reads preferences from path. Any failure yields defaults; a broken UI
// preferences file should never keep roost from starting.
func Load(path string) Prefs {
	prefs := Prefs{Theme: DefaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Prefs{Theme: DefaultTheme}
	}
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = DefaultTheme
	}
	return prefs
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPath
	}
	return config.ExpandPath(path)
}
