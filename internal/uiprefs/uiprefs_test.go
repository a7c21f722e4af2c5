package uiprefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != DefaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, DefaultTheme)
	}
	if p.ShowSources {
		t.Fatalf("ShowSources = true, want false")
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "roost")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ui.toml"), []byte("theme = \"Slate\"\nshow_sources = true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" || !p.ShowSources {
		t.Fatalf("Load = %+v, want Slate with sources", p)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "ui.toml")

	if err := Save(path, Prefs{Theme: "Kanagawa", ShowSources: true}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded := Load(path)
	if loaded.Theme != "Kanagawa" || !loaded.ShowSources {
		t.Fatalf("Load = %+v, want saved prefs", loaded)
	}
}

func TestLoad_DegradesGracefully(t *testing.T) {
	tests := map[string]string{
		"empty theme":  "theme = \"\"\n",
		"invalid toml": "not valid toml {{{\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ui.toml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			if p := Load(path); p.Theme != DefaultTheme {
				t.Fatalf("Theme = %q, want %q", p.Theme, DefaultTheme)
			}
		})
	}
}
