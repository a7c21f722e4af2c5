package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds roost's runtime settings.
type Config struct {
	HostAPIBind string
	CacheDir    string
	LogFile     string
	LogLevel    string
}

const (
	defaultConfigPath  = "~/.config/roost/config.toml"
	defaultHostAPIBind = "127.0.0.1:7621"
	defaultCacheDir    = "~/.cache/roost"
	defaultLogFile     = "~/.local/state/roost/roost.log"
	defaultLogLevel    = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		HostAPIBind: defaultHostAPIBind,
		CacheDir:    mustExpand(defaultCacheDir),
		LogFile:     mustExpand(defaultLogFile),
		LogLevel:    defaultLogLevel,
	}
}

// Load parses the config at path, or the default location when path is
// empty. A missing file yields Default.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		HostAPIBind string `toml:"host_api_bind"`
		CacheDir    string `toml:"cache_dir"`
		LogFile     string `toml:"log_file"`
		LogLevel    string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return Config{
		HostAPIBind: orDefault(raw.HostAPIBind, defaultHostAPIBind),
		CacheDir:    mustExpand(orDefault(raw.CacheDir, defaultCacheDir)),
		LogFile:     mustExpand(orDefault(raw.LogFile, defaultLogFile)),
		LogLevel:    strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel)),
	}, nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
