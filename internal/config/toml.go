// Package config provides configuration helpers and TOML parsing.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Profile  ProfileConfig  `toml:"profile"`
	Sync     SyncConfig     `toml:"sync"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Lang       *string  `toml:"lang,omitempty"`
	Words      *int     `toml:"words,omitempty"`
	Duration   *int     `toml:"duration,omitempty"`
	CapsPct    *float64 `toml:"caps,omitempty"`
	PunctPct   *float64 `toml:"punct,omitempty"`
	PunctSet   *string  `toml:"punct-set,omitempty"`
	FocusWeak  *bool    `toml:"focus-weak,omitempty"`
	WeakTop    *int     `toml:"weak-top,omitempty"`
	WeakFactor *float64 `toml:"weak-factor,omitempty"`
	WeakWindow *int     `toml:"weak-window,omitempty"`
}

// ProfileConfig names the local user.
type ProfileConfig struct {
	Name   string `toml:"name,omitempty"`
	UserID string `toml:"user-id,omitempty"`
}

// SyncConfig points at a results server.
type SyncConfig struct {
	URL   string `toml:"url,omitempty"`
	Token string `toml:"token,omitempty"`
}

// Enabled reports whether results should be sent to a server.
func (s SyncConfig) Enabled() bool {
	return s.URL != ""
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories. The file is
// private to the user because it may hold a sync token.
func SaveConfig(path string, cfg FileConfig) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
