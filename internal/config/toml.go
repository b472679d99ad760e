// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Match MatchConfig `toml:"match"`
	Store StoreConfig `toml:"store"`
}

// MatchConfig holds defaults for new matches.
type MatchConfig struct {
	TeamA *string `toml:"team-a"`
	TeamB *string `toml:"team-b"`
	Overs *int    `toml:"overs"`
}

// StoreConfig points at the SQLite database.
type StoreConfig struct {
	Path *string `toml:"path"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if cfg.Match.Overs != nil && *cfg.Match.Overs < 1 {
		return FileConfig{}, fmt.Errorf("match.overs must be at least 1, got %d", *cfg.Match.Overs)
	}
	return cfg, nil
}
