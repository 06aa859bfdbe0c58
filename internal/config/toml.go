// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
}

// PracticeConfig maps practice-related settings. Pointer fields
// distinguish "unset" from explicit zero values.
type PracticeConfig struct {
	Difficulty *string  `toml:"difficulty"`
	Timed      *bool    `toml:"timed"`
	TimeLimit  *int     `toml:"time-limit"`
	Questions  *int     `toml:"questions"`
	Low        *string  `toml:"low"`
	High       *string  `toml:"high"`
	Exclusions []string `toml:"exclusions"`
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
