// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Run RunConfig `toml:"run"`
}

// RunConfig maps counter page settings. Nil fields were not set.
type RunConfig struct {
	Namespace  *string  `toml:"namespace"`
	Marker     *string  `toml:"marker"`
	RootMargin *float64 `toml:"root-margin"`
	Threshold  *float64 `toml:"threshold"`
	Legacy     *bool    `toml:"legacy"`
	Locale     *string  `toml:"locale"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if cfg.Run.Threshold != nil && (*cfg.Run.Threshold < 0 || *cfg.Run.Threshold > 1) {
		return FileConfig{}, fmt.Errorf("threshold must be between 0 and 1, got %v", *cfg.Run.Threshold)
	}
	return cfg, nil
}
