// Package config loads the application configuration from TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Listen   string         `koanf:"listen"`    // HTTP listen address
	SpoolDir string         `koanf:"spool_dir"` // where uploads are stored
	LogLevel string         `koanf:"log_level"` // logrus level name
	Playback PlaybackConfig `koanf:"playback"`
	Artwork  ArtworkConfig  `koanf:"artwork"`
}

// PlaybackConfig holds initial transport settings.
type PlaybackConfig struct {
	InitialVolume float64 `koanf:"initial_volume"` // 0.0 to 1.0 (default: 1.0)
}

// ArtworkConfig holds cover art extraction settings.
type ArtworkConfig struct {
	MaxEdge int `koanf:"max_edge"` // largest kept width/height in pixels (default: 600)
}

// Load reads configuration from the standard locations, later files
// overriding earlier ones.
func Load() (*Config, error) {
	return loadFrom(configPaths())
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.SpoolDir != "" {
		cfg.SpoolDir = expandPath(cfg.SpoolDir)
	} else {
		cfg.SpoolDir = filepath.Join(xdg.DataHome, "strum", "uploads")
	}

	if cfg.Playback.InitialVolume < 0 || cfg.Playback.InitialVolume > 1 {
		return nil, fmt.Errorf("playback.initial_volume %v out of range [0,1]", cfg.Playback.InitialVolume)
	}
	if cfg.Artwork.MaxEdge <= 0 {
		cfg.Artwork.MaxEdge = 600
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Playback: PlaybackConfig{InitialVolume: 1.0},
		Artwork:  ArtworkConfig{MaxEdge: 600},
	}
}

func configPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/strum/config.toml
		filepath.Join(xdg.ConfigHome, "strum", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
