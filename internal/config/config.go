package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MusicFolder string `koanf:"music_folder"` // folder offered when adding tracks; empty means cwd

	Analyzer AnalyzerConfig `koanf:"analyzer"`
	History  HistoryConfig  `koanf:"history"`
}

// AnalyzerConfig holds level-meter settings.
type AnalyzerConfig struct {
	WindowSize int `koanf:"window_size"` // samples per reading (default: 2048)
}

// HistoryConfig holds listening-history settings.
type HistoryConfig struct {
	RecentLimit int `koanf:"recent_limit"` // recently-played entries kept (default: 25)
	TopCount    int `koanf:"top_count"`    // most-played entries shown (default: 10)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.MusicFolder != "" {
		cfg.MusicFolder = expandPath(cfg.MusicFolder)
	}
	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Analyzer.WindowSize < 2 {
		cfg.Analyzer.WindowSize = 2048
	}
	if cfg.History.RecentLimit <= 0 {
		cfg.History.RecentLimit = 25
	}
	if cfg.History.TopCount <= 0 {
		cfg.History.TopCount = 10
	}
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/cadence/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "cadence", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
