package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MusicFolder != "" {
		t.Errorf("MusicFolder = %q, want empty", cfg.MusicFolder)
	}
	if cfg.Analyzer.WindowSize != 2048 {
		t.Errorf("Analyzer.WindowSize = %d, want 2048", cfg.Analyzer.WindowSize)
	}
	if cfg.History.RecentLimit != 25 {
		t.Errorf("History.RecentLimit = %d, want 25", cfg.History.RecentLimit)
	}
	if cfg.History.TopCount != 10 {
		t.Errorf("History.TopCount = %d, want 10", cfg.History.TopCount)
	}
}

func TestLoadFromWorkingDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
music_folder = "/music"

[analyzer]
window_size = 4096

[history]
recent_limit = 50
top_count = 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MusicFolder != "/music" {
		t.Errorf("MusicFolder = %q, want /music", cfg.MusicFolder)
	}
	if cfg.Analyzer.WindowSize != 4096 {
		t.Errorf("Analyzer.WindowSize = %d, want 4096", cfg.Analyzer.WindowSize)
	}
	if cfg.History.RecentLimit != 50 {
		t.Errorf("History.RecentLimit = %d, want 50", cfg.History.RecentLimit)
	}
	if cfg.History.TopCount != 5 {
		t.Errorf("History.TopCount = %d, want 5", cfg.History.TopCount)
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()
	t.Chdir(dir)

	content := `music_folder = "~/Music"`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(home, "Music")
	if cfg.MusicFolder != want {
		t.Errorf("MusicFolder = %q, want %q", cfg.MusicFolder, want)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
[analyzer]
window_size = 0

[history]
recent_limit = -3
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analyzer.WindowSize != 2048 {
		t.Errorf("Analyzer.WindowSize = %d, want default 2048", cfg.Analyzer.WindowSize)
	}
	if cfg.History.RecentLimit != 25 {
		t.Errorf("History.RecentLimit = %d, want default 25", cfg.History.RecentLimit)
	}
}
