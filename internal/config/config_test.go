package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if exists {
		t.Error("Load() reported a file that does not exist")
	}
	if resolved != path {
		t.Errorf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Matching.ClassicThreshold != defaultClassicThreshold {
		t.Errorf("classic threshold = %v, want default %v", cfg.Matching.ClassicThreshold, defaultClassicThreshold)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
download_dir = "` + dir + `/dl"

[matching]
day_window = 2
stage_threshold = 0.5

[jellyfin]
enabled = true
url = "http://media.local:8096/"
api_key = "abc"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !exists {
		t.Fatal("Load() should report the file exists")
	}
	if cfg.Matching.DayWindow != 2 {
		t.Errorf("day window = %d, want 2", cfg.Matching.DayWindow)
	}
	if cfg.Matching.StageThreshold != 0.5 {
		t.Errorf("stage threshold = %v, want 0.5", cfg.Matching.StageThreshold)
	}
	if strings.HasSuffix(cfg.Jellyfin.URL, "/") {
		t.Errorf("jellyfin url not trimmed: %q", cfg.Jellyfin.URL)
	}
	if cfg.Paths.DownloadDir != filepath.Join(dir, "dl") {
		t.Errorf("download dir = %q", cfg.Paths.DownloadDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty library dir", func(c *Config) { c.Paths.LibraryDir = "" }},
		{"threshold above one", func(c *Config) { c.Matching.ClassicThreshold = 1.5 }},
		{"negative window", func(c *Config) { c.Matching.DayWindow = -1 }},
		{"jellyfin enabled without url", func(c *Config) { c.Jellyfin.Enabled = true }},
		{"non-http feed base", func(c *Config) { c.Feeds.BaseURL = "ftp://feeds" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize() error = %v", err)
			}
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should have failed")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample() error = %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Error("WriteSample() should refuse to overwrite")
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load(sample) error = %v", err)
	}
	if !exists {
		t.Fatal("sample config should exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config should validate: %v", err)
	}
}
