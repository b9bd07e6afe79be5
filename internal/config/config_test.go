package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediacopier/internal/services"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
destination = "/tmp/dest"
`)
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Rules.FuzzyThreshold != 60 {
		t.Errorf("FuzzyThreshold = %d, want 60", cfg.Rules.FuzzyThreshold)
	}
	if cfg.Rules.MaxCandidates != 10 {
		t.Errorf("MaxCandidates = %d, want 10", cfg.Rules.MaxCandidates)
	}
	if cfg.Rules.OrganizationMode != "single_folder" {
		t.Errorf("OrganizationMode = %q", cfg.Rules.OrganizationMode)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("Logging.Format = %q", cfg.Logging.Format)
	}
	if len(cfg.Rules.AllowedAudioExtensions) == 0 {
		t.Error("expected default audio extensions")
	}
}

func TestLoadExpandsAndDeduplicatesSources(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
[paths]
sources = ["`+dir+`", "`+dir+`", "  "]
destination = "/tmp/dest"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Paths.Sources) != 1 {
		t.Fatalf("Sources = %v, want single entry", cfg.Paths.Sources)
	}
	if !filepath.IsAbs(cfg.Paths.Sources[0]) {
		t.Errorf("source not absolute: %q", cfg.Paths.Sources[0])
	}
}

func TestLoadNormalizesExtensions(t *testing.T) {
	path := writeConfig(t, `
[rules]
allowed_audio_extensions = ["MP3", ".Flac", "mp3"]
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{".mp3", ".flac"}
	if len(cfg.Rules.AllowedAudioExtensions) != len(want) {
		t.Fatalf("extensions = %v, want %v", cfg.Rules.AllowedAudioExtensions, want)
	}
	for i, ext := range want {
		if cfg.Rules.AllowedAudioExtensions[i] != ext {
			t.Errorf("extensions[%d] = %q, want %q", i, cfg.Rules.AllowedAudioExtensions[i], ext)
		}
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		keyword string
	}{
		{"negative min size", func(c *Config) { c.Rules.MinSizeMB = -1 }, "min_size_mb"},
		{"negative min duration", func(c *Config) { c.Rules.MinDurationSeconds = -5 }, "min_duration_seconds"},
		{"threshold too high", func(c *Config) { c.Rules.FuzzyThreshold = 101 }, "fuzzy_threshold"},
		{"unknown mode", func(c *Config) { c.Rules.OrganizationMode = "sideways" }, "organization_mode"},
		{"unknown strategy", func(c *Config) { c.Rules.CollisionStrategy = "overwrite" }, "collision_strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Errorf("error not tagged as validation: %v", err)
			}
			if !strings.Contains(err.Error(), tt.keyword) {
				t.Errorf("error %q missing %q", err.Error(), tt.keyword)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("exists should be false for a missing file")
	}
	if cfg.Rules.FuzzyThreshold != 60 {
		t.Errorf("FuzzyThreshold = %d, want default", cfg.Rules.FuzzyThreshold)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
