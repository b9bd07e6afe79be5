package testsupport

import (
	"path/filepath"
	"testing"

	"mediacopier/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Sources = []string{filepath.Join(base, "sources")}
	cfg.Paths.Destination = filepath.Join(base, "destination")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Paths.JobDB = filepath.Join(base, "jobs.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithSources replaces the configured source roots.
func WithSources(sources ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.Sources = sources
	}
}

// WithOrganizationMode sets the destination layout mode.
func WithOrganizationMode(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rules.OrganizationMode = mode
	}
}

// WithCollisionStrategy sets the collision strategy.
func WithCollisionStrategy(strategy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Rules.CollisionStrategy = strategy
	}
}
