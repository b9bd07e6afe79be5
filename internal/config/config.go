package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains source, destination, and working directory configuration.
type Paths struct {
	Sources     []string `toml:"sources"`
	Destination string   `toml:"destination"`
	CacheDir    string   `toml:"cache_dir"`
	LogDir      string   `toml:"log_dir"`
	ReportDir   string   `toml:"report_dir"`
	JobDB       string   `toml:"job_db"`
}

// Rules contains filtering, matching, and copy-behavior settings.
type Rules struct {
	AllowedAudioExtensions []string `toml:"allowed_audio_extensions"`
	AllowedVideoExtensions []string `toml:"allowed_video_extensions"`
	BlockedExtensions      []string `toml:"blocked_extensions"`
	MinSizeMB              int      `toml:"min_size_mb"`
	MinDurationSeconds     int      `toml:"min_duration_seconds"`
	ExclusionWords         []string `toml:"exclusion_words"`
	FuzzyThreshold         int      `toml:"fuzzy_threshold"`
	MaxCandidates          int      `toml:"max_candidates"`
	SoloBestMatch          bool     `toml:"solo_best_match"`
	OrganizationMode       string   `toml:"organization_mode"`
	CollisionStrategy      string   `toml:"collision_strategy"`
	DryRun                 bool     `toml:"dry_run"`
	IncludeSubfolders      bool     `toml:"include_subfolders"`
}

// Matching contains scoring heuristic toggles and tuning.
type Matching struct {
	SongPenalties   bool     `toml:"song_penalties"`
	BonusWords      bool     `toml:"bonus_words"`
	ResolutionBonus bool     `toml:"resolution_bonus"`
	PreferredCodecs []string `toml:"preferred_codecs"`
}

// Workflow contains runner timing settings.
type Workflow struct {
	ProgressIntervalMS int `toml:"progress_interval_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for MediaCopier.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Rules    Rules    `toml:"rules"`
	Matching Matching `toml:"matching"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediacopier/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/mediacopier/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediacopier.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the working directories used across commands.
// The destination is created on a best-effort basis so commands that never
// write (scan, match) can run while external storage is offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir, c.Paths.ReportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dir := filepath.Dir(c.Paths.JobDB); strings.TrimSpace(dir) != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create job db directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.Destination) != "" {
		_ = os.MkdirAll(c.Paths.Destination, 0o755)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
