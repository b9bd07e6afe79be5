package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRules()
	c.normalizeMatching()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error

	sources := make([]string, 0, len(c.Paths.Sources))
	seen := make(map[string]struct{}, len(c.Paths.Sources))
	for _, source := range c.Paths.Sources {
		if strings.TrimSpace(source) == "" {
			continue
		}
		expanded, err := expandPath(source)
		if err != nil {
			return fmt.Errorf("paths.sources: %w", err)
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		sources = append(sources, expanded)
	}
	c.Paths.Sources = sources

	if strings.TrimSpace(c.Paths.Destination) != "" {
		if c.Paths.Destination, err = expandPath(c.Paths.Destination); err != nil {
			return fmt.Errorf("paths.destination: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JobDB) == "" {
		c.Paths.JobDB = defaultJobDB
	}
	if c.Paths.JobDB, err = expandPath(c.Paths.JobDB); err != nil {
		return fmt.Errorf("paths.job_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeRules() {
	c.Rules.AllowedAudioExtensions = normalizeExtensions(c.Rules.AllowedAudioExtensions, defaultAudioExtensions())
	c.Rules.AllowedVideoExtensions = normalizeExtensions(c.Rules.AllowedVideoExtensions, defaultVideoExtensions())
	c.Rules.BlockedExtensions = normalizeExtensions(c.Rules.BlockedExtensions, nil)
	c.Rules.ExclusionWords = normalizeWords(c.Rules.ExclusionWords)

	if c.Rules.MaxCandidates <= 0 {
		c.Rules.MaxCandidates = defaultMaxCandidates
	}
	c.Rules.OrganizationMode = strings.ToLower(strings.TrimSpace(c.Rules.OrganizationMode))
	if c.Rules.OrganizationMode == "" {
		c.Rules.OrganizationMode = defaultMode
	}
	c.Rules.CollisionStrategy = strings.ToLower(strings.TrimSpace(c.Rules.CollisionStrategy))
	if c.Rules.CollisionStrategy == "" {
		c.Rules.CollisionStrategy = defaultStrategy
	}
}

func (c *Config) normalizeMatching() {
	codecs := normalizeWords(c.Matching.PreferredCodecs)
	if len(codecs) == 0 {
		codecs = defaultPreferredCodecs()
	}
	c.Matching.PreferredCodecs = codecs
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ProgressIntervalMS <= 0 {
		c.Workflow.ProgressIntervalMS = defaultProgressMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeExtensions(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func normalizeWords(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		word := strings.ToLower(strings.TrimSpace(value))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}
