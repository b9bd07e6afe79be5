package config

import (
	"fmt"

	"mediacopier/internal/services"
)

// Validate ensures the configuration is usable. Failures carry the
// validation sentinel so callers can abort before any filesystem work.
func (c *Config) Validate() error {
	if err := c.validateRules(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRules() error {
	if c.Rules.MinSizeMB < 0 {
		return validationError("rules.min_size_mb must be >= 0")
	}
	if c.Rules.MinDurationSeconds < 0 {
		return validationError("rules.min_duration_seconds must be >= 0")
	}
	if c.Rules.FuzzyThreshold < 0 || c.Rules.FuzzyThreshold > 100 {
		return validationError("rules.fuzzy_threshold must be between 0 and 100")
	}
	if c.Rules.MaxCandidates < 1 {
		return validationError("rules.max_candidates must be >= 1")
	}
	switch c.Rules.OrganizationMode {
	case "single_folder", "scatter_by_artist", "scatter_by_genre", "folder_per_request", "keep_relative":
	default:
		return validationError(fmt.Sprintf("rules.organization_mode %q is not recognized", c.Rules.OrganizationMode))
	}
	switch c.Rules.CollisionStrategy {
	case "skip", "rename", "compare_size", "compare_hash":
	default:
		return validationError(fmt.Sprintf("rules.collision_strategy %q is not recognized", c.Rules.CollisionStrategy))
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ProgressIntervalMS <= 0 {
		return validationError("workflow.progress_interval_ms must be positive")
	}
	return nil
}

func validationError(message string) error {
	return fmt.Errorf("%w: %s", services.ErrValidation, message)
}
