package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"mediacopier/internal/catalog"
	"mediacopier/internal/config"
	"mediacopier/internal/matcher"
	"mediacopier/internal/media"
	"mediacopier/internal/media/ffprobe"
	"mediacopier/internal/planner"
	"mediacopier/internal/request"
)

// buildCatalog scans the configured sources, using the on-disk cache when
// still valid. probe enables ffprobe metadata extraction; noCache forces a
// fresh scan.
func buildCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger, probe, noCache bool) (*catalog.Catalog, error) {
	extensions := make([]string, 0, len(cfg.Rules.AllowedAudioExtensions)+len(cfg.Rules.AllowedVideoExtensions))
	extensions = append(extensions, cfg.Rules.AllowedAudioExtensions...)
	extensions = append(extensions, cfg.Rules.AllowedVideoExtensions...)

	cachePath := ""
	if !noCache && cfg.Paths.CacheDir != "" {
		cachePath = filepath.Join(cfg.Paths.CacheDir, "catalog.json")
	}

	var extractor media.Extractor = media.FilenameExtractor{}
	if probe {
		extractor = ffprobe.Extractor{}
	}

	return catalog.Scan(ctx, catalog.Options{
		Sources:           cfg.Paths.Sources,
		IncludeSubfolders: cfg.Rules.IncludeSubfolders,
		AllowedExtensions: extensions,
		CachePath:         cachePath,
		ExtractMetadata:   true,
		Extractor:         extractor,
		Logger:            logger,
	})
}

func matcherOptions(cfg *config.Config, logger *slog.Logger) matcher.Options {
	return matcher.Options{
		ExclusionWords:         cfg.Rules.ExclusionWords,
		AllowedAudioExtensions: cfg.Rules.AllowedAudioExtensions,
		AllowedVideoExtensions: cfg.Rules.AllowedVideoExtensions,
		BlockedExtensions:      cfg.Rules.BlockedExtensions,
		MinSizeBytes:           int64(cfg.Rules.MinSizeMB) << 20,
		MinDurationSec:         float64(cfg.Rules.MinDurationSeconds),
		Threshold:              float64(cfg.Rules.FuzzyThreshold),
		MaxCandidates:          cfg.Rules.MaxCandidates,
		SoloBestMatch:          cfg.Rules.SoloBestMatch,
		SongPenalties:          cfg.Matching.SongPenalties,
		BonusWords:             cfg.Matching.BonusWords,
		ResolutionBonus:        cfg.Matching.ResolutionBonus,
		PreferredCodecs:        cfg.Matching.PreferredCodecs,
		Logger:                 logger,
	}
}

func plannerOptions(cfg *config.Config, logger *slog.Logger) (planner.Options, error) {
	mode, err := planner.ParseMode(cfg.Rules.OrganizationMode)
	if err != nil {
		return planner.Options{}, err
	}
	strategy, err := planner.ParseStrategy(cfg.Rules.CollisionStrategy)
	if err != nil {
		return planner.Options{}, err
	}
	return planner.Options{
		DestRoot:    cfg.Paths.Destination,
		Mode:        mode,
		Strategy:    strategy,
		SourceRoots: cfg.Paths.Sources,
		Logger:      logger,
	}, nil
}

// matchWishList runs the scan and match stages for a wish-list file.
func matchWishList(ctx context.Context, cfg *config.Config, logger *slog.Logger, wishlistPath string, probe, noCache bool) ([]request.Request, []matcher.MatchResult, error) {
	requests, err := request.ParseFile(wishlistPath)
	if err != nil {
		return nil, nil, err
	}
	if len(requests) == 0 {
		return nil, nil, fmt.Errorf("wish list %s contains no requests", wishlistPath)
	}

	cat, err := buildCatalog(ctx, cfg, logger, probe, noCache)
	if err != nil {
		return nil, nil, err
	}

	matches, err := matcher.Match(ctx, requests, cat, matcherOptions(cfg, logger))
	if err != nil {
		return nil, nil, err
	}
	return requests, matches, nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
