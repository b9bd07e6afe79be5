package matcher

import (
	"context"
	"log/slog"
	"sort"

	"mediacopier/internal/catalog"
	"mediacopier/internal/logging"
	"mediacopier/internal/request"
)

const (
	// DefaultThreshold is the minimum score a candidate needs unless exact.
	DefaultThreshold = 60.0
	// DefaultMaxCandidates caps the ranked candidate list per request.
	DefaultMaxCandidates = 10
)

// MatchCandidate is one catalog entry scored against a request.
type MatchCandidate struct {
	Entry          catalog.MediaEntry `json:"entry"`
	Score          float64            `json:"score"`
	Reason         string             `json:"reason"`
	IsExact        bool               `json:"is_exact"`
	NormalizedName string             `json:"normalized_name"`
	Penalties      []string           `json:"penalties,omitempty"`
	Bonuses        []string           `json:"bonuses,omitempty"`
}

// MatchResult holds the ranked candidates for one request.
type MatchResult struct {
	Request    request.Request  `json:"request"`
	Candidates []MatchCandidate `json:"candidates"`
	MatchFound bool             `json:"match_found"`
}

// BestMatch returns the top-ranked candidate, or nil when none matched.
func (r *MatchResult) BestMatch() *MatchCandidate {
	if !r.MatchFound || len(r.Candidates) == 0 {
		return nil
	}
	return &r.Candidates[0]
}

// Options tunes filtering and scoring. The CLI builds one from config;
// DefaultOptions returns the built-in behavior.
type Options struct {
	ExclusionWords         []string
	AllowedAudioExtensions []string
	AllowedVideoExtensions []string
	BlockedExtensions      []string
	MinSizeBytes           int64
	MinDurationSec         float64
	Threshold              float64
	MaxCandidates          int
	SoloBestMatch          bool
	SongPenalties          bool
	BonusWords             bool
	ResolutionBonus        bool
	PreferredCodecs        []string
	Similarity             Similarity
	Logger                 *slog.Logger
}

// DefaultOptions returns Options with the built-in scoring behavior enabled.
func DefaultOptions() Options {
	return Options{
		Threshold:       DefaultThreshold,
		MaxCandidates:   DefaultMaxCandidates,
		SongPenalties:   true,
		BonusWords:      true,
		ResolutionBonus: true,
	}
}

// Match scores every catalog entry against every request and returns one
// ranked result per request. Requests are independent of each other; a
// request with no surviving candidates is a normal outcome, not an error.
func Match(ctx context.Context, requests []request.Request, cat *catalog.Catalog, opts Options) ([]MatchResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "matcher")

	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if opts.Similarity == nil {
		opts.Similarity = editDistanceSimilarity{}
	}

	filter := newEntryFilter(opts)

	results := make([]MatchResult, 0, len(requests))
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := matchSingle(req, cat, filter, opts)
		logger.Debug("request matched",
			logging.String("request", req.Text),
			logging.Bool("found", result.MatchFound),
			logging.Int("candidates", len(result.Candidates)))
		results = append(results, result)
	}
	return results, nil
}

func matchSingle(req request.Request, cat *catalog.Catalog, filter *entryFilter, opts Options) MatchResult {
	result := MatchResult{Request: req}

	requestedNormalized := Normalize(req.Text)
	requestedBase := ExtractBaseName(req.Text)

	var candidates []MatchCandidate
	for _, entry := range cat.Entries {
		if !filter.admit(entry) {
			continue
		}

		candidateNormalized := Normalize(entry.BaseName)
		candidateBase := ExtractBaseName(entry.BaseName)

		isExact := requestedBase == candidateBase || requestedNormalized == candidateNormalized

		score, reason, penalties, bonuses := calculateScore(
			requestedNormalized, candidateNormalized, entry, req.Kind, opts)

		if isExact {
			if score < 95 {
				score = 95
			}
			reason = "exact base name match; " + reason
		}

		if score < opts.Threshold && !isExact {
			continue
		}

		candidates = append(candidates, MatchCandidate{
			Entry:          entry,
			Score:          score,
			Reason:         reason,
			IsExact:        isExact,
			NormalizedName: candidateNormalized,
			Penalties:      penalties,
			Bonuses:        bonuses,
		})
	}

	// Rank by score and exactness, then break ties deterministically:
	// fewer penalties, more bonuses, and finally path order. Clamping can
	// saturate scores at 100, so the quality signals must participate here
	// for a penalized version to rank below a clean one.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.IsExact != b.IsExact {
			return a.IsExact
		}
		if len(a.Penalties) != len(b.Penalties) {
			return len(a.Penalties) < len(b.Penalties)
		}
		if len(a.Bonuses) != len(b.Bonuses) {
			return len(a.Bonuses) > len(b.Bonuses)
		}
		return a.Entry.Path < b.Entry.Path
	})

	limit := opts.MaxCandidates
	if opts.SoloBestMatch {
		limit = 1
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	result.Candidates = candidates
	result.MatchFound = len(candidates) > 0
	return result
}
