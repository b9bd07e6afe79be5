package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mediacopier/internal/catalog"
	"mediacopier/internal/request"
)

// penaltyWords mark lower-quality song versions.
var penaltyWords = []string{
	"live", "cover", "karaoke", "instrumental", "acoustic",
	"demo", "remix", "bootleg", "tribute",
}

// bonusWords mark quality or official versions.
var bonusWords = []string{
	"official", "remastered", "remaster", "deluxe", "hd", "hq", "original",
}

var (
	penaltyPatterns = compileWordPatterns(penaltyWords)
	bonusPatterns   = compileWordPatterns(bonusWords)
)

func compileWordPatterns(words []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(words))
	for _, word := range words {
		patterns[word] = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return patterns
}

// resolutionPriority maps filename resolution tokens to quality priorities.
var resolutionPriority = []struct {
	token    string
	priority float64
}{
	{"2160p", 100}, {"4k", 100}, {"1440p", 80}, {"1080p", 60},
	{"720p", 40}, {"480p", 20}, {"360p", 15}, {"240p", 10},
}

// calculateScore scores one candidate against a normalized request.
// Penalty detection runs on the original candidate base name so that
// normalization cannot hide a "(Live)" marker.
func calculateScore(requestedNormalized, candidateNormalized string, entry catalog.MediaEntry, kind request.Kind, opts Options) (float64, string, []string, []string) {
	var penalties, bonuses, reasons []string

	ratio := opts.Similarity.Ratio(requestedNormalized, candidateNormalized)
	tokenSort := opts.Similarity.TokenSortRatio(requestedNormalized, candidateNormalized)
	tokenSet := opts.Similarity.TokenSetRatio(requestedNormalized, candidateNormalized)

	score := max3(ratio, tokenSort, tokenSet)
	reasons = append(reasons, fmt.Sprintf("base similarity: %.1f%%", score))

	reqTokens := tokenize(requestedNormalized)
	candTokens := tokenize(candidateNormalized)
	if len(reqTokens) > 0 && len(candTokens) > 0 {
		common := 0
		for token := range reqTokens {
			if _, ok := candTokens[token]; ok {
				common++
			}
		}
		largest := len(reqTokens)
		if len(candTokens) > largest {
			largest = len(candTokens)
		}
		tokenBonus := float64(common) / float64(largest) * 10
		score += tokenBonus
		if tokenBonus > 0 {
			reasons = append(reasons, fmt.Sprintf("common tokens: %d", common))
		}
	}

	if len(requestedNormalized) > 0 && len(candidateNormalized) > 0 {
		shorter, longer := len(requestedNormalized), len(candidateNormalized)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		score += float64(shorter) / float64(longer) * 5
	}

	if opts.SongPenalties && kind == request.KindSong {
		penalties = wordsIn(entry.BaseName, penaltyWords, penaltyPatterns)
		score -= float64(len(penalties)) * 15
		if len(penalties) > 0 {
			reasons = append(reasons, "penalty for: "+strings.Join(penalties, ", "))
		}
	}

	if opts.BonusWords {
		bonuses = wordsIn(entry.BaseName, bonusWords, bonusPatterns)
		score += float64(len(bonuses)) * 5
		if len(bonuses) > 0 {
			reasons = append(reasons, "bonus for: "+strings.Join(bonuses, ", "))
		}
	}

	if kind == request.KindMovie {
		if opts.ResolutionBonus {
			if bonus := resolutionBonus(entry); bonus > 0 {
				score += bonus
				reasons = append(reasons, fmt.Sprintf("resolution bonus: %.1f", bonus))
			}
		}
		if bonus, codec := codecBonus(entry, opts.PreferredCodecs); bonus > 0 {
			score += bonus
			reasons = append(reasons, "preferred codec: "+codec)
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, strings.Join(reasons, "; "), penalties, bonuses
}

// wordsIn returns the listed words found whole-word in text, sorted for
// deterministic output.
func wordsIn(text string, words []string, patterns map[string]*regexp.Regexp) []string {
	lowered := strings.ToLower(text)
	var found []string
	for _, word := range words {
		if patterns[word].MatchString(lowered) {
			found = append(found, word)
		}
	}
	sort.Strings(found)
	return found
}

// resolutionBonus scales the resolution priority table down to at most 10
// points, using filename tokens first and stream height as fallback.
func resolutionBonus(entry catalog.MediaEntry) float64 {
	lowered := strings.ToLower(entry.BaseName)
	for _, res := range resolutionPriority {
		if strings.Contains(lowered, res.token) {
			return res.priority / 10
		}
	}
	if entry.VideoMeta != nil {
		return heightPriority(entry.VideoMeta.Height) / 10
	}
	return 0
}

func heightPriority(height int) float64 {
	switch {
	case height >= 2160:
		return 100
	case height >= 1440:
		return 80
	case height >= 1080:
		return 60
	case height >= 720:
		return 40
	case height >= 480:
		return 20
	case height >= 360:
		return 15
	case height >= 240:
		return 10
	default:
		return 0
	}
}

// codecBonus awards 5 points for the first preferred codec found,
// decreasing by 0.5 per rank.
func codecBonus(entry catalog.MediaEntry, preferred []string) (float64, string) {
	lowered := strings.ToLower(entry.BaseName)
	streamCodec := ""
	if entry.VideoMeta != nil {
		streamCodec = strings.ToLower(entry.VideoMeta.Codec)
	}
	for rank, codec := range preferred {
		normalized := strings.ToLower(strings.TrimSpace(codec))
		if normalized == "" {
			continue
		}
		if strings.Contains(lowered, normalized) || streamCodec == normalized {
			bonus := 5 - 0.5*float64(rank)
			if bonus < 0 {
				bonus = 0
			}
			return bonus, normalized
		}
	}
	return 0, ""
}

func max3(a, b, c float64) float64 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
