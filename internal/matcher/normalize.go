package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mediacopier/internal/textutil"
)

var (
	featPattern        = regexp.MustCompile(`\b(?:feat\.?|ft\.?|featuring)\b`)
	parentheticalRuns  = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	dashUnderscoreRuns = regexp.MustCompile(`[-–—_]+`)
)

// accentFolder strips combining marks after NFKD decomposition.
var accentFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize applies the matching normalization pipeline: lowercase, accent
// folding, feat/ft/featuring removal, parenthetical removal, dash and
// underscore folding, punctuation removal, whitespace collapse.
func Normalize(text string) string {
	result := strings.ToLower(text)

	if folded, _, err := transform.String(accentFolder, result); err == nil {
		result = folded
	}

	result = stripFeaturing(result)
	result = parentheticalRuns.ReplaceAllString(result, "")
	result = dashUnderscoreRuns.ReplaceAllString(result, " ")
	result = textutil.StripPunctuation(result)
	return textutil.CollapseWhitespace(result)
}

// ExtractBaseName removes version suffixes (parenthetical and featuring
// content) before normalizing, for exact-match comparison.
func ExtractBaseName(text string) string {
	result := parentheticalRuns.ReplaceAllString(text, "")
	result = stripFeaturing(result)
	return Normalize(result)
}

// stripFeaturing deletes from a feat/ft/featuring marker up to the next
// bracketed section or the end of the string.
func stripFeaturing(text string) string {
	for {
		loc := featPattern.FindStringIndex(text)
		if loc == nil {
			return text
		}
		end := len(text)
		if idx := strings.IndexAny(text[loc[1]:], "(["); idx >= 0 {
			end = loc[1] + idx
		}
		text = text[:loc[0]] + text[end:]
	}
}

// tokenize splits normalized text into a set of word tokens.
func tokenize(normalized string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(normalized) {
		tokens[token] = struct{}{}
	}
	return tokens
}
