package matcher

import "mediacopier/internal/textutil"

// Similarity computes the three string-similarity ratios the scorer relies
// on, each in [0,100]. Implementations can be swapped without changing the
// scoring contract.
type Similarity interface {
	Ratio(a, b string) float64
	TokenSortRatio(a, b string) float64
	TokenSetRatio(a, b string) float64
}

// editDistanceSimilarity is the built-in Similarity backed by
// Levenshtein-based ratios.
type editDistanceSimilarity struct{}

func (editDistanceSimilarity) Ratio(a, b string) float64 {
	return float64(textutil.Ratio(a, b))
}

func (editDistanceSimilarity) TokenSortRatio(a, b string) float64 {
	return float64(textutil.TokenSortRatio(a, b))
}

func (editDistanceSimilarity) TokenSetRatio(a, b string) float64 {
	return float64(textutil.TokenSetRatio(a, b))
}
