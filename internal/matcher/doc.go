// Package matcher scores catalog entries against wish-list requests.
//
// Per request, every admitted catalog entry is normalized and scored: the
// best of three similarity ratios, plus token-overlap and length bonuses,
// minus song-version penalties, plus quality-word and movie resolution or
// codec bonuses. Exact base-name matches are floored at 95 and survive the
// threshold. Ranking is deterministic: score, exactness, penalty and bonus
// counts, then path.
package matcher
