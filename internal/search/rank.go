package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/vmunix/mediahub/internal/plugin"
)

// containsBonus is added when the cleaned title contains the cleaned keyword.
const containsBonus = 0.1

// Score returns the relevance of title to keyword in [0, 1.1]. Jaro-Winkler
// favours shared prefixes, which suits titles that start with the query.
func Score(keyword, title string) float64 {
	k, t := cleanTitle(keyword), cleanTitle(title)
	if k == "" || t == "" {
		return 0
	}
	score := float64(edlib.JaroWinklerSimilarity(k, t))
	if strings.Contains(t, k) {
		score += containsBonus
	}
	return score
}

// Rank orders results by descending Score against keyword. Equal scores keep
// their input order.
func Rank(keyword string, results []plugin.SearchResult) []plugin.SearchResult {
	type scored struct {
		res   plugin.SearchResult
		score float64
	}
	tmp := make([]scored, len(results))
	for i, r := range results {
		tmp[i] = scored{res: r, score: Score(keyword, r.Title)}
	}
	slices.SortStableFunc(tmp, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	out := make([]plugin.SearchResult, len(tmp))
	for i, s := range tmp {
		out[i] = s.res
	}
	return out
}
