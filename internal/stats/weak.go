package stats

import (
	"sort"

	"github.com/verte-zerg/memverse/internal/model"
)

// Weakness scores a passage by mistakes plus helps per practiced word, with
// a penalty for attempts that never reached the end.
func Weakness(agg model.PassageAggregate) float64 {
	if agg.Attempts == 0 {
		return 0
	}
	score := perWord(agg.Mistakes+agg.Helps, agg.Words)
	unfinished := float64(agg.Attempts-agg.Completions) / float64(agg.Attempts)
	return score + unfinished
}

// SelectWeakPassages returns the top weakest passages keyed by reference with
// their weakness scores. Passages with a zero score are never selected.
func SelectWeakPassages(aggs []model.PassageAggregate, top int) map[string]float64 {
	weak := map[string]float64{}
	candidates := make([]model.PassageAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if Weakness(agg) > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		wi, wj := Weakness(candidates[i]), Weakness(candidates[j])
		if wi == wj {
			return candidates[i].Reference < candidates[j].Reference
		}
		return wi > wj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for _, agg := range candidates[:top] {
		weak[agg.Reference] = Weakness(agg)
	}
	return weak
}
