package stats

import (
	"sort"

	"github.com/verte-zerg/memverse/internal/model"
)

// TopPassagesByAttempts returns the n most practiced references.
func TopPassagesByAttempts(aggs []model.PassageAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.PassageAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Attempts == sorted[j].Attempts {
			return sorted[i].Reference < sorted[j].Reference
		}
		return sorted[i].Attempts > sorted[j].Attempts
	})
	n = min(n, len(sorted))
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Reference)
	}
	return out
}
