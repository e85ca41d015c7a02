// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/memverse/internal/model"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// AttemptMetrics computes words per minute, accuracy and help rate for an attempt.
// Accuracy is correct words over correct words plus mistakes; help rate is
// helps per passage word.
func AttemptMetrics(correct, mistakes, helps, words int, durationMs int64) (wpm, accuracy, helpRate float64) {
	if durationMs > 0 {
		wpm = float64(correct) / (float64(durationMs) / 60000.0)
	}
	if den := correct + mistakes; den > 0 {
		accuracy = float64(correct) / float64(den)
	}
	if words > 0 {
		helpRate = float64(helps) / float64(words)
	}
	return wpm, accuracy, helpRate
}

func metricsOf(s model.SessionAggregate) (wpm, accuracy, helpRate float64) {
	return AttemptMetrics(s.CorrectWords, s.Mistakes, s.Helps, s.Words, s.DurationMs)
}

// MovingAverage computes a trailing mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders values as a single line of block characters scaled
// between their min and max.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkRunes[len(sparkRunes)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(len(sparkRunes)-1)))
		idx = max(0, min(idx, len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func minMax(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Summary holds headline numbers across attempts.
type Summary struct {
	Attempts     int
	Completed    int
	Passages     int
	AvgWPM       float64
	BestWPM      float64
	AvgAccuracy  float64
	AvgHelpRate  float64
	BestProgress int
}

// Summarize folds attempts into a Summary.
func Summarize(sessions []model.SessionAggregate) Summary {
	sum := Summary{Attempts: len(sessions)}
	if len(sessions) == 0 {
		return sum
	}
	passages := map[string]struct{}{}
	var totalWPM, totalAcc, totalHelp float64
	for _, s := range sessions {
		wpm, acc, help := metricsOf(s)
		totalWPM += wpm
		totalAcc += acc
		totalHelp += help
		sum.BestWPM = math.Max(sum.BestWPM, wpm)
		sum.BestProgress = max(sum.BestProgress, s.Progress)
		if s.Completed {
			sum.Completed++
		}
		passages[s.Reference] = struct{}{}
	}
	n := float64(len(sessions))
	sum.Passages = len(passages)
	sum.AvgWPM = totalWPM / n
	sum.AvgAccuracy = totalAcc / n
	sum.AvgHelpRate = totalHelp / n
	return sum
}

// RenderSummary prints a summary block for attempts.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d (%d completed)", s.Attempts, s.Completed),
		fmt.Sprintf("Passages: %d", s.Passages),
		fmt.Sprintf("Avg WPM: %.2f", s.AvgWPM),
		fmt.Sprintf("Best WPM: %.2f", s.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", s.AvgAccuracy*100),
		fmt.Sprintf("Avg Help Rate: %.2f%%", s.AvgHelpRate*100),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// AggregatePassages groups attempts by reference, ordered by reference.
func AggregatePassages(sessions []model.SessionAggregate) []model.PassageAggregate {
	byRef := map[string]*model.PassageAggregate{}
	for _, s := range sessions {
		agg, ok := byRef[s.Reference]
		if !ok {
			agg = &model.PassageAggregate{Reference: s.Reference}
			byRef[s.Reference] = agg
		}
		agg.Attempts++
		if s.Completed {
			agg.Completions++
		}
		agg.Words += s.Words
		agg.Mistakes += s.Mistakes
		agg.Helps += s.Helps
		agg.BestProgress = max(agg.BestProgress, s.Progress)
		if s.EndedAt.After(agg.LastEndedAt) {
			agg.LastEndedAt = s.EndedAt
		}
	}
	out := make([]model.PassageAggregate, 0, len(byRef))
	for _, agg := range byRef {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Reference < out[j].Reference
	})
	return out
}

// PassageRows formats passage aggregates as table rows, weakest first.
func PassageRows(aggs []model.PassageAggregate) (headers []string, rows [][]string) {
	headers = []string{"Passage", "Attempts", "Done", "Best", "Mistakes/Word", "Helps/Word", "Last"}
	sorted := make([]model.PassageAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := Weakness(sorted[i]), Weakness(sorted[j])
		if wi == wj {
			return sorted[i].Reference < sorted[j].Reference
		}
		return wi > wj
	})
	for _, agg := range sorted {
		rows = append(rows, []string{
			agg.Reference,
			fmt.Sprintf("%d", agg.Attempts),
			fmt.Sprintf("%d", agg.Completions),
			fmt.Sprintf("%d%%", agg.BestProgress),
			fmt.Sprintf("%.2f", perWord(agg.Mistakes, agg.Words)),
			fmt.Sprintf("%.2f", perWord(agg.Helps, agg.Words)),
			agg.LastEndedAt.Local().Format("2006-01-02"),
		})
	}
	return headers, rows
}

// RenderPassageTable prints per-passage aggregates.
func RenderPassageTable(w io.Writer, aggs []model.PassageAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No passage stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Passages (weakest first)"); err != nil {
		return err
	}
	headers, rows := PassageRows(aggs)
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func perWord(n, words int) float64 {
	if words <= 0 {
		return 0
	}
	return float64(n) / float64(words)
}
