package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/memverse/internal/model"
)

func TestAttemptMetrics(t *testing.T) {
	wpm, acc, help := AttemptMetrics(30, 10, 5, 50, 60000)
	if wpm != 30 {
		t.Fatalf("expected 30 wpm, got %.2f", wpm)
	}
	if acc != 0.75 {
		t.Fatalf("expected 0.75 accuracy, got %.2f", acc)
	}
	if help != 0.1 {
		t.Fatalf("expected 0.1 help rate, got %.2f", help)
	}
	wpm, acc, help = AttemptMetrics(0, 0, 0, 0, 0)
	if wpm != 0 || acc != 0 || help != 0 {
		t.Fatalf("expected zero metrics, got %.2f %.2f %.2f", wpm, acc, help)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: expected %.2f, got %.2f", i, want[i], got[i])
		}
	}
	if out := MovingAverage([]float64{1, 9}, 0); out[0] != 1 || out[1] != 9 {
		t.Fatalf("expected unchanged values, got %v", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7}); got != "▁█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); utf8.RuneCountInString(got) != 3 {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestWeakness(t *testing.T) {
	clean := model.PassageAggregate{Reference: "a", Attempts: 2, Completions: 2, Words: 20}
	if Weakness(clean) != 0 {
		t.Fatalf("expected zero weakness for clean passage")
	}
	shaky := model.PassageAggregate{Reference: "b", Attempts: 2, Completions: 1, Words: 20, Mistakes: 3, Helps: 1}
	if got := Weakness(shaky); math.Abs(got-0.7) > 1e-9 {
		t.Fatalf("expected 0.7, got %.3f", got)
	}
}

func TestSelectWeakPassages(t *testing.T) {
	aggs := []model.PassageAggregate{
		{Reference: "John 3:16", Attempts: 1, Completions: 1, Words: 10},
		{Reference: "Psalms 23", Attempts: 1, Completions: 0, Words: 10, Mistakes: 5},
		{Reference: "James 1:2-4", Attempts: 1, Completions: 1, Words: 10, Helps: 2},
	}
	weak := SelectWeakPassages(aggs, 1)
	if len(weak) != 1 {
		t.Fatalf("expected 1 weak passage, got %v", weak)
	}
	if _, ok := weak["Psalms 23"]; !ok {
		t.Fatalf("expected Psalms 23 to be weakest, got %v", weak)
	}
	all := SelectWeakPassages(aggs, 0)
	if len(all) != 2 {
		t.Fatalf("expected clean passages excluded, got %v", all)
	}
}

func TestAggregatePassages(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions := []model.SessionAggregate{
		{Reference: "John 3:16", Words: 10, Mistakes: 1, Progress: 40, EndedAt: base},
		{Reference: "John 3:16", Words: 10, Helps: 2, Progress: 100, Completed: true, EndedAt: base.Add(time.Hour)},
		{Reference: "Genesis 1:1", Words: 10, Progress: 100, Completed: true, EndedAt: base},
	}
	aggs := AggregatePassages(sessions)
	if len(aggs) != 2 || aggs[0].Reference != "Genesis 1:1" {
		t.Fatalf("unexpected aggregates %+v", aggs)
	}
	john := aggs[1]
	if john.Attempts != 2 || john.Completions != 1 || john.Mistakes != 1 || john.Helps != 2 || john.BestProgress != 100 {
		t.Fatalf("unexpected john aggregate %+v", john)
	}
	if !john.LastEndedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected last ended %v", john.LastEndedAt)
	}
}

func TestRenderSummaryAndTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No attempts found.") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}

	buf.Reset()
	sessions := []model.SessionAggregate{
		{Reference: "John 3:16", Words: 25, CorrectWords: 25, Mistakes: 0, Progress: 100, Completed: true, DurationMs: 60000},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := RenderPassageTable(&buf, AggregatePassages(sessions)); err != nil {
		t.Fatalf("render table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Attempts: 1 (1 completed)", "Avg WPM: 25.00", "Avg Accuracy: 100.00%", "Passages (weakest first)", "John 3:16"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderCurvesWithSize(t *testing.T) {
	var buf bytes.Buffer
	sessions := make([]model.SessionAggregate, 40)
	for i := range sessions {
		sessions[i] = model.SessionAggregate{Words: 10, CorrectWords: i % 10, Progress: i * 2, DurationMs: 30000}
	}
	if err := RenderCurvesWithSize(&buf, sessions, 3, 40, false); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title plus 4 series, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "WPM") || strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected curve output %q", buf.String())
	}
	spark := strings.Fields(lines[1])[1]
	if utf8.RuneCountInString(spark) != CurveWidthFor(40) {
		t.Fatalf("expected %d cells, got %d", CurveWidthFor(40), utf8.RuneCountInString(spark))
	}
}

func TestCurveWidthFor(t *testing.T) {
	if got := CurveWidthFor(100); got != 100-curveLabelWidth-curveRangeWidth {
		t.Fatalf("unexpected width %d", got)
	}
	if got := CurveWidthFor(5); got != minCurveWidth {
		t.Fatalf("expected min width, got %d", got)
	}
}
