package stats

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/memverse/internal/model"
)

const (
	curveLabelWidth     = 10
	curveRangeWidth     = 18
	minCurveWidth       = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
)

var curveColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// Series is a named data series for curve rendering.
type Series struct {
	Name   string
	Values []float64
}

// CurveWidthFor returns how many sparkline cells fit in totalWidth next to
// the label and range columns.
func CurveWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	return max(minCurveWidth, totalWidth-curveLabelWidth-curveRangeWidth)
}

// CurveSeries builds smoothed per-attempt series for WPM, accuracy, help rate
// and progress.
func CurveSeries(sessions []model.SessionAggregate, window int) []Series {
	wpms := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	helps := make([]float64, len(sessions))
	progress := make([]float64, len(sessions))
	for i, s := range sessions {
		wpm, acc, help := metricsOf(s)
		wpms[i] = wpm
		accs[i] = acc * 100
		helps[i] = help * 100
		progress[i] = float64(s.Progress)
	}
	return []Series{
		{Name: "WPM", Values: MovingAverage(wpms, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Help %", Values: MovingAverage(helps, window)},
		{Name: "Progress", Values: MovingAverage(progress, window)},
	}
}

// RenderCurves prints learning curves sized to the terminal.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, false)
}

// RenderCurvesWithSize prints one scaled sparkline per series. A non-positive
// totalWidth falls back to the terminal width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth int, forceColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	width := CurveWidthFor(totalWidth)
	useColor := shouldUseColor(w, forceColor)
	if _, err := fmt.Fprintln(w, "Learning Curves (scaled per series)"); err != nil {
		return err
	}
	for i, s := range CurveSeries(sessions, window) {
		values := tail(s.Values, width)
		lo, hi := minMax(values)
		line := Sparkline(values)
		if useColor {
			line = curveColors[i%len(curveColors)] + line + colorReset
		}
		if _, err := fmt.Fprintf(w, "%-*s%s  %.1f..%.1f\n", curveLabelWidth, s.Name, line, lo, hi); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
