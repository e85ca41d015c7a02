package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/memverse/internal/grader"
	"github.com/verte-zerg/memverse/internal/normalize"
)

type styledWord struct {
	s     string
	width int
}

const cursorGlyph = "_"

// buildStyledWords colors each typed word by the worst class among the
// tokens it normalizes to. Words that normalize to nothing stay pending.
func buildStyledWords(raw string, results []grader.WordResult) []styledWord {
	fields := strings.Fields(raw)
	out := make([]styledWord, 0, len(fields))
	idx := 0
	for _, field := range fields {
		tokens := normalize.Tokens(field)
		n := 0
		if !normalize.IsEmpty(tokens) {
			n = len(tokens)
		}
		style := pendingStyle
		if n > 0 && idx < len(results) {
			end := min(idx+n, len(results))
			style = styleFor(worstClass(results[idx:end]))
		}
		idx += n
		out = append(out, styledWord{s: style.Render(field), width: runewidth.StringWidth(field)})
	}
	return out
}

func cursorWord() styledWord {
	return styledWord{s: cursorStyle.Render(cursorGlyph), width: runewidth.StringWidth(cursorGlyph)}
}

func worstClass(results []grader.WordResult) grader.MatchClass {
	worst := grader.Exact
	for _, r := range results {
		if r.Class > worst {
			worst = r.Class
		}
	}
	return worst
}

func styleFor(class grader.MatchClass) lipgloss.Style {
	switch class {
	case grader.Exact:
		return exactStyle
	case grader.Partial:
		return partialStyle
	default:
		return wrongStyle
	}
}

func plainWords(text string, style lipgloss.Style) []styledWord {
	fields := strings.Fields(normalize.StripTags(text))
	out := make([]styledWord, 0, len(fields))
	for _, field := range fields {
		out = append(out, styledWord{s: style.Render(field), width: runewidth.StringWidth(field)})
	}
	return out
}

func renderStyledWords(words []styledWord) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.s
	}
	return strings.Join(parts, " ")
}

// wrapStyledWords breaks words into lines no wider than width. A word wider
// than width gets a line of its own.
func wrapStyledWords(words []styledWord, width int) string {
	if width <= 0 {
		return renderStyledWords(words)
	}
	var lines []string
	var line []styledWord
	lineWidth := 0
	for _, w := range words {
		needed := w.width
		if len(line) > 0 {
			needed++
		}
		if len(line) > 0 && lineWidth+needed > width {
			lines = append(lines, renderStyledWords(line))
			line = line[:0]
			lineWidth = 0
			needed = w.width
		}
		line = append(line, w)
		lineWidth += needed
	}
	if len(line) > 0 {
		lines = append(lines, renderStyledWords(line))
	}
	return strings.Join(lines, "\n")
}
