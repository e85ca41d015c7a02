// Package grader aligns a typed transcript against a passage word by word.
//
// The functions in this file are pure: they take the canonical reference
// tokens and the raw transcript and derive everything else. Session wraps
// them with the per-passage counters.
package grader

import (
	"math"
	"strings"
	"unicode"

	"github.com/verte-zerg/memverse/internal/normalize"
)

// MatchClass classifies one typed word against the reference word at the same index.
type MatchClass int

const (
	// Exact means the normalized words are equal.
	Exact MatchClass = iota
	// Partial means one word is a prefix of the other.
	Partial
	// Wrong means neither word is a prefix of the other.
	Wrong
	// Extra means the word lies beyond the end of the reference.
	Extra
)

func (c MatchClass) String() string {
	switch c {
	case Exact:
		return "exact"
	case Partial:
		return "partial"
	case Wrong:
		return "wrong"
	case Extra:
		return "extra"
	default:
		return "unknown"
	}
}

// IsError reports whether the class counts as a mistake.
func (c MatchClass) IsError() bool {
	return c == Wrong || c == Extra
}

// WordResult is one classified transcript word.
type WordResult struct {
	Token string
	Class MatchClass
}

// userTokens normalizes the transcript; an empty transcript has no tokens.
func userTokens(transcript string) []string {
	tokens := normalize.Tokens(transcript)
	if normalize.IsEmpty(tokens) {
		return nil
	}
	return tokens
}

// classifyToken compares a typed token with the reference token at index i.
func classifyToken(ref []string, i int, token string) MatchClass {
	if i >= len(ref) {
		return Extra
	}
	want := ref[i]
	switch {
	case token == want:
		return Exact
	case strings.HasPrefix(want, token), strings.HasPrefix(token, want):
		return Partial
	default:
		return Wrong
	}
}

// Classify grades every transcript word positionally against ref.
func Classify(ref []string, transcript string) []WordResult {
	tokens := userTokens(transcript)
	out := make([]WordResult, len(tokens))
	for i, tok := range tokens {
		out[i] = WordResult{Token: tok, Class: classifyToken(ref, i, tok)}
	}
	return out
}

// Cursor returns the length of the longest transcript prefix that equals the
// reference token by token.
func Cursor(ref []string, transcript string) int {
	return cursorOf(ref, userTokens(transcript))
}

func cursorOf(ref, tokens []string) int {
	n := 0
	for n < len(tokens) && n < len(ref) && tokens[n] == ref[n] {
		n++
	}
	return n
}

// IsComplete reports whether the transcript covers the whole reference and
// no further hint is possible, i.e. every reference word was typed exactly.
// Hint and go back do nothing once it holds.
func IsComplete(ref []string, transcript string) bool {
	if len(ref) == 0 {
		return false
	}
	tokens := userTokens(transcript)
	return len(tokens) >= len(ref) && cursorOf(ref, tokens) == len(ref)
}

// Revert truncates the transcript to its longest exactly-correct prefix. With
// addNext it also appends the next reference word; the second result reports
// whether a word was appended.
func Revert(ref []string, transcript string, addNext bool) (string, bool) {
	if IsComplete(ref, transcript) {
		return transcript, false
	}
	tokens := userTokens(transcript)
	if len(tokens) == 0 && !addNext {
		return transcript, false
	}
	cursor := cursorOf(ref, tokens)
	kept := append([]string(nil), ref[:cursor]...)
	added := false
	if addNext && cursor < len(ref) {
		kept = append(kept, ref[cursor])
		added = true
	}
	return strings.Join(kept, " "), added
}

// CorrectWords counts positions where the transcript word equals the reference word.
func CorrectWords(ref []string, transcript string) int {
	count := 0
	for i, tok := range userTokens(transcript) {
		if i < len(ref) && tok == ref[i] {
			count++
		}
	}
	return count
}

// Progress returns the rounded percentage of reference words typed exactly.
func Progress(ref []string, transcript string) int {
	if len(ref) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(CorrectWords(ref, transcript)) / float64(len(ref))))
}

// CompletedWords returns the number of transcript words closed by a trailing
// separator. The word being typed is not counted.
func CompletedWords(transcript string) int {
	tokens := userTokens(transcript)
	if len(tokens) == 0 {
		return 0
	}
	if endsWithSeparator(transcript) {
		return len(tokens)
	}
	return len(tokens) - 1
}

func endsWithSeparator(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	last := r[len(r)-1]
	return unicode.IsSpace(last) || last == '—'
}
