// Package voicecmd detects spoken command phrases in a dictated transcript.
//
// In commuter mode the transcript comes from the operating system's
// speech-to-text. Saying "memory go back" or "memory help" maps to the go back
// and hint commands; the phrase itself is discarded by the command, since both
// truncate the transcript to its last correct word.
package voicecmd

import (
	"log/slog"
	"strings"
)

// Action is a command triggered by a phrase.
type Action int

const (
	// None means no phrase was found.
	None Action = iota
	// GoBack drops everything after the last correct word.
	GoBack
	// Help reveals the next word.
	Help
)

func (a Action) String() string {
	switch a {
	case GoBack:
		return "go back"
	case Help:
		return "help"
	default:
		return "none"
	}
}

// Pattern pairs a trigger phrase with its action.
type Pattern struct {
	Phrase string
	Action Action
}

// DefaultPatterns returns the built-in trigger phrases in match order.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Phrase: "memory go back", Action: GoBack},
		{Phrase: "memory help", Action: Help},
	}
}

// Filter matches transcripts against a set of phrases.
type Filter struct {
	patterns []Pattern
}

// New returns a Filter with the default phrases.
func New() *Filter {
	return &Filter{patterns: DefaultPatterns()}
}

// Detect returns the first action whose phrase occurs in the lowercased transcript.
func (f *Filter) Detect(transcript string) Action {
	action, _ := f.Split(transcript)
	return action
}

// Split returns the first matching action and the transcript text preceding
// its phrase. Without a match it returns None and the transcript unchanged.
func (f *Filter) Split(transcript string) (Action, string) {
	lowered := strings.ToLower(transcript)
	if strings.TrimSpace(lowered) == "" {
		return None, transcript
	}
	for _, p := range f.patterns {
		idx := strings.Index(lowered, p.Phrase)
		if idx < 0 {
			continue
		}
		slog.Debug("voicecmd: phrase detected", "phrase", p.Phrase, "action", p.Action.String())
		// Lowercasing can change byte lengths; offsets only map back when it did not.
		if len(lowered) != len(transcript) {
			return p.Action, lowered[:idx]
		}
		return p.Action, transcript[:idx]
	}
	return None, transcript
}

// PendingTail returns the longest trailing run of whole words that could
// still grow into a phrase, e.g. "memory go " in "for god memory go ". Such a
// tail should not be graded yet. It returns "" when nothing is pending.
func (f *Filter) PendingTail(transcript string) string {
	lowered := strings.ToLower(transcript)
	if len(lowered) != len(transcript) {
		return ""
	}
	for i := 0; i < len(lowered); i++ {
		if i > 0 && lowered[i-1] != ' ' {
			continue
		}
		if lowered[i] == ' ' {
			continue
		}
		tail := strings.Join(strings.Fields(lowered[i:]), " ")
		if strings.HasSuffix(lowered, " ") {
			tail += " "
		}
		for _, p := range f.patterns {
			if len(tail) < len(p.Phrase) && strings.HasPrefix(p.Phrase, tail) {
				return transcript[i:]
			}
		}
	}
	return ""
}
