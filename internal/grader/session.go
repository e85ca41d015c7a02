package grader

import "github.com/verte-zerg/memverse/internal/normalize"

// State is the lifecycle state of a loaded passage.
type State int

const (
	// Empty means nothing has been typed yet.
	Empty State = iota
	// InProgress means the transcript is shorter than the passage.
	InProgress
	// Complete means the transcript covers every passage word.
	Complete
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case InProgress:
		return "in progress"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Counters are the per-passage mistake and help tallies.
type Counters struct {
	Mistakes int
	Helps    int
}

// Session holds the transcript and counters for one loaded passage. It is
// owned by a single caller and is not safe for concurrent use.
type Session struct {
	text       string
	ref        []string
	transcript string
	counters   Counters
	// judged is the number of completed words already checked for mistakes.
	judged   int
	revealed bool
	// complete latches once the passage is finished and holds until Load.
	complete bool
}

// NewSession returns a session loaded with text.
func NewSession(text string) *Session {
	s := &Session{}
	s.Load(text)
	return s
}

// Load replaces the passage and resets the transcript and counters.
func (s *Session) Load(text string) {
	s.text = text
	s.ref = normalize.Tokens(text)
	if normalize.IsEmpty(s.ref) {
		s.ref = nil
	}
	s.transcript = ""
	s.counters = Counters{}
	s.judged = 0
	s.revealed = false
	s.complete = false
}

// Text returns the raw passage text.
func (s *Session) Text() string {
	return s.text
}

// Reference returns the canonical passage tokens.
func (s *Session) Reference() []string {
	return s.ref
}

// Words returns the number of passage words.
func (s *Session) Words() int {
	return len(s.ref)
}

// Transcript returns the current raw input.
func (s *Session) Transcript() string {
	return s.transcript
}

// Counters returns a copy of the mistake and help tallies.
func (s *Session) Counters() Counters {
	return s.counters
}

// Revealed reports whether the full text was shown during this attempt.
func (s *Session) Revealed() bool {
	return s.revealed
}

// SetTranscript records a keystroke edit and judges words that gained a
// trailing separator. A boundary is judged once; deleting back below it
// re-arms it. Edits are ignored once the passage is complete.
func (s *Session) SetTranscript(raw string) {
	if s.complete {
		return
	}
	s.transcript = raw
	s.judge(raw)
	s.complete = IsComplete(s.ref, raw)
}

func (s *Session) judge(raw string) {
	completed := CompletedWords(raw)
	if completed < s.judged {
		s.judged = completed
		return
	}
	if completed == s.judged {
		return
	}
	results := Classify(s.ref, raw)
	for i := s.judged; i < completed && i < len(results); i++ {
		if results[i].Class.IsError() {
			s.counters.Mistakes++
		}
	}
	s.judged = completed
}

// Hint reveals the next word after the longest correct prefix. It reports
// whether a word was added.
func (s *Session) Hint() bool {
	if s.complete {
		return false
	}
	next, added := Revert(s.ref, s.transcript, true)
	if !added {
		return false
	}
	s.counters.Helps++
	s.replace(next)
	return true
}

// GoBack drops everything after the last fully correct word.
func (s *Session) GoBack() bool {
	if s.complete {
		return false
	}
	next, _ := Revert(s.ref, s.transcript, false)
	if next == s.transcript {
		return false
	}
	s.replace(next)
	return true
}

// Reveal fills the transcript with the whole passage.
func (s *Session) Reveal() {
	if len(s.ref) == 0 || s.complete {
		return
	}
	s.revealed = true
	s.replace(normalize.Text(s.text))
}

// replace swaps the transcript after an edit command. The kept words are
// correct, so they are marked judged without counting.
func (s *Session) replace(next string) {
	s.transcript = next
	s.judged = CompletedWords(next)
	s.complete = IsComplete(s.ref, next)
}

// Classify grades the current transcript.
func (s *Session) Classify() []WordResult {
	return Classify(s.ref, s.transcript)
}

// Cursor returns the longest exactly-correct prefix length.
func (s *Session) Cursor() int {
	return Cursor(s.ref, s.transcript)
}

// CorrectWords counts exactly-typed words.
func (s *Session) CorrectWords() int {
	return CorrectWords(s.ref, s.transcript)
}

// Progress returns the completion percentage.
func (s *Session) Progress() int {
	return Progress(s.ref, s.transcript)
}

// IsComplete reports whether the passage has been finished since the last Load.
func (s *Session) IsComplete() bool {
	return s.complete
}

// State derives the lifecycle state from the transcript.
func (s *Session) State() State {
	switch {
	case s.IsComplete():
		return Complete
	case len(userTokens(s.transcript)) == 0:
		return Empty
	default:
		return InProgress
	}
}
