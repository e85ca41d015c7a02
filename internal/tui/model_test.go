package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/memverse/internal/generator"
	"github.com/verte-zerg/memverse/internal/grader"
	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
)

type fakeLoader struct {
	texts     map[string]string
	err       error
	requested []string
}

func (f *fakeLoader) Load(_ context.Context, text, translation string) (passage.Passage, error) {
	f.requested = append(f.requested, text)
	if f.err != nil {
		return passage.Passage{}, f.err
	}
	body, ok := f.texts[text]
	if !ok {
		return passage.Passage{}, fmt.Errorf("%w: %s", passage.ErrInvalidReference, text)
	}
	ref, book, err := passage.Resolve(text)
	if err != nil {
		return passage.Passage{}, err
	}
	return passage.Passage{Reference: ref, Book: book, Translation: translation, Text: body}, nil
}

type fakeHistory struct {
	saved    []model.SessionStats
	sessions []model.SessionAggregate
	aggs     []model.PassageAggregate
}

func (f *fakeHistory) InsertSession(_ context.Context, stats model.SessionStats) (int64, error) {
	f.saved = append(f.saved, stats)
	return int64(len(f.saved)), nil
}

func (f *fakeHistory) ListSessions(_ context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	var out []model.SessionAggregate
	for _, s := range f.sessions {
		if cfg.Reference == "" || s.Reference == cfg.Reference {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeHistory) ListPassageAggregates(context.Context, int) ([]model.PassageAggregate, error) {
	return f.aggs, nil
}

const john316 = "For God so loved the world"

func newLoadedModel(t *testing.T, cfg model.Config) (*Model, *fakeLoader, *fakeHistory) {
	t.Helper()
	if cfg.Translation == "" {
		cfg.Translation = "NKJV"
	}
	loader := &fakeLoader{texts: map[string]string{"John 3:16": john316, "Psalm 23:1": "The Lord is my shepherd"}}
	history := &fakeHistory{sessions: []model.SessionAggregate{{Reference: "John 3:16", Progress: 40}}}
	m := NewModel(cfg, loader, history, generator.NewWithSeed(1), nil, "John 3:16")
	run(t, m, m.Init())
	if !m.loaded {
		t.Fatalf("expected passage to load, status %q", m.status)
	}
	return m, loader, history
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if _, ok := msg.(passageLoadedMsg); !ok {
		return
	}
	_, next := m.Update(msg)
	run(t, m, next)
}

func typeText(m *Model, text string) {
	for i, part := range strings.Split(text, " ") {
		if i > 0 {
			m.Update(tea.KeyMsg{Type: tea.KeySpace})
		}
		if part != "" {
			m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(part)})
		}
	}
}

func key(m *Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func TestInitialLoad(t *testing.T) {
	m, _, _ := newLoadedModel(t, model.Config{})
	if m.mode != modePractice || m.passage.Title() != "John 3:16 (NKJV)" {
		t.Fatalf("unexpected state mode=%d title=%q", m.mode, m.passage.Title())
	}
	if !m.hasBest || m.best != 40 {
		t.Fatalf("expected best progress 40, got %d", m.best)
	}
}

func TestPracticeCompleteSavesAttempt(t *testing.T) {
	m, _, history := newLoadedModel(t, model.Config{})
	typeText(m, "for got ")
	if m.session.Counters().Mistakes != 1 {
		t.Fatalf("expected 1 mistake, got %d", m.session.Counters().Mistakes)
	}
	key(m, tea.KeyEnter)
	if m.session.Transcript() != "for god " || m.session.Counters().Helps != 1 {
		t.Fatalf("unexpected hint result %q helps=%d", m.session.Transcript(), m.session.Counters().Helps)
	}
	typeText(m, "so loved the world")
	if len(history.saved) != 1 {
		t.Fatalf("expected attempt saved on completion, got %d", len(history.saved))
	}
	got := history.saved[0]
	if !got.Completed || got.Reference != "John 3:16" || got.Translation != "NKJV" || got.Mistakes != 1 || got.Helps != 1 || got.Progress != 100 || got.Words != 6 {
		t.Fatalf("unexpected saved attempt %+v", got)
	}
	if !strings.HasPrefix(m.status, "Complete!") {
		t.Fatalf("unexpected status %q", m.status)
	}

	key(m, tea.KeyEnter)
	key(m, tea.KeyCtrlB)
	typeText(m, " more")
	if m.session.Transcript() != "for god so loved the world" || m.session.Counters().Helps != 1 {
		t.Fatalf("expected commands to be no-ops once complete, got %q", m.session.Transcript())
	}
	key(m, tea.KeyBackspace)
	key(m, tea.KeyEnter)
	if m.raw != "for god so loved the world" || m.session.State() != grader.Complete || m.session.Counters().Helps != 1 {
		t.Fatalf("expected backspace and hint to be ignored once complete, got %q %s helps=%d", m.raw, m.session.State(), m.session.Counters().Helps)
	}
	if len(history.saved) != 1 {
		t.Fatalf("expected a single saved attempt, got %d", len(history.saved))
	}
	key(m, tea.KeyCtrlC)
	if len(history.saved) != 1 {
		t.Fatalf("expected a completed attempt to be saved once")
	}
}

func TestGoBackKey(t *testing.T) {
	m, _, _ := newLoadedModel(t, model.Config{})
	typeText(m, "for god so lovd")
	key(m, tea.KeyCtrlB)
	if m.session.Transcript() != "for god so " {
		t.Fatalf("unexpected transcript %q", m.session.Transcript())
	}
	if m.session.Counters().Helps != 0 {
		t.Fatalf("go back must not count as help")
	}
}

func TestCommuterPhrases(t *testing.T) {
	m, _, _ := newLoadedModel(t, model.Config{Commuter: true})
	typeText(m, "for god so memory help")
	if m.session.Transcript() != "for god so loved " {
		t.Fatalf("unexpected transcript %q", m.session.Transcript())
	}
	c := m.session.Counters()
	if c.Helps != 1 || c.Mistakes != 0 {
		t.Fatalf("unexpected counters %+v", c)
	}
	typeText(m, "the wordle memory go back")
	if m.session.Transcript() != "for god so loved the " {
		t.Fatalf("unexpected transcript after go back %q", m.session.Transcript())
	}
}

func TestCommuterToggle(t *testing.T) {
	m, _, _ := newLoadedModel(t, model.Config{})
	typeText(m, "memory help")
	if m.session.Counters().Helps != 0 {
		t.Fatalf("phrases must be ignored outside commuter mode")
	}
	key(m, tea.KeyCtrlT)
	if !m.commuter || !strings.Contains(m.renderFooter(), "[commuter]") {
		t.Fatalf("expected commuter mode on")
	}
}

func TestRevealKey(t *testing.T) {
	m, _, history := newLoadedModel(t, model.Config{})
	key(m, tea.KeyCtrlR)
	if !m.session.Revealed() || !m.session.IsComplete() {
		t.Fatalf("expected revealed complete passage")
	}
	if len(history.saved) != 1 || !history.saved[0].Revealed || history.saved[0].Helps != 0 {
		t.Fatalf("unexpected saved attempt %+v", history.saved)
	}
	if !strings.Contains(m.View(), "world") {
		t.Fatalf("expected revealed text in view")
	}
}

func TestLoadFailureKeepsState(t *testing.T) {
	m, loader, _ := newLoadedModel(t, model.Config{})
	typeText(m, "for god ")
	loader.err = fmt.Errorf("%w: boom", passage.ErrSourceUnavailable)

	key(m, tea.KeyEsc)
	if m.mode != modeEntry {
		t.Fatalf("expected reference entry mode")
	}
	m.input.SetValue("Psalm 23:1")
	run(t, m, key(m, tea.KeyEnter))
	if m.status != "Text source unavailable." {
		t.Fatalf("unexpected status %q", m.status)
	}
	if m.passage.Label() != "John 3:16" || m.session.Transcript() != "for god " {
		t.Fatalf("expected previous passage untouched, got %q %q", m.passage.Label(), m.session.Transcript())
	}
	key(m, tea.KeyEsc)
	if m.mode != modePractice {
		t.Fatalf("expected esc to return to practice")
	}
}

func TestNewPassageSavesAbandonedAttempt(t *testing.T) {
	m, _, history := newLoadedModel(t, model.Config{})
	typeText(m, "for god")
	key(m, tea.KeyEsc)
	m.input.SetValue("Psalm 23:1")
	run(t, m, key(m, tea.KeyEnter))
	if len(history.saved) != 1 || history.saved[0].Completed || history.saved[0].Progress != 33 {
		t.Fatalf("unexpected abandoned attempt %+v", history.saved)
	}
	if m.passage.Label() != "Psalms 23:1" || m.session.Transcript() != "" || m.session.Counters() != (grader.Counters{}) {
		t.Fatalf("expected fresh session for new passage")
	}
}

func TestQuitWithoutTypingSavesNothing(t *testing.T) {
	m, _, history := newLoadedModel(t, model.Config{})
	if cmd := key(m, tea.KeyCtrlC); cmd == nil {
		t.Fatalf("expected quit command")
	}
	if len(history.saved) != 0 {
		t.Fatalf("expected no attempt for an untouched passage")
	}
}

func TestInvalidReferenceStatus(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("%w: x", passage.ErrInvalidReference)}
	m := NewModel(model.Config{Translation: "KJV"}, loader, &fakeHistory{}, nil, nil, "")
	m.Init()
	m.input.SetValue("1:2-4")
	run(t, m, key(m, tea.KeyEnter))
	if m.status != "Reference not found." || m.mode != modeEntry || m.loaded {
		t.Fatalf("unexpected state status=%q mode=%d loaded=%v", m.status, m.mode, m.loaded)
	}
	if !errors.Is(loader.err, passage.ErrInvalidReference) {
		t.Fatalf("unexpected loader error")
	}
}

func TestPlanNext(t *testing.T) {
	loader := &fakeLoader{texts: map[string]string{"John 3:16": john316, "Psalm 23:1": "The Lord is my shepherd"}}
	plan := []string{"John 3:16", "Psalm 23:1"}
	m := NewModel(model.Config{Translation: "KJV", FocusWeak: true, WeakFactor: 2}, loader, &fakeHistory{
		aggs: []model.PassageAggregate{{Reference: "Psalms 23:1", Attempts: 1, Words: 5, Mistakes: 3}},
	}, generator.NewWithSeed(5), plan, "")
	run(t, m, m.Init())
	first := m.passage.Label()
	run(t, m, key(m, tea.KeyCtrlN))
	if m.passage.Label() == first {
		t.Fatalf("expected a different plan passage after ctrl+n, got %q twice", first)
	}
	if len(loader.requested) != 2 {
		t.Fatalf("expected two loads, got %v", loader.requested)
	}
}
