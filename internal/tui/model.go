// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/memverse/internal/generator"
	"github.com/verte-zerg/memverse/internal/grader"
	"github.com/verte-zerg/memverse/internal/model"
	"github.com/verte-zerg/memverse/internal/passage"
	statsPkg "github.com/verte-zerg/memverse/internal/stats"
	"github.com/verte-zerg/memverse/internal/voicecmd"
)

// Loader resolves a reference into a passage. passage.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context, text, translation string) (passage.Passage, error)
}

// History persists attempts and answers the queries the TUI needs.
// store.Store satisfies it.
type History interface {
	InsertSession(ctx context.Context, stats model.SessionStats) (int64, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListPassageAggregates(ctx context.Context, window int) ([]model.PassageAggregate, error)
}

const loadTimeout = 30 * time.Second

type mode int

const (
	modeEntry mode = iota
	modePractice
)

type passageLoadedMsg struct {
	requested string
	passage   passage.Passage
	err       error
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	config  model.Config
	loader  Loader
	history History
	picker  *generator.Picker
	plan    []string
	voice   *voicecmd.Filter

	width  int
	height int

	mode    mode
	input   textinput.Model
	loading bool
	status  string

	passage   passage.Passage
	session   *grader.Session
	loaded    bool
	startedAt time.Time
	saved     bool
	commuter  bool
	best      int
	hasBest   bool
	initial   string

	// raw is what was typed. It runs ahead of the session transcript only
	// while a trailing commuter phrase may still be forming.
	raw string
}

var (
	exactStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	cursorStyle  = pendingStyle.Underline(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs a practice TUI model. initial is an optional reference
// loaded on start; plan is an optional list of references to review.
func NewModel(cfg model.Config, loader Loader, history History, picker *generator.Picker, plan []string, initial string) *Model {
	input := textinput.New()
	input.Prompt = "Reference: "
	input.Placeholder = "John 3:16"
	input.CharLimit = 64
	input.Width = 32
	if picker == nil {
		picker = generator.New()
	}
	return &Model{
		config:   cfg,
		loader:   loader,
		history:  history,
		picker:   picker,
		plan:     plan,
		voice:    voicecmd.New(),
		input:    input,
		session:  grader.NewSession(""),
		commuter: cfg.Commuter,
		initial:  strings.TrimSpace(initial),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	switch {
	case m.initial != "":
		return m.startLoad(m.initial)
	case len(m.plan) > 0:
		return m.startLoad(m.pickNext())
	default:
		return m.enterReference()
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case passageLoadedMsg:
		return m, m.handleLoaded(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.saveAttempt()
			return m, tea.Quit
		}
		if m.mode == modeEntry {
			return m, m.updateEntry(msg)
		}
		return m, m.updatePractice(msg)
	default:
		if m.mode == modeEntry {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) updateEntry(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.loading {
			return nil
		}
		return m.startLoad(text)
	case tea.KeyEsc:
		if m.loaded {
			m.mode = modePractice
			m.input.Blur()
		}
		return nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
}

func (m *Model) updatePractice(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlN:
		return m.next()
	case tea.KeyEsc:
		return m.enterReference()
	case tea.KeyEnter:
		m.touch()
		m.hint()
	case tea.KeyCtrlB:
		m.goBack()
	case tea.KeyCtrlR:
		m.touch()
		m.session.Reveal()
		m.raw = m.session.Transcript()
	case tea.KeyCtrlT:
		m.commuter = !m.commuter
		if m.commuter {
			m.status = `Commuter mode on: say "memory help" or "memory go back".`
		} else {
			m.status = "Commuter mode off."
		}
	case tea.KeyBackspace, tea.KeyDelete:
		m.editTranscript(trimLastRune(m.raw))
	case tea.KeyCtrlW:
		m.editTranscript(trimLastWord(m.raw))
	case tea.KeySpace:
		m.editTranscript(m.raw + " ")
	case tea.KeyRunes:
		m.editTranscript(m.raw + string(msg.Runes))
	}
	m.checkComplete()
	return nil
}

func (m *Model) editTranscript(next string) {
	if m.session.IsComplete() {
		return
	}
	m.touch()
	m.raw = next
	if !m.commuter {
		m.session.SetTranscript(next)
		return
	}
	// The phrase is cut before judging so its words never count as mistakes.
	action, before := m.voice.Split(next)
	switch action {
	case voicecmd.GoBack:
		m.session.SetTranscript(before)
		m.goBack()
	case voicecmd.Help:
		m.session.SetTranscript(before)
		m.hint()
	default:
		held := m.voice.PendingTail(next)
		m.session.SetTranscript(next[:len(next)-len(held)])
	}
}

// hint and goBack leave a trailing separator so typing resumes at the next word.
func (m *Model) hint() {
	if m.session.Hint() {
		m.openNextWord()
	}
	m.raw = m.session.Transcript()
}

func (m *Model) goBack() {
	m.session.GoBack()
	m.openNextWord()
	m.raw = m.session.Transcript()
}

func (m *Model) openNextWord() {
	t := m.session.Transcript()
	if t == "" || m.session.IsComplete() || strings.HasSuffix(t, " ") {
		return
	}
	m.session.SetTranscript(t + " ")
}

func (m *Model) checkComplete() {
	if !m.loaded || m.saved || !m.session.IsComplete() {
		return
	}
	m.saveAttempt()
	if len(m.plan) > 0 {
		m.status = "Complete! ctrl+n for the next passage."
	} else {
		m.status = "Complete! ctrl+n for a new reference."
	}
}

func (m *Model) touch() {
	if m.startedAt.IsZero() {
		m.startedAt = time.Now()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var sections []string
	if m.loaded {
		sections = append(sections, titleStyle.Render(m.passage.Title()), "")
	}
	if m.mode == modeEntry {
		sections = append(sections, m.input.View())
	} else {
		contentWidth := m.contentWidth()
		transcript := m.session.Transcript()
		words := buildStyledWords(transcript, m.session.Classify())
		if held, ok := strings.CutPrefix(m.raw, transcript); ok {
			words = append(words, plainWords(held, pendingStyle)...)
		}
		words = append(words, cursorWord())
		sections = append(sections, wrapStyledWords(words, contentWidth))
		if m.session.Revealed() {
			sections = append(sections, "", wrapStyledWords(plainWords(m.passage.Text, pendingStyle), contentWidth))
		}
	}
	content := strings.Join(sections, "\n")
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 4 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	footerHeight := lipgloss.Height(footer)
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Width(m.contentWidth()).Render(content))
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderFooter() string {
	var segments []string
	if m.loaded {
		counters := m.session.Counters()
		segments = append(segments,
			fmt.Sprintf("Progress %d%%", m.session.Progress()),
			fmt.Sprintf("Mistakes %d", counters.Mistakes),
			fmt.Sprintf("Helps %d", counters.Helps),
		)
	}
	if m.commuter {
		segments = append(segments, "[commuter]")
	}
	if m.hasBest {
		segments = append(segments, fmt.Sprintf("Best %d%%", m.best))
	}
	lines := []string{}
	if len(segments) > 0 {
		lines = append(lines, footerStyle.Render(strings.Join(segments, "  ")))
	}
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) enterReference() tea.Cmd {
	m.mode = modeEntry
	m.input.Reset()
	return m.input.Focus()
}

func (m *Model) next() tea.Cmd {
	if len(m.plan) == 0 {
		return m.enterReference()
	}
	return m.startLoad(m.pickNext())
}

func (m *Model) pickNext() string {
	if !m.config.FocusWeak || m.history == nil {
		return m.picker.Next(m.plan)
	}
	aggs, err := m.history.ListPassageAggregates(context.Background(), m.config.WeakWindow)
	if err != nil {
		slog.Warn("failed to load passage aggregates", "err", err)
		return m.picker.Next(m.plan)
	}
	weak := statsPkg.SelectWeakPassages(aggs, m.config.WeakTop)
	return m.picker.NextWeighted(m.plan, weak, m.config.WeakFactor)
}

func (m *Model) startLoad(text string) tea.Cmd {
	m.loading = true
	m.status = fmt.Sprintf("Loading %s...", text)
	loader := m.loader
	translation := m.config.Translation
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		p, err := loader.Load(ctx, text, translation)
		return passageLoadedMsg{requested: text, passage: p, err: err}
	}
}

func (m *Model) handleLoaded(msg passageLoadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		slog.Warn("failed to load passage", "reference", msg.requested, "err", msg.err)
		m.status = passage.Status(msg.err)
		if !m.loaded {
			return m.enterReference()
		}
		return nil
	}
	m.saveAttempt()
	m.passage = msg.passage
	m.session.Load(msg.passage.Text)
	m.raw = ""
	m.loaded = true
	m.saved = false
	m.startedAt = time.Time{}
	m.status = ""
	m.mode = modePractice
	m.input.Blur()
	m.loadBest()
	return nil
}

func (m *Model) loadBest() {
	m.best, m.hasBest = 0, false
	if m.history == nil {
		return
	}
	sessions, err := m.history.ListSessions(context.Background(), model.StatsConfig{
		Reference:   m.passage.Label(),
		Translation: m.passage.Translation,
	})
	if err != nil {
		slog.Warn("failed to load passage history", "err", err)
		return
	}
	for _, s := range sessions {
		m.best = max(m.best, s.Progress)
		m.hasBest = true
	}
}

// saveAttempt records the current attempt once, when it was completed or
// abandoned with a non-empty transcript.
func (m *Model) saveAttempt() {
	if !m.loaded || m.saved || m.history == nil {
		return
	}
	if m.session.State() == grader.Empty {
		return
	}
	ended := time.Now()
	started := m.startedAt
	if started.IsZero() {
		started = ended
	}
	counters := m.session.Counters()
	attempt := model.SessionStats{
		StartedAt:    started,
		EndedAt:      ended,
		Reference:    m.passage.Label(),
		Translation:  m.passage.Translation,
		Words:        m.session.Words(),
		CorrectWords: m.session.CorrectWords(),
		Mistakes:     counters.Mistakes,
		Helps:        counters.Helps,
		Progress:     m.session.Progress(),
		Completed:    m.session.IsComplete(),
		Revealed:     m.session.Revealed(),
		DurationMs:   ended.Sub(started).Milliseconds(),
	}
	if _, err := m.history.InsertSession(context.Background(), attempt); err != nil {
		slog.Error("failed to save attempt", "reference", attempt.Reference, "err", err)
		m.status = "Failed to save attempt."
		return
	}
	m.saved = true
	m.best = max(m.best, attempt.Progress)
	m.hasBest = true
	slog.Info("attempt saved", "reference", attempt.Reference, "progress", attempt.Progress,
		"mistakes", attempt.Mistakes, "helps", attempt.Helps, "completed", attempt.Completed)
}

func trimLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

func trimLastWord(s string) string {
	trimmed := strings.TrimRight(s, " \t")
	idx := strings.LastIndexAny(trimmed, " \t")
	if idx < 0 {
		return ""
	}
	return trimmed[:idx+1]
}
