// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/quotype/internal/model"
	"github.com/verte-zerg/quotype/internal/quote"
	"github.com/verte-zerg/quotype/internal/stats"
	"github.com/verte-zerg/quotype/internal/store"
	"github.com/verte-zerg/quotype/internal/typing"
)

// Model implements the Bubble Tea typing UI. It owns all state of the
// current attempt; restart is the only way to begin a new one.
type Model struct {
	config model.Config
	store  *store.Store
	source quote.Source
	log    *zap.Logger
	now    func() time.Time

	width  int
	height int

	session   *typing.Session
	countdown *typing.Countdown
	input     textinput.Model
	disabled  bool
	clock     string
	loading   bool

	// Generations invalidate in-flight ticks and quote fetches.
	timerGen int
	fetchGen int

	popupVisible bool
	last         typing.Result
	hasLast      bool

	leaderboard []model.Result
}

type tickMsg struct {
	gen int
	at  time.Time
}

type quoteMsg struct {
	gen   int
	quote string
	err   error
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	clockStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	popupStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#C89A3A")).
				Padding(1, 3)
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, st *store.Store, src quote.Source, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Start typing..."
	input.Focus()

	countdown := typing.NewCountdown(cfg.Duration)
	m := &Model{
		config:    cfg,
		store:     st,
		source:    src,
		log:       logger,
		now:       time.Now,
		session:   typing.NewSession(""),
		countdown: countdown,
		input:     input,
		clock:     typing.FormatIdle(countdown.Budget()),
		loading:   true,
	}
	m.loadLeaderboard()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchQuote(), textinput.Blink)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, int(float64(m.width)*0.70)-lipgloss.Width(m.input.Prompt))
		return m, nil
	case quoteMsg:
		m.applyQuote(msg)
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter, tea.KeyCtrlR:
			return m, m.Restart()
		case tea.KeyEsc:
			if m.popupVisible {
				m.ClosePopup()
				return m, m.Restart()
			}
			return m, nil
		}
		if m.disabled {
			return m, nil
		}
		prev := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() == prev {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.handleInput(m.input.Value()))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.popupVisible {
		content = m.renderStatus() + "\n\n" + m.renderPopup()
	} else {
		content = strings.Join([]string{
			m.renderStatus(),
			m.renderQuote(),
			m.input.View(),
			m.renderFooter(),
			m.renderLeaderboard(),
		}, "\n\n")
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// ShowPopup makes the results popup visible.
func (m *Model) ShowPopup() { m.popupVisible = true }

// ClosePopup hides the results popup.
func (m *Model) ClosePopup() { m.popupVisible = false }

// PopupVisible reports whether the results popup is shown.
func (m *Model) PopupVisible() bool { return m.popupVisible }

// Restart abandons the current attempt and starts a fresh one on a new quote.
func (m *Model) Restart() tea.Cmd {
	m.stopTimer()
	m.session.Reset(m.session.Quote())
	m.clock = typing.FormatIdle(m.countdown.Budget())
	m.disabled = false
	m.input.SetValue("")
	focus := m.input.Focus()
	m.ClosePopup()
	return tea.Batch(m.fetchQuote(), focus)
}

func (m *Model) fetchQuote() tea.Cmd {
	m.fetchGen++
	m.loading = true
	gen := m.fetchGen
	src := m.source
	timeout := m.config.FetchTimeout
	if timeout <= 0 {
		timeout = quote.DefaultTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		q, err := quote.Pick(ctx, src)
		return quoteMsg{gen: gen, quote: q, err: err}
	}
}

func (m *Model) applyQuote(msg quoteMsg) {
	if msg.gen != m.fetchGen {
		m.log.Debug("dropping stale quote", zap.Int("gen", msg.gen), zap.Int("current", m.fetchGen))
		return
	}
	if msg.err != nil {
		m.log.Warn("quote fetch failed, using fallback", zap.Error(msg.err))
	}
	m.loading = false
	m.session.SetQuote(msg.quote)
	m.input.CharLimit = len([]rune(msg.quote))
}

func (m *Model) handleInput(value string) tea.Cmd {
	now := m.now()
	out := m.session.Input(value, now)
	var cmd tea.Cmd
	if out.Started {
		cmd = m.startTimer(now)
	}
	if out.Buffer != value {
		m.input.SetValue(out.Buffer)
		m.input.CursorEnd()
	}
	if out.Complete {
		m.stopTimer()
		m.finish(m.session.CompletionResult(out.Buffer, now))
	}
	return cmd
}

func tickCmd(gen int) tea.Cmd {
	return tea.Tick(typing.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}

func (m *Model) startTimer(now time.Time) tea.Cmd {
	m.timerGen++
	m.countdown.Start(now)
	m.clock = typing.FormatClock(m.countdown.Budget())
	return tickCmd(m.timerGen)
}

func (m *Model) stopTimer() {
	m.timerGen++
	m.countdown.Stop()
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.gen != m.timerGen || !m.countdown.Active() {
		return nil
	}
	remaining := m.countdown.Remaining(msg.at)
	m.clock = typing.FormatClock(remaining)
	if remaining > 0 {
		return tickCmd(m.timerGen)
	}
	m.stopTimer()
	m.finish(m.session.TimeoutResult(m.input.Value(), msg.at))
	return nil
}

func (m *Model) finish(res typing.Result) {
	m.disabled = true
	m.input.Blur()
	m.last = res
	m.hasLast = true
	m.record(res)
	m.ShowPopup()
}

func (m *Model) record(res typing.Result) {
	attempt := model.Attempt{
		Result: model.Result{
			WPM:       res.WPM,
			Accuracy:  res.Accuracy,
			Timestamp: res.Timestamp(),
		},
		EndedAt:    res.EndedAt,
		Elapsed:    res.Elapsed,
		Keystrokes: res.Keystrokes,
		Errors:     res.Errors,
		TimedOut:   res.TimedOut,
		Quote:      m.session.Quote(),
	}
	m.log.Info("attempt finished",
		zap.Int("wpm", res.WPM),
		zap.Int("accuracy", res.Accuracy),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("keystrokes", res.Keystrokes),
		zap.Int("errors", res.Errors),
		zap.Bool("timed_out", res.TimedOut),
	)
	if m.store == nil {
		m.leaderboard = store.PrependCapped(m.leaderboard, attempt.Result, store.LeaderboardSize)
		return
	}
	if err := m.store.PushResult(context.Background(), attempt); err != nil {
		m.log.Error("failed to save result", zap.Error(err))
	}
	m.loadLeaderboard()
}

func (m *Model) loadLeaderboard() {
	if m.store == nil {
		return
	}
	entries, err := m.store.Leaderboard(context.Background())
	if err != nil {
		m.log.Error("failed to load leaderboard", zap.Error(err))
		return
	}
	m.leaderboard = entries
}

func (m *Model) renderStatus() string {
	accuracy := fmt.Sprintf("Accuracy %d%%", m.session.Accuracy())
	return clockStyle.Render(m.clock) + "  " + footerStyle.Render(accuracy)
}

func (m *Model) renderQuote() string {
	q := []rune(m.session.Quote())
	if len(q) == 0 {
		if m.loading {
			return pendingStyle.Render("Loading quote...")
		}
		return ""
	}
	cursorIndex := -1
	if typed := len([]rune(m.input.Value())); typed < len(q) && !m.disabled {
		cursorIndex = typed
	}
	styled := buildStyledRunes(q, m.session.Cells(), cursorIndex)
	if m.width == 0 {
		return renderStyledRunes(styled)
	}
	contentWidth := maxInt(1, int(float64(m.width)*0.70))
	return lipgloss.NewStyle().Width(contentWidth).Render(wrapStyledRunes(styled, contentWidth))
}

func (m *Model) renderFooter() string {
	segments := []string{"enter: restart"}
	if m.session.Started() || m.disabled {
		segments = append(segments, "ctrl+r: retry")
	}
	segments = append(segments, "ctrl+c: quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderLeaderboard() string {
	lines := []string{titleStyle.Render("Leaderboard")}
	for _, line := range stats.LeaderboardLines(m.leaderboard) {
		lines = append(lines, footerStyle.Render("• "+line))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPopup() string {
	res := m.last
	title := "Finished!"
	if res.TimedOut {
		title = "Time's up!"
	}
	rows := []string{
		valueStyle.Render(title),
		"",
		titleStyle.Render("Time     ") + valueStyle.Render(typing.FormatClock(res.Elapsed)),
		titleStyle.Render("WPM      ") + valueStyle.Render(fmt.Sprintf("%d", res.WPM)),
		titleStyle.Render("Accuracy ") + valueStyle.Render(fmt.Sprintf("%d%%", res.Accuracy)),
		"",
		footerStyle.Render("esc: close  enter: restart"),
	}
	return popupStyle.Render(strings.Join(rows, "\n"))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
