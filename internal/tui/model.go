// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/pitch"
	"github.com/verte-zerg/clef/internal/round"
	"github.com/verte-zerg/clef/internal/staff"
	statsPkg "github.com/verte-zerg/clef/internal/stats"
	"github.com/verte-zerg/clef/internal/store"
)

const (
	maxGuessLen  = 2
	tickInterval = 200 * time.Millisecond
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	inputStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	finishedStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

type (
	questionMsg pitch.Pitch
	timeUpMsg   pitch.Pitch
	finishedMsg model.RoundSummary
	tickMsg     time.Time
	savedMsg    struct {
		err     error
		current float64
		rounds  int
	}
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	cfg   model.Config
	store *store.Store

	ctrl   *round.Controller
	events chan tea.Msg

	width  int
	height int

	question    pitch.Pitch
	hasQuestion bool
	input       string
	feedback    string
	feedbackSty lipgloss.Style

	finished   *model.RoundSummary
	saveNotice string

	ratingNow   float64
	roundsSaved int
	hasHistory  bool
}

// NewModel constructs a practice model around a started controller.
// startRound must have been called by the caller so config errors
// surface on stderr before the alt screen opens.
func NewModel(cfg model.Config, st *store.Store, ctrl *round.Controller, events chan tea.Msg) *Model {
	m := &Model{
		cfg:    cfg,
		store:  st,
		ctrl:   ctrl,
		events: events,
	}
	m.loadFooterStats()
	return m
}

// StartRound builds a controller whose events feed the returned channel
// and starts it. The channel is buffered so events fired before the
// program loop runs are not lost.
func StartRound(cfg model.Config) (*round.Controller, chan tea.Msg, error) {
	events := make(chan tea.Msg, 16)
	ctrl := round.New(cfg, nil, nil, round.Events{
		Question: func(p pitch.Pitch) { events <- questionMsg(p) },
		TimeUp:   func(p pitch.Pitch) { events <- timeUpMsg(p) },
		Finished: func(s model.RoundSummary) { events <- finishedMsg(s) },
	})
	if err := ctrl.Start(); err != nil {
		return nil, nil, err
	}
	return ctrl, events, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitEvent(), m.tick())
}

func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case questionMsg:
		m.question = pitch.Pitch(msg)
		m.hasQuestion = true
		m.input = ""
		return m, m.waitEvent()
	case timeUpMsg:
		m.hasQuestion = false
		m.feedback = fmt.Sprintf("Too slow. That was %s.", nameOf(pitch.Pitch(msg)))
		m.feedbackSty = wrongStyle
		return m, m.waitEvent()
	case finishedMsg:
		summary := model.RoundSummary(msg)
		m.finished = &summary
		m.hasQuestion = false
		return m, m.save(summary)
	case savedMsg:
		if msg.err != nil {
			m.saveNotice = fmt.Sprintf("round not saved: %v", msg.err)
		} else {
			m.saveNotice = "round saved"
			m.ratingNow = msg.current
			m.roundsSaved = msg.rounds
			m.hasHistory = true
		}
		return m, nil
	case tickMsg:
		if m.ctrl.State() == round.StateRunning {
			return m, m.tick()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		if m.ctrl.State() == round.StateRunning {
			// Emits the finished event; the summary screen follows.
			m.ctrl.Stop()
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyEnter:
		if m.finished != nil {
			return m, tea.Quit
		}
		m.submit()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil
	case tea.KeyRunes:
		if m.finished != nil {
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		for _, r := range msg.Runes {
			if len([]rune(m.input)) < maxGuessLen {
				m.input += string(r)
			}
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) submit() {
	raw := strings.TrimSpace(m.input)
	m.input = ""
	switch m.ctrl.Submit(raw) {
	case round.AnswerCorrect:
		m.feedback = "Correct!"
		m.feedbackSty = correctStyle
	case round.AnswerWrong:
		m.feedback = "Not quite. Same note, try again."
		m.feedbackSty = wrongStyle
	case round.AnswerInvalid:
		m.feedback = fmt.Sprintf("%q is not a note name. Try letters A-G with # or b.", raw)
		m.feedbackSty = noticeStyle
	case round.AnswerClosed:
		m.feedback = "Too late. The next note is coming."
		m.feedbackSty = noticeStyle
	}
}

func (m *Model) save(summary model.RoundSummary) tea.Cmd {
	st := m.store
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := st.InsertRound(ctx, summary); err != nil {
			return savedMsg{err: err}
		}
		report, err := statsPkg.BuildReport(ctx, st, model.StatsConfig{})
		if err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{current: report.Current, rounds: len(report.Rounds)}
	}
}

func (m *Model) loadFooterStats() {
	report, err := statsPkg.BuildReport(context.Background(), m.store, model.StatsConfig{})
	if err != nil {
		logErrf("failed to load round history: %v\n", err)
		return
	}
	m.roundsSaved = len(report.Rounds)
	m.ratingNow = report.Current
	m.hasHistory = m.roundsSaved > 0
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.finished != nil {
		return m.viewFinished()
	}
	content := strings.Join([]string{
		m.renderHeader(),
		"",
		m.renderQuestion(),
		"",
		m.renderInput(),
		m.renderFeedback(),
	}, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	segments := []string{
		string(m.cfg.Difficulty),
		fmt.Sprintf("%s-%s", m.cfg.Low, m.cfg.High),
		fmt.Sprintf("%d notes", m.ctrl.PoolSize()),
	}
	if m.cfg.Questions > 0 {
		segments = append(segments, fmt.Sprintf("note %d/%d", m.ctrl.Answered()+1, m.cfg.Questions))
	} else {
		segments = append(segments, fmt.Sprintf("note %d", m.ctrl.Answered()+1))
	}
	if deadline, ok := m.ctrl.Deadline(); ok {
		left := time.Until(deadline)
		if left < 0 {
			left = 0
		}
		segments = append(segments, fmt.Sprintf("%.1fs", left.Seconds()))
	}
	header := headerStyle.Render(strings.Join(segments, " · "))
	score := scoreStyle.Render(fmt.Sprintf("score %+d", m.ctrl.Score()))
	return header + "  " + score
}

func (m *Model) renderQuestion() string {
	if !m.hasQuestion {
		return headerStyle.Render("...")
	}
	return staff.Render(m.question)
}

func (m *Model) renderInput() string {
	cursor := "_"
	if !m.hasQuestion {
		cursor = " "
	}
	return inputStyle.Render("Which note? " + m.input + cursor)
}

func (m *Model) renderFeedback() string {
	if m.feedback == "" {
		return ""
	}
	return m.feedbackSty.Render(m.feedback)
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasHistory {
		segments = append(segments, fmt.Sprintf("clef score %.0f", m.ratingNow))
		segments = append(segments, fmt.Sprintf("%d rounds played", m.roundsSaved))
	}
	segments = append(segments, "esc ends the round")
	footer := strings.Join(segments, "  ·  ")
	if m.width > 0 {
		footer = fitLine(footer, m.width)
	}
	return footerStyle.Render(footer)
}

func (m *Model) viewFinished() string {
	s := m.finished
	lines := []string{
		scoreStyle.Render("Round over"),
		"",
		fmt.Sprintf("Score      %+d", s.Score),
		fmt.Sprintf("Questions  %d", s.Answered),
		fmt.Sprintf("Difficulty %s", s.Difficulty),
	}
	if m.hasHistory {
		lines = append(lines, fmt.Sprintf("Clef score %.0f", m.ratingNow))
	}
	if m.saveNotice != "" {
		lines = append(lines, "", noticeStyle.Render(m.saveNotice))
	}
	lines = append(lines, "", footerStyle.Render("enter or q quits · clef stats shows history"))
	card := finishedStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return card
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

// nameOf renders a pitch without its octave for feedback lines. The
// octave suffix may span several digits and a leading minus sign.
func nameOf(p pitch.Pitch) string {
	s := p.String()
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i > 0 && s[i-1] == '-' {
		i--
	}
	return s[:i]
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
