// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/clef/internal/model"
	"github.com/verte-zerg/clef/internal/stats"
	"github.com/verte-zerg/clef/internal/store"
)

const (
	tabOverview = iota
	tabRounds
)

const plotHeight = 10

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report stats.Report
	errMsg string

	tabs        []string
	activeTab   int
	overview    viewport.Model
	roundsTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Rounds"},
	}
	m.initInputs()
	m.overview = viewport.New(0, 0)
	m.roundsTable = buildRoundsTable(0, 1)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow++
			m.refreshReport()
			m.renderContents()
			return m, nil
		case "-":
			if m.cfg.CurveWindow > 1 {
				m.cfg.CurveWindow--
				m.refreshReport()
				m.renderContents()
			}
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if m.activeTab == tabRounds {
				m.roundsTable.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRounds {
				m.roundsTable.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabRounds {
				var cmd tea.Cmd
				m.roundsTable, cmd = m.roundsTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := m.renderHeader()
	var body string
	if m.activeTab == tabRounds {
		body = m.roundsTable.View()
	} else {
		body = m.overview.View()
	}
	footer := m.renderFooter()
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Difficulty: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(strings.TrimSpace(m.cfg.Difficulty))
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterIndex = 0
	m.filterError = ""
	m.setInputsFromConfig()
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	return m, m.filterInputs[0].Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.focusFilter(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focusFilter(m.filterIndex - 1)
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		m.renderContents()
		return m, tea.ClearScreen
	default:
		var cmd tea.Cmd
		m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
		return m, cmd
	}
}

func (m *Model) focusFilter(index int) tea.Cmd {
	count := len(m.filterInputs)
	index = ((index % count) + count) % count
	m.filterInputs[m.filterIndex].Blur()
	m.filterIndex = index
	return m.filterInputs[index].Focus()
}

func (m *Model) applyFilter() error {
	difficulty := strings.TrimSpace(strings.ToLower(m.filterInputs[0].Value()))
	if difficulty != "" && !model.Difficulty(difficulty).Valid() {
		return fmt.Errorf("difficulty must be easy, medium, or hard")
	}
	var since *time.Time
	if raw := strings.TrimSpace(m.filterInputs[1].Value()); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fmt.Errorf("invalid since date: %w", err)
		}
		since = &parsed
	}
	last := 0
	if raw := strings.TrimSpace(m.filterInputs[2].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return fmt.Errorf("last must be a non-negative number")
		}
		last = parsed
	}
	window := m.cfg.CurveWindow
	if raw := strings.TrimSpace(m.filterInputs[3].Value()); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return fmt.Errorf("curve window must be a positive number")
		}
		window = parsed
	}
	m.cfg.Difficulty = difficulty
	m.cfg.Since = since
	m.cfg.Last = last
	m.cfg.CurveWindow = window
	return nil
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = ((m.activeTab+delta)%count + count) % count
	m.renderContents()
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	bodyHeight := m.height - m.headerHeight() - m.footerHeight()
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.roundsTable = buildRoundsTable(m.width, bodyHeight)
	m.roundsTable.SetRows(roundsRows(m.report))
}

func (m *Model) headerHeight() int {
	h := lipgloss.Height(activeNavStyle.Render("X"))
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) footerHeight() int {
	h := 1
	if m.filterMode {
		h += len(m.filterInputs)
		if m.filterError != "" {
			h++
		}
	} else if m.errMsg != "" {
		h++
	}
	return h
}

func (m *Model) renderContents() {
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, m.report); err != nil {
		m.errMsg = err.Error()
	}
	if err := stats.RenderRatingCurve(&buf, m.report.Points, m.cfg.CurveWindow, m.width, plotHeight); err != nil {
		m.errMsg = err.Error()
	}
	m.overview.SetContent(buf.String())
	m.roundsTable.SetRows(roundsRows(m.report))
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		lines := make([]string, 0, len(m.filterInputs)+1)
		for i := range m.filterInputs {
			lines = append(lines, m.filterInputs[i].View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		lines = append(lines, footerStyle.Render("enter applies · esc cancels · tab moves"))
		return strings.Join(lines, "\n")
	}
	segments := []string{
		fmt.Sprintf("clef score %.0f", m.report.Current),
		fmt.Sprintf("window %d", m.cfg.CurveWindow),
		"/ filters · =- window · q quits",
	}
	footer := footerStyle.Render(strings.Join(segments, "  ·  "))
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg) + "\n" + footer
	}
	return footer
}

func buildRoundsTable(width, height int) table.Model {
	dateWidth := 16
	diffWidth := 10
	scoreWidth := 6
	questionsWidth := 9
	deltaWidth := 8
	rangeWidth := width - dateWidth - diffWidth - scoreWidth - questionsWidth - deltaWidth - 10
	if rangeWidth < 9 {
		rangeWidth = 9
	}
	columns := []table.Column{
		{Title: "Ended", Width: dateWidth},
		{Title: "Difficulty", Width: diffWidth},
		{Title: "Range", Width: rangeWidth},
		{Title: "Score", Width: scoreWidth},
		{Title: "Questions", Width: questionsWidth},
		{Title: "Δ Rating", Width: deltaWidth},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	return t
}

func roundsRows(report stats.Report) []table.Row {
	rows := make([]table.Row, 0, len(report.Rounds))
	for i := len(report.Rounds) - 1; i >= 0; i-- {
		rows = append(rows, table.Row(stats.RoundRow(report.Rounds[i], report.PointByID)))
	}
	return rows
}
