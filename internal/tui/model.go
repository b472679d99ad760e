// Package tui provides the Bubble Tea scoring interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"
	"github.com/verte-zerg/gullyscore/internal/scoreboard"
)

// Store persists snapshots and archives finished matches.
type Store interface {
	SaveMatch(ctx context.Context, m model.Match) error
	ArchiveMatch(ctx context.Context, rec model.MatchRecord) error
}

const (
	fieldTeamA = iota
	fieldTeamB
	fieldOvers
)

// Model implements the Bubble Tea scorer.
type Model struct {
	store    Store
	match    model.Match
	defaults model.MatchSetup

	width  int
	height int

	setupMode  bool
	inputs     []textinput.Model
	inputIndex int
	formError  string

	// pendingExtra is set while waiting for the runs taken off a wide or no-ball.
	pendingExtra model.BallKind

	status string
	errMsg string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	overLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	currentOverStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Underline(true)
	wicketStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	sixStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	fourStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	dotStyle         = pendingStyle
	extraStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF"))
	runStyle         = correctStyle
	cardStyle        = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	resultStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs a scorer for the loaded match. A match that has not
// started opens the setup form prefilled with defaults.
func NewModel(st Store, m model.Match, defaults model.MatchSetup) *Model {
	mdl := &Model{
		store:    st,
		match:    m,
		defaults: defaults,
	}
	mdl.initInputs()
	if !m.Started {
		mdl.startSetup()
	}
	return mdl
}

// Match returns the snapshot currently shown.
func (m *Model) Match() model.Match {
	return m.match
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.setupMode {
		return textinput.Blink
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.setupMode {
			return m.updateSetup(msg)
		}
		if m.pendingExtra != "" {
			return m.updateExtra(msg)
		}
		return m.updateScoring(msg)
	}
	if m.setupMode {
		var cmd tea.Cmd
		m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateScoring(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "0", "1", "2", "3", "4", "5", "6":
		runs, _ := strconv.Atoi(key)
		ev := model.BallEvent{Kind: model.KindRun, Value: runs}
		m.transition(func(s model.Match) model.Match { return engine.RecordBall(s, ev) }, "")
	case "w":
		ev := model.BallEvent{Kind: model.KindWicket}
		m.transition(func(s model.Match) model.Match { return engine.RecordBall(s, ev) }, "")
	case "d":
		m.beginExtra(model.KindWide)
	case "n":
		m.beginExtra(model.KindNoBall)
	case "u":
		m.transition(engine.UndoLast, "Nothing to undo in this innings.")
	case "r":
		m.transition(engine.RedoLast, "Nothing to redo.")
	case "s":
		m.transition(engine.SwitchInnings, "Innings can only be switched during the first innings.")
	case "e":
		m.transition(engine.EndMatch, "Match already ended.")
	case "R":
		m.reset()
		return m, m.startSetup()
	}
	return m, nil
}

func (m *Model) beginExtra(kind model.BallKind) {
	if !m.match.Started || m.match.Ended {
		m.status = "Match is not in play."
		return
	}
	m.pendingExtra = kind
	m.status = ""
}

func (m *Model) updateExtra(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.pendingExtra
	switch msg.Type {
	case tea.KeyEsc:
		m.pendingExtra = ""
		return m, nil
	case tea.KeyEnter:
		m.pendingExtra = ""
		m.record(model.BallEvent{Kind: kind})
		return m, nil
	}
	key := msg.String()
	if len(key) == 1 && key[0] >= '0' && key[0] <= '0'+engine.MaxRunsPerBall {
		m.pendingExtra = ""
		m.record(model.BallEvent{Kind: kind, Value: int(key[0] - '0')})
	}
	return m, nil
}

func (m *Model) record(ev model.BallEvent) {
	m.transition(func(s model.Match) model.Match { return engine.RecordBall(s, ev) }, "")
}

// transition applies fn to the current snapshot and persists the result.
// noop is shown when fn leaves the snapshot unchanged.
func (m *Model) transition(fn func(model.Match) model.Match, noop string) {
	before := m.match
	after := fn(before)
	if after.Equal(before) {
		m.status = noop
		return
	}
	m.match = after
	m.status = ""
	m.persist(before, after)
}

func (m *Model) persist(before, after model.Match) {
	if m.store == nil {
		return
	}
	ctx := context.Background()
	m.errMsg = ""
	if err := m.store.SaveMatch(ctx, after); err != nil {
		logErrf("failed to save match: %v\n", err)
		m.errMsg = "Save failed: " + err.Error()
	}
	if !after.Ended || before.Ended {
		return
	}
	rec, ok := engine.Record(after)
	if !ok {
		return
	}
	rec.EndedAt = time.Now()
	if err := m.store.ArchiveMatch(ctx, rec); err != nil {
		logErrf("failed to archive match: %v\n", err)
		m.errMsg = "Archive failed: " + err.Error()
	}
}

func (m *Model) reset() {
	m.match = engine.DefaultMatch()
	m.pendingExtra = ""
	m.status = "Match reset."
	if m.store == nil {
		return
	}
	if err := m.store.SaveMatch(context.Background(), m.match); err != nil {
		logErrf("failed to reset match: %v\n", err)
		m.errMsg = "Reset failed: " + err.Error()
	}
}

func (m *Model) initInputs() {
	m.inputs = []textinput.Model{
		newFormInput("Team A (bats first): "),
		newFormInput("Team B: "),
		newFormInput("Overs: "),
	}
	m.inputs[fieldOvers].CharLimit = 3
	m.inputs[fieldOvers].Placeholder = strconv.Itoa(engine.DefaultOvers)
}

func newFormInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 32
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) startSetup() tea.Cmd {
	m.setupMode = true
	m.formError = ""
	m.inputs[fieldTeamA].SetValue(m.defaults.TeamA)
	m.inputs[fieldTeamB].SetValue(m.defaults.TeamB)
	overs := ""
	if m.defaults.Overs > 0 {
		overs = strconv.Itoa(m.defaults.Overs)
	}
	m.inputs[fieldOvers].SetValue(overs)
	return m.setInputIndex(fieldTeamA)
}

func (m *Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if !m.match.Started {
			return m, tea.Quit
		}
		m.setupMode = false
		m.formError = ""
		return m, nil
	case tea.KeyEnter:
		setup, err := m.setupFromInputs()
		if err != nil {
			m.formError = err.Error()
			return m, nil
		}
		m.setupMode = false
		m.formError = ""
		m.defaults = setup
		m.transition(func(model.Match) model.Match { return engine.StartMatch(setup) }, "")
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.setInputIndex(m.inputIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setInputIndex(m.inputIndex - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
	return m, cmd
}

func (m *Model) setupFromInputs() (model.MatchSetup, error) {
	setup := model.MatchSetup{
		TeamA: strings.TrimSpace(m.inputs[fieldTeamA].Value()),
		TeamB: strings.TrimSpace(m.inputs[fieldTeamB].Value()),
	}
	oversInput := strings.TrimSpace(m.inputs[fieldOvers].Value())
	if oversInput == "" {
		setup.Overs = engine.DefaultOvers
		return setup, nil
	}
	overs, err := strconv.Atoi(oversInput)
	if err != nil || overs < 1 {
		return model.MatchSetup{}, fmt.Errorf("invalid overs (use a whole number >= 1)")
	}
	setup.Overs = overs
	return setup, nil
}

func (m *Model) setInputIndex(idx int) tea.Cmd {
	count := len(m.inputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.inputIndex = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.inputIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateLayout() {
	for i := range m.inputs {
		promptWidth := lipgloss.Width(m.inputs[i].Prompt)
		m.inputs[i].Width = max(10, min(40, m.width-promptWidth-4))
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	if m.setupMode {
		content = m.renderSetup()
	} else {
		content = m.renderScoring()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(1, m.height-footerHeight)
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	return body + "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) renderSetup() string {
	lines := []string{cardValueStyle.Render("New match"), ""}
	for i := range m.inputs {
		lines = append(lines, m.inputs[i].View())
	}
	if m.formError != "" {
		lines = append(lines, "", errorStyle.Render(m.formError))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderScoring() string {
	inn, ok := m.match.Current()
	if !ok {
		return pendingStyle.Render("No innings in play.")
	}
	title := fmt.Sprintf("%s vs %s · %d over match · Innings %d",
		m.match.TeamA, m.match.TeamB, m.match.OversLimit, m.match.CurrentInnings+1)
	parts := []string{
		footerStyle.Render(title),
		m.renderCards(inn),
		m.renderOvers(inn),
	}
	if m.match.Ended {
		parts = append(parts, resultStyle.Render(engine.ResultText(m.match)))
		for i, played := range m.match.Innings {
			if i == m.match.CurrentInnings {
				continue
			}
			parts = append(parts, pendingStyle.Render(scoreboard.ScoreLine(played)))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Center, parts...)
}

func (m *Model) renderCards(inn model.Innings) string {
	cards := []string{
		metricCard(inn.BattingTeam, fmt.Sprintf("%d/%d", inn.Runs, inn.Wickets)),
		metricCard("Overs", fmt.Sprintf("%s/%d", engine.FormatOvers(inn.Balls), m.match.OversLimit)),
		metricCard("Run rate", fmt.Sprintf("%.2f", engine.RunRate(inn))),
	}
	if target, ok := engine.Target(m.match); ok {
		needed, _ := engine.RunsNeeded(m.match)
		rrr, _ := engine.RequiredRunRate(m.match)
		cards = append(cards,
			metricCard("Target", strconv.Itoa(target)),
			metricCard("Need", fmt.Sprintf("%d off %d", needed, engine.BallsRemaining(m.match))),
			metricCard("Req. rate", fmt.Sprintf("%.2f", rrr)),
		)
	}
	if m.width > 0 && lipgloss.Width(lipgloss.JoinHorizontal(lipgloss.Top, cards...)) > m.width {
		half := (len(cards) + 1) / 2
		return lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.JoinHorizontal(lipgloss.Top, cards[:half]...),
			lipgloss.JoinHorizontal(lipgloss.Top, cards[half:]...),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderOvers(inn model.Innings) string {
	cells := buildOverCells(inn.Overs, engine.CurrentOverIndex(inn))
	width := 0
	if m.width > 0 {
		width = max(1, int(float64(m.width)*0.70))
	}
	return wrapCells(cells, width)
}

func (m *Model) renderFooter() string {
	var help string
	switch {
	case m.setupMode:
		help = "tab: next field  enter: start  esc: cancel"
	case m.pendingExtra != "":
		help = fmt.Sprintf("%s: runs taken 0-%d  enter: none  esc: cancel", extraName(m.pendingExtra), engine.MaxRunsPerBall)
	case m.match.Ended:
		help = "R: new match  q: quit"
	default:
		help = "0-6: runs  w: wicket  d: wide  n: no-ball  u: undo  r: redo  s: switch  e: end  R: reset  q: quit"
	}
	lines := []string{footerStyle.Render(help)}
	if m.status != "" {
		lines = append(lines, pendingStyle.Render(m.status))
	}
	if m.errMsg != "" {
		lines = append(lines, errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func extraName(kind model.BallKind) string {
	if kind == model.KindWide {
		return "Wide"
	}
	return "No-ball"
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
