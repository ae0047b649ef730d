package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/keys"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/store"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/theme"
)

const historyLimit = 50

// CloseMsg signals the parent to close the history view.
type CloseMsg struct{}

// recordsLoadedMsg carries the loaded send records.
type recordsLoadedMsg struct {
	records []model.SendRecord
	err     error
}

// Model is the send-history view: a read-only viewport over the most
// recent send attempts.
type Model struct {
	store    store.Store
	viewport viewport.Model
	records  []model.SendRecord
	loadErr  error
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new history view model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width-4, height-6)
	return Model{
		store:    s,
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init loads the recent send records.
func (m Model) Init() tea.Cmd {
	return m.loadRecords()
}

// loadRecords returns a command that queries the store.
func (m Model) loadRecords() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		records, err := s.RecentSends(context.Background(), historyLimit)
		return recordsLoadedMsg{records: records, err: err}
	}
}

// Update handles messages for the history view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		m.records = msg.records
		m.loadErr = msg.err
		m.viewport.SetContent(m.renderRecords())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// renderRecords formats the send records, newest first.
func (m Model) renderRecords() string {
	if m.loadErr != nil {
		return theme.WarningStyle.Render(
			fmt.Sprintf("Could not load send history: %v", m.loadErr))
	}
	if len(m.records) == 0 {
		return theme.HelpStyle.Render("No emails have been sent yet.")
	}

	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	subjectStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	var lines []string
	for _, r := range m.records {
		status := theme.OutcomeStyle(r.Delivered).Render("sent")
		if !r.Delivered {
			status = theme.OutcomeStyle(false).Render("failed: " + string(r.Failure))
		}

		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			timeStyle.Render(r.SentAt.Local().Format("2006-01-02 15:04")),
			status,
			subjectStyle.Render(r.Subject),
		))
		lines = append(lines, "      "+theme.HelpStyle.Render(
			"to "+strings.Join(r.Recipients, ", ")))
	}

	return strings.Join(lines, "\n")
}

// View renders the history view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Send History"),
		m.viewport.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the history view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width - 4
	m.viewport.Height = height - 6
}
