package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/agent"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/keys"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/theme"
)

// SessionEndedMsg signals the parent that the user ended the session.
type SessionEndedMsg struct{}

// TurnReplyMsg carries the orchestrator's reply to a completed turn.
type TurnReplyMsg struct {
	Reply agent.Reply
}

// displayMessage represents a message rendered in the conversation
// viewport.
type displayMessage struct {
	Role    string
	Content string
}

// Model is the chat surface: a conversation viewport over an input
// textarea, driving the agent session one turn at a time.
type Model struct {
	session  *agent.Session
	ctx      context.Context
	input    textarea.Model
	viewport viewport.Model
	messages []displayMessage
	busy     bool
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new chat model over the given session. Turns run under
// ctx, so cancelling it interrupts an in-flight synthesis or send.
func New(ctx context.Context, session *agent.Session, k *keys.KeyMap, width, height int) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ta := textarea.New()
	ta.Placeholder = "What email would you like me to send?"
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vpHeight := height - 8 // space for input area + borders
	if vpHeight < 4 {
		vpHeight = 4
	}

	vp := viewport.New(width-4, vpHeight)
	vp.Style = lipgloss.NewStyle()

	return Model{
		session:  session,
		ctx:      ctx,
		input:    ta,
		viewport: vp,
		messages: make([]displayMessage, 0),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the chat view.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the chat view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TurnReplyMsg:
		return m.handleReply(msg.Reply)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	if taCmd != nil {
		cmds = append(cmds, taCmd)
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	if vpCmd != nil {
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input for the chat view.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		// One turn in flight at a time; drop input while busy.
		if m.busy {
			return m, nil
		}

		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			// Empty input is ignored; the prompt simply stays up.
			return m, nil
		}

		m.input.Reset()
		m.messages = append(m.messages, displayMessage{
			Role:    "You",
			Content: text,
		})
		m.busy = true
		m.refreshViewport()

		return m, m.runTurn(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// runTurn returns a command that hands the utterance to the session
// and delivers the reply. The session call blocks for the duration of
// any nested synthesis or send; a shutdown signal cancels m.ctx and the
// turn reports the interruption instead of hanging.
func (m Model) runTurn(text string) tea.Cmd {
	ctx := m.ctx
	session := m.session
	return func() tea.Msg {
		reply := session.HandleTurn(ctx, text)
		return TurnReplyMsg{Reply: reply}
	}
}

// handleReply renders the orchestrator's reply into the conversation.
func (m Model) handleReply(reply agent.Reply) (Model, tea.Cmd) {
	m.busy = false

	content := reply.Text
	if reply.Draft != nil {
		content = renderDraftCard(reply.Draft, reply.PlaceholderWarning, m.width-10) +
			"\n" + reply.Text
	}
	if reply.Outcome != nil {
		content = theme.OutcomeStyle(reply.Outcome.Delivered).Render(reply.Text)
	}

	m.messages = append(m.messages, displayMessage{
		Role:    "Assistant",
		Content: content,
	})
	m.refreshViewport()

	if reply.Quit {
		return m, func() tea.Msg { return SessionEndedMsg{} }
	}
	return m, nil
}

// refreshViewport re-renders the conversation content and scrolls to
// bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

// renderConversation builds the conversation display string.
func (m Model) renderConversation() string {
	if len(m.messages) == 0 {
		return lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("Describe the email you want to send and I will draft it. " +
				"Nothing is sent without your confirmation. " +
				"Type quit, exit, or bye to leave.")
	}

	var sections []string

	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	assistantStyle := roleStyle.Foreground(theme.ColorGreen)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	for _, msg := range m.messages {
		var label string
		switch msg.Role {
		case "You":
			label = userStyle.Render("You:")
		case "Assistant":
			label = assistantStyle.Render("Assistant:")
		default:
			label = roleStyle.Render(msg.Role + ":")
		}

		sections = append(sections, label)
		sections = append(sections, contentStyle.Render(msg.Content))
		sections = append(sections, "")
	}

	if m.busy {
		workingStyle := lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true)
		sections = append(sections, workingStyle.Render("..."))
	}

	return strings.Join(sections, "\n")
}

// renderDraftCard formats a draft for presentation, verbatim, inside a
// bordered card.
func renderDraftCard(draft *model.EmailDraft, placeholder bool, width int) string {
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGray)

	var sb strings.Builder
	sb.WriteString(labelStyle.Render("To:") + " " + strings.Join(draft.To, ", ") + "\n")
	if len(draft.Cc) > 0 {
		sb.WriteString(labelStyle.Render("Cc:") + " " + strings.Join(draft.Cc, ", ") + "\n")
	}
	if len(draft.Bcc) > 0 {
		sb.WriteString(labelStyle.Render("Bcc:") + " " + strings.Join(draft.Bcc, ", ") + "\n")
	}
	sb.WriteString(labelStyle.Render("Priority:") + " " +
		theme.PriorityStyle(draft.Priority).Render(string(draft.Priority)) + "\n")
	sb.WriteString(labelStyle.Render("Subject:") + " " + draft.Subject + "\n\n")
	sb.WriteString(draft.Body)

	card := theme.DraftCardStyle.Width(width).Render(sb.String())

	if placeholder {
		warning := theme.WarningStyle.Render(
			"⚠ This draft uses a placeholder recipient and cannot be sent yet.")
		return card + "\n" + warning
	}
	return card
}

// View renders the chat view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Email Assistant")

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(
		strings.Repeat("─", min(m.width-6, 80)),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		m.input.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the chat view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)

	vpHeight := height - 8
	if vpHeight < 4 {
		vpHeight = 4
	}
	m.viewport.Width = width - 4
	m.viewport.Height = vpHeight
	m.refreshViewport()
}

// Busy reports whether a turn is currently in flight.
func (m Model) Busy() bool {
	return m.busy
}
