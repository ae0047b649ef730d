package app

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/agent"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/credential"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/keys"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/store"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ui"
	chatview "github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ui/chat"
	helpview "github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ui/help"
	historyview "github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ui/history"
	setupview "github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ui/setup"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChat ViewState = iota
	ViewHistory
	ViewHelp
	ViewSetup
)

// SenderFactory builds a delivery sender from the given configuration
// and SMTP password. The app uses it to replace the session's sender
// once first-run setup completes, so the pre-setup settings never leak
// into a send.
type SenderFactory func(cfg *model.AppConfig, smtpPassword string) agent.Sender

// Model is the root Bubble Tea model that manages view routing and
// layout.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap
	session     *agent.Session
	configPath  string
	newSender   SenderFactory

	chatView    chatview.Model
	historyView historyview.Model
	helpView    helpview.Model
	setupView   setupview.Model

	ready      bool
	statusNote string
}

// New creates the root application model. When needsSetup is true the
// application starts in the first-run configuration form. Chat turns
// run under ctx; newSender rebuilds the session's sender after setup.
func New(
	ctx context.Context,
	session *agent.Session,
	s store.Store,
	cfg *model.AppConfig,
	configPath string,
	needsSetup bool,
	newSender SenderFactory,
) Model {
	k := keys.DefaultKeyMap()

	current := ViewChat
	if needsSetup {
		current = ViewSetup
	}

	return Model{
		currentView: current,
		keys:        k,
		session:     session,
		configPath:  configPath,
		newSender:   newSender,
		chatView:    chatview.New(ctx, session, k, 80, 24),
		historyView: historyview.New(s, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		setupView:   setupview.New(cfg, 80, 24),
	}
}

// Init returns the initial command for the active view.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewSetup {
		return m.setupView.Init()
	}
	return m.chatView.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.chatView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.setupView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can lay out.
		return m.updateActiveView(msg)

	case chatview.SessionEndedMsg:
		return m, tea.Quit

	case chatview.TurnReplyMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd

	case historyview.CloseMsg:
		m.currentView = ViewChat
		return m, nil

	case setupview.DoneMsg:
		m.applySetup(msg)
		m.currentView = ViewChat
		return m, m.chatView.Init()

	case setupview.CancelMsg:
		m.currentView = ViewChat
		return m, m.chatView.Init()

	case tea.KeyMsg:
		return m.handleGlobalKey(msg)
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey routes application-wide keybindings before the
// active view sees the key.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.History):
		if m.currentView == ViewChat && !m.chatView.Busy() {
			m.currentView = ViewHistory
			return m, m.historyView.Init()
		}

	case key.Matches(msg, m.keys.Help):
		switch m.currentView {
		case ViewChat:
			m.currentView = ViewHelp
			return m, nil
		case ViewHelp:
			m.currentView = ViewChat
			return m, nil
		}

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHistory || m.currentView == ViewHelp {
			m.currentView = ViewChat
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView forwards a message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewChat:
		m.chatView, cmd = m.chatView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewSetup:
		m.setupView, cmd = m.setupView.Update(msg)
	}

	return m, cmd
}

// applySetup persists the completed first-run configuration: the YAML
// config to disk and the SMTP password to the system keyring. It then
// swaps the session's sender for one built from the new settings; the
// sender constructed at startup still holds the pre-setup host, sender
// address, and password.
func (m *Model) applySetup(msg setupview.DoneMsg) {
	if err := model.SaveConfig(m.configPath, msg.Config); err != nil {
		log.Printf("saving config: %v", err)
		m.statusNote = "could not save configuration"
	}
	if msg.SMTPPassword != "" {
		if err := credential.Set(credential.KeySMTPPassword, msg.SMTPPassword); err != nil {
			log.Printf("storing smtp password: %v", err)
			m.statusNote = "could not store password in keyring"
		}
	}
	if m.newSender != nil {
		m.session.SetSender(m.newSender(msg.Config, msg.SMTPPassword))
	}
}

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Email Assistant", m.session.State().String())

	var content string
	switch m.currentView {
	case ViewChat:
		content = m.chatView.View()
	case ViewHistory:
		content = m.historyView.View()
	case ViewHelp:
		content = m.helpView.View()
	case ViewSetup:
		content = m.setupView.View()
	}

	hints := "enter: send · ctrl+r: history · ctrl+g: help · ctrl+c: quit"
	if m.statusNote != "" {
		hints = fmt.Sprintf("%s — %s", m.statusNote, hints)
	}
	statusBar := m.layout.RenderStatusBar(hints)

	return m.layout.RenderWithFrame(header, content, statusBar)
}
