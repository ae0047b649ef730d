package setup

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/theme"
)

// DoneMsg is dispatched when the user completes first-run setup.
// SMTPPassword travels separately; it is stored in the keyring, never
// in the config file.
type DoneMsg struct {
	Config       *model.AppConfig
	SMTPPassword string
}

// CancelMsg is dispatched when the user aborts setup.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	host     string
	port     string
	sender   string
	username string
	password string
	aiModel  string
}

// Model is the Bubble Tea model for the first-run configuration form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	cfg    *model.AppConfig
	width  int
	height int
}

// New creates a setup form pre-filled from the given configuration.
func New(cfg *model.AppConfig, width, height int) Model {
	fb := &formBindings{
		host:     cfg.SMTP.Host,
		port:     strconv.Itoa(cfg.SMTP.Port),
		sender:   cfg.SMTP.Sender,
		username: cfg.SMTP.Username,
		aiModel:  cfg.AI.Model,
	}

	m := Model{
		fb:     fb,
		cfg:    cfg,
		width:  width,
		height: height,
	}
	m.form = m.buildForm()
	return m
}

// buildForm constructs the huh form over the heap-allocated bindings.
func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SMTP server host").
				Value(&m.fb.host).
				Validate(notEmpty("host")),
			huh.NewInput().
				Title("SMTP server port").
				Value(&m.fb.port).
				Validate(validPort),
			huh.NewInput().
				Title("Sender address").
				Placeholder("you@example.org").
				Value(&m.fb.sender).
				Validate(notEmpty("sender address")),
			huh.NewInput().
				Title("SMTP username").
				Description("Usually the sender address. Leave empty to skip auth.").
				Value(&m.fb.username),
			huh.NewInput().
				Title("SMTP password").
				Description("Stored in the system keyring.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password),
			huh.NewInput().
				Title("Model").
				Description("Claude model used to draft emails.").
				Value(&m.fb.aiModel),
		),
	)
}

// Init starts the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the setup form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.finish()
	}

	return m, cmd
}

// finish folds the form values back into the configuration and
// reports completion.
func (m Model) finish() tea.Cmd {
	cfg := m.cfg
	fb := m.fb
	return func() tea.Msg {
		cfg.SMTP.Host = strings.TrimSpace(fb.host)
		cfg.SMTP.Port, _ = strconv.Atoi(strings.TrimSpace(fb.port))
		cfg.SMTP.Sender = strings.TrimSpace(fb.sender)
		cfg.SMTP.Username = strings.TrimSpace(fb.username)
		if fb.aiModel != "" {
			cfg.AI.Model = strings.TrimSpace(fb.aiModel)
		}

		return DoneMsg{Config: cfg, SMTPPassword: fb.password}
	}
}

// View renders the setup form.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Welcome! Let's set up your mail account."),
		m.form.View(),
	)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the setup view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validPort(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}
