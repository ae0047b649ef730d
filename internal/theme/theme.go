package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top header bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps full-screen view content.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// DraftCardStyle frames a presented email draft.
var DraftCardStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.NormalBorder()).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// WarningStyle highlights placeholder-recipient warnings and similar
// must-read notices.
var WarningStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorYellow)

// PriorityStyle returns a color-coded style for a draft priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityLow:
		return base.Foreground(ColorGray)
	default:
		return base.Foreground(ColorBlue)
	}
}

// OutcomeStyle returns a color-coded style for a send outcome line.
func OutcomeStyle(delivered bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	if delivered {
		return base.Foreground(ColorGreen)
	}
	return base.Foreground(ColorRed)
}
