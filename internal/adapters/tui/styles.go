package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Primary   = lipgloss.Color("#FF6B9D")
	Secondary = lipgloss.Color("#C792EA")
	Success   = lipgloss.Color("#C3E88D")
	Error     = lipgloss.Color("#F07178")
	Muted     = lipgloss.Color("#546E7A")
	Text      = lipgloss.Color("#EEFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(1, 2)

	ContentStyle = lipgloss.NewStyle().
			Foreground(Text).
			Italic(true)

	AuthorStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Align(lipgloss.Right)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatusStyle = lipgloss.NewStyle().
			Foreground(Success)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)

	HelpStyle = lipgloss.NewStyle().
			MarginTop(1)
)
