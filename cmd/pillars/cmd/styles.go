package cmd

import "github.com/charmbracelet/lipgloss"

// Shared lipgloss styles for tabular command output.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	analyzingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	inactiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true)
)
