package tui

import "github.com/charmbracelet/lipgloss"

// Color definitions for the TUI
var (
	// Status message colors
	successColor = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	errorColor   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // Red
	infoColor    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue

	// Money moving into and out of the bank account
	inflowColor  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	outflowColor = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow

	titleStyle     = lipgloss.NewStyle().Bold(true)
	cursorColor    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true) // Bright magenta
	highlightColor = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))            // Cyan
	dimmedColor    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	issuesColor    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// formatStatus returns a colored status message based on the status kind
func formatStatus(message string, kind statusKind) string {
	switch kind {
	case statusSuccess:
		return successColor.Render(message)
	case statusError:
		return errorColor.Render(message)
	case statusInfo:
		return infoColor.Render(message)
	default:
		return message
	}
}

// formatCursor returns a colored cursor marker
func formatCursor(marker string) string {
	return cursorColor.Render(marker)
}

// formatFlow colors an amount by whether it adds to the bank balance
func formatFlow(text string, inflow bool) string {
	if inflow {
		return inflowColor.Render(text)
	}
	return outflowColor.Render(text)
}
