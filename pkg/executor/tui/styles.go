package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	accentBlue  = lipgloss.Color("#3B82F6") // Matches the page highlight color
	softBlue    = lipgloss.Color("#93C5FD")
	mintGreen   = lipgloss.Color("#A8E6CF") // Tool activity
	salmonPink  = lipgloss.Color("#FFB3BA") // Errors
	mutedGray   = lipgloss.Color("#6B7280") // Secondary text
	brightWhite = lipgloss.Color("#F9FAFB") // Primary text
)

// Common Styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(accentBlue).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	userStyle = lipgloss.NewStyle().
			Foreground(softBlue).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(brightWhite)

	timestampStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Italic(true)

	toolStyle = lipgloss.NewStyle().
			Foreground(mintGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(softBlue).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)

	selectedSuggestionStyle = suggestionStyle.
				BorderForeground(accentBlue).
				Bold(true)

	// Container Styles
	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentBlue).
			Padding(0, 1)
)
