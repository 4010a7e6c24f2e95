package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cobrowse/pkg/session"
)

func textareaBlink() tea.Cmd {
	return textarea.Blink
}

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.buildHeader(),
		m.viewport.View(),
		m.buildSuggestions(),
		m.buildLoadingIndicator(),
		m.buildInputBox(),
		m.buildBottomBar(),
	)
}

// buildHeader renders the title and usage tips
func (m *model) buildHeader() string {
	title := headerStyle.Render(" " + m.header)
	tips := tipsStyle.Render("  Enter to send • Tab to pick a suggestion • Ctrl+Y to copy the last reply • PgUp/PgDn to scroll • Ctrl+C to exit")
	return title + "\n" + tips
}

// buildSuggestions renders the suggested prompts before the first exchange
func (m *model) buildSuggestions() string {
	if !m.showSuggestions() {
		return "\n\n"
	}
	prompts := session.SuggestedPrompts()
	chips := make([]string, len(prompts))
	for i, p := range prompts {
		style := suggestionStyle
		if i == m.suggestion {
			style = selectedSuggestionStyle
		}
		chips[i] = style.Render(p)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// buildLoadingIndicator renders the spinner while a message is processed
func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(accentBlue).
		Padding(0, 2).
		Render(fmt.Sprintf("%s %s", m.spinner.View(), m.loadingMessage))
}

// buildInputBox renders the text input area
func (m *model) buildInputBox() string {
	width := m.width - 4
	if width < 10 {
		width = 10
	}
	return inputBoxStyle.Width(width).Render(m.textarea.View())
}

// buildBottomBar renders the status bar or the active toast
func (m *model) buildBottomBar() string {
	if m.toast != nil {
		style := toolStyle
		if m.toast.isError {
			style = errorStyle
		}
		return statusBarStyle.Render(style.Render(m.toast.message))
	}

	status := "Ready"
	if m.busy {
		status = "Busy"
	}
	turns := len(m.conv.Turns())
	return statusBarStyle.Render(strings.Join([]string{status, fmt.Sprintf("%d messages", turns)}, " • "))
}
