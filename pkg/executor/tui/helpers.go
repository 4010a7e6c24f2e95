package tui

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/cobrowse/pkg/types"
)

// getRandomLoadingMessage returns a loading message to show while busy
func getRandomLoadingMessage() string {
	messages := []string{
		"Thinking...",
		"Reading the page...",
		"Looking around...",
		"Finding the right section...",
		"Working on it...",
		"Consulting the portfolio...",
		"Lining up the next scroll...",
	}
	return messages[rand.Intn(len(messages))] //nolint:gosec
}

// formatTurn renders one conversation turn wrapped to width.
func formatTurn(turn types.ConversationTurn, width int) string {
	stamp := ""
	if !turn.Timestamp.IsZero() {
		stamp = " " + timestampStyle.Render(turn.Timestamp.Format("15:04"))
	}

	if turn.Role == types.RoleUser {
		return userStyle.Render("You") + stamp + "\n" + lipgloss.NewStyle().Width(width-2).Render(turn.Text)
	}

	style := assistantStyle
	if strings.HasPrefix(turn.Text, "Error: ") {
		style = errorStyle
	}
	return headerStyle.Render("Assistant") + stamp + "\n" + style.Width(width-2).Render(turn.Text)
}

// formatToolCall renders a tool call line.
func formatToolCall(name string, args map[string]interface{}) string {
	flat := make(map[string]string, len(args))
	for k, v := range args {
		flat[k] = fmt.Sprint(v)
	}
	parts := make([]string, 0, len(flat))
	for _, k := range types.SortedKeys(flat) {
		parts = append(parts, fmt.Sprintf("%s=%q", k, flat[k]))
	}
	return fmt.Sprintf("  ▸ %s(%s)", name, strings.Join(parts, ", "))
}

// formatToolResult renders a tool result line, truncated to one line.
func formatToolResult(result string) string {
	line, _, _ := strings.Cut(result, "\n")
	const limit = 120
	if len([]rune(line)) > limit {
		line = string([]rune(line)[:limit]) + "…"
	}
	return "    " + line
}
