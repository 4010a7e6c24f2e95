package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/cobrowse/pkg/session"
	"github.com/entrhq/cobrowse/pkg/types"
)

// Rows reserved around the conversation viewport: header, suggestions,
// loading line, input box and status bar.
const reservedRows = 10

const toastDuration = 2 * time.Second

type toastExpiredMsg struct{}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textareaBlink(), m.spinner.Tick)
}

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case submitResultMsg:
		return m.handleSubmitResult(msg)

	case *types.AgentEvent:
		return m.handleAgentEvent(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		if m.toast != nil && !time.Now().Before(m.toast.showUntil) {
			m.toast = nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.viewport.Width = msg.Width - 2
	m.viewport.Height = msg.Height - reservedRows
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.textarea.SetWidth(msg.Width - 6)

	if !m.ready {
		m.ready = true
		m.conv.MarkReady()
	}
	m.refresh()
	return m, nil
}

//nolint:gocyclo
func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+y":
		return m, m.copyLastReply()

	case "tab", "shift+tab":
		if m.showSuggestions() {
			n := len(session.SuggestedPrompts())
			if msg.String() == "tab" {
				m.suggestion = (m.suggestion + 1) % n
			} else {
				m.suggestion = (m.suggestion + n - 1) % n
			}
			return m, nil
		}

	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.busy {
			return m, m.showToast("Still working on the previous message.", true)
		}
		text := strings.TrimSpace(m.textarea.Value())
		if text == "" && m.showSuggestions() {
			text = session.SuggestedPrompts()[m.suggestion]
		}
		if text == "" {
			return m, nil
		}
		m.textarea.Reset()
		m.busy = true
		m.activity = nil
		m.loadingMessage = getRandomLoadingMessage()
		return m, tea.Batch(m.submit(text), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit runs the message through the conversation off the UI goroutine.
func (m *model) submit(text string) tea.Cmd {
	ctx := m.ctx
	conv := m.conv
	return func() tea.Msg {
		turn, err := conv.Submit(ctx, text)
		return submitResultMsg{turn: turn, err: err}
	}
}

func (m *model) handleSubmitResult(msg submitResultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	m.activity = nil
	m.refresh()

	if errors.Is(msg.err, session.ErrBusy) {
		return m, m.showToast("Still working on the previous message.", true)
	}
	return m, nil
}

func (m *model) handleAgentEvent(event *types.AgentEvent) (tea.Model, tea.Cmd) {
	switch event.Type {
	case types.EventTypeUpdateBusy:
		m.busy = event.IsBusy
	case types.EventTypeToolCall:
		m.activity = append(m.activity, formatToolCall(event.ToolName, event.ToolInput))
	case types.EventTypeToolResult:
		m.activity = append(m.activity, formatToolResult(event.Content))
	case types.EventTypeRateLimitWait:
		m.loadingMessage = fmt.Sprintf("Waiting %s before the next model call...", event.Wait.Round(time.Millisecond))
	case types.EventTypeAPICallStart:
		if event.Round > 1 {
			m.loadingMessage = "Reviewing what happened on the page..."
		}
	}
	m.refresh()
	return m, nil
}

func (m *model) copyLastReply() tea.Cmd {
	text := m.lastAssistantText()
	if text == "" {
		return m.showToast("Nothing to copy yet.", true)
	}
	if err := m.copy(text); err != nil {
		return m.showToast(fmt.Sprintf("Copy failed: %v", err), true)
	}
	return m.showToast("Copied last reply to clipboard.", false)
}

func (m *model) showToast(message string, isError bool) tea.Cmd {
	m.toast = &toastNotification{
		message:   message,
		isError:   isError,
		showUntil: time.Now().Add(toastDuration),
	}
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

// showSuggestions reports whether the suggested prompts are on screen.
func (m *model) showSuggestions() bool {
	return !m.busy && !m.conv.Busy() && m.conv.ShowSuggestions()
}
