package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/cobrowse/pkg/types"
)

// Conversation is the session surface the TUI drives. *session.Session
// implements it.
type Conversation interface {
	Turns() []types.ConversationTurn
	MarkReady()
	Busy() bool
	ShowSuggestions() bool
	Submit(ctx context.Context, text string) (types.ConversationTurn, error)
}

// model represents the state of the TUI application.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ctx  context.Context
	conv Conversation

	// header is shown above the conversation.
	header string

	// activity holds tool lines of the turn in progress.
	activity []string

	// UI state
	busy           bool
	loadingMessage string
	suggestion     int // index of the highlighted suggested prompt
	toast          *toastNotification

	// copy writes to the system clipboard.
	copy func(string) error

	// Window dimensions
	width  int
	height int
	ready  bool
}

// submitResultMsg carries the outcome of Conversation.Submit.
type submitResultMsg struct {
	turn types.ConversationTurn
	err  error
}

// toastNotification represents a temporary notification message
type toastNotification struct {
	message   string
	isError   bool
	showUntil time.Time
}

func newModel(ctx context.Context, conv Conversation, header string) model {
	ta := textarea.New()
	ta.Placeholder = "Ask me to scroll, highlight, click or read..."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		viewport: viewport.New(80, 20),
		textarea: ta,
		spinner:  sp,
		ctx:      ctx,
		conv:     conv,
		header:   header,
		copy:     clipboard.WriteAll,
	}
}

// lastAssistantText returns the most recent assistant reply.
func (m *model) lastAssistantText() string {
	turns := m.conv.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == types.RoleAssistant {
			return turns[i].Text
		}
	}
	return ""
}

// refresh re-renders the conversation into the viewport.
func (m *model) refresh() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m *model) renderConversation() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, turn := range m.conv.Turns() {
		b.WriteString(formatTurn(turn, width))
		b.WriteString("\n\n")
	}
	for _, line := range m.activity {
		b.WriteString(toolStyle.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
