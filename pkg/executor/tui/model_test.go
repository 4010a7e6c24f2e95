package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cobrowse/pkg/session"
	"github.com/entrhq/cobrowse/pkg/types"
)

type fakeConversation struct {
	turns       []types.ConversationTurn
	ready       bool
	busy        bool
	suggestions bool
	submitted   []string
	err         error
}

func (f *fakeConversation) Turns() []types.ConversationTurn { return f.turns }
func (f *fakeConversation) MarkReady()                      { f.ready = true }
func (f *fakeConversation) Busy() bool                      { return f.busy }
func (f *fakeConversation) ShowSuggestions() bool           { return f.suggestions }

func (f *fakeConversation) Submit(_ context.Context, text string) (types.ConversationTurn, error) {
	f.submitted = append(f.submitted, text)
	if f.err != nil {
		return types.ConversationTurn{}, f.err
	}
	reply := types.NewAssistantTurn("echo: " + text)
	f.turns = append(f.turns, types.NewUserTurn(text), reply)
	return reply, nil
}

func newTestModel(conv *fakeConversation) *model {
	m := newModel(context.Background(), conv, "Test")
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return &m
}

func TestWindowResizeMarksReady(t *testing.T) {
	conv := &fakeConversation{turns: []types.ConversationTurn{types.NewAssistantTurn("Welcome")}}
	m := newTestModel(conv)

	assert.True(t, m.ready)
	assert.True(t, conv.ready)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 40-reservedRows, m.viewport.Height)
	assert.Contains(t, m.View(), "Welcome")
}

func TestViewBeforeResize(t *testing.T) {
	m := newModel(context.Background(), &fakeConversation{}, "Test")
	assert.Equal(t, "Initializing...", m.View())
}

func TestTabCyclesSuggestions(t *testing.T) {
	conv := &fakeConversation{suggestions: true}
	m := newTestModel(conv)
	n := len(session.SuggestedPrompts())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.suggestion)

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, n-1, m.suggestion)
}

func TestEnterSubmitsText(t *testing.T) {
	conv := &fakeConversation{}
	m := newTestModel(conv)
	m.textarea.SetValue("  show me projects ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Empty(t, m.textarea.Value())

	msg := m.submit("show me projects")()
	m.Update(msg)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"show me projects"}, conv.submitted)
	assert.Contains(t, m.viewport.View(), "echo: show me projects")
}

func TestEnterWithEmptyInputUsesSuggestion(t *testing.T) {
	tests := []struct {
		name        string
		suggestions bool
		wantBusy    bool
	}{
		{name: "suggestions shown", suggestions: true, wantBusy: true},
		{name: "suggestions hidden", suggestions: false, wantBusy: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(&fakeConversation{suggestions: tt.suggestions})
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			assert.Equal(t, tt.wantBusy, m.busy)
			assert.Equal(t, tt.wantBusy, cmd != nil)
		})
	}
}

func TestEnterWhileBusyShowsToast(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m.busy = true
	m.textarea.SetValue("hello")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.toast)
	assert.True(t, m.toast.isError)
	assert.Equal(t, "hello", m.textarea.Value())
}

func TestSubmitResultBusyError(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m.busy = true

	m.Update(submitResultMsg{err: session.ErrBusy})
	assert.False(t, m.busy)
	require.NotNil(t, m.toast)
	assert.Contains(t, m.toast.message, "Still working")
}

func TestCopyLastReply(t *testing.T) {
	tests := []struct {
		name      string
		turns     []types.ConversationTurn
		copyErr   error
		wantCopy  string
		wantError bool
	}{
		{
			name:      "nothing to copy",
			wantError: true,
		},
		{
			name: "copies latest assistant turn",
			turns: []types.ConversationTurn{
				types.NewAssistantTurn("first"),
				types.NewUserTurn("hi"),
				types.NewAssistantTurn("second"),
			},
			wantCopy: "second",
		},
		{
			name:      "clipboard failure",
			turns:     []types.ConversationTurn{types.NewAssistantTurn("reply")},
			copyErr:   errors.New("no clipboard"),
			wantCopy:  "reply",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(&fakeConversation{turns: tt.turns})
			var copied string
			m.copy = func(s string) error {
				copied = s
				return tt.copyErr
			}

			m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
			assert.Equal(t, tt.wantCopy, copied)
			require.NotNil(t, m.toast)
			assert.Equal(t, tt.wantError, m.toast.isError)
		})
	}
}

func TestToastExpires(t *testing.T) {
	m := newTestModel(&fakeConversation{})
	m.toast = &toastNotification{message: "done", showUntil: time.Now().Add(-time.Second)}

	m.Update(toastExpiredMsg{})
	assert.Nil(t, m.toast)
}

func TestAgentEventsUpdateActivity(t *testing.T) {
	m := newTestModel(&fakeConversation{})

	m.Update(types.NewUpdateBusyEvent(true))
	assert.True(t, m.busy)

	m.Update(types.NewToolCallEvent("scrollToSection", map[string]interface{}{"id": "projects"}))
	m.Update(types.NewToolResultEvent("scrollToSection", "Scrolled to projects"))
	require.Len(t, m.activity, 2)
	assert.Contains(t, m.activity[0], `scrollToSection(id="projects")`)
	assert.Contains(t, m.activity[1], "Scrolled to projects")

	m.Update(types.NewRateLimitWaitEvent(1500 * time.Millisecond))
	assert.Contains(t, m.loadingMessage, "1.5s")

	m.Update(types.NewUpdateBusyEvent(false))
	assert.False(t, m.busy)
}

func TestFormatToolResultTruncates(t *testing.T) {
	long := make([]rune, 200)
	for i := range long {
		long[i] = 'a'
	}
	got := formatToolResult(string(long) + "\nsecond line")
	assert.NotContains(t, got, "second line")
	assert.Len(t, []rune(got), 4+120+1)
}

func TestExecutorHandleEventWithoutProgram(t *testing.T) {
	e := NewExecutor(&fakeConversation{}, "")
	assert.Equal(t, DefaultHeader, e.header)
	assert.NotPanics(t, func() { e.HandleEvent(types.NewUpdateBusyEvent(true)) })
}
