package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cobrowse/pkg/agent"
	"github.com/entrhq/cobrowse/pkg/types"
)

// stubRunner returns a fixed reply and records what it was given.
type stubRunner struct {
	mu       sync.Mutex
	mode     agent.Mode
	reply    *agent.Reply
	err      error
	release  chan struct{}
	started  chan struct{}
	history  [][]types.ConversationTurn
	executed [][]types.ToolCallIntent
}

func (r *stubRunner) Run(ctx context.Context, history []types.ConversationTurn, message string) (*agent.Reply, error) {
	r.mu.Lock()
	r.history = append(r.history, history)
	r.mu.Unlock()

	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.reply, nil
}

func (r *stubRunner) ExecuteIntents(ctx context.Context, intents []types.ToolCallIntent) []types.ToolExecutionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executed = append(r.executed, intents)
	return nil
}

func (r *stubRunner) Mode() agent.Mode {
	if r.mode == "" {
		return agent.ModeClient
	}
	return r.mode
}

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestNewSessionGreeting(t *testing.T) {
	s := New(&stubRunner{}, WithClock(clock))

	turns := s.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, types.RoleAssistant, turns[0].Role)
	assert.Equal(t, Greeting(agent.ModeClient, ""), turns[0].Text)
	assert.True(t, turns[0].Timestamp.IsZero())
	assert.NotEmpty(t, s.ID())
	assert.True(t, s.ShowSuggestions())
}

func TestMarkReadyBackfillsOnce(t *testing.T) {
	now := fixedNow
	s := New(&stubRunner{}, WithClock(func() time.Time { return now }))

	s.MarkReady()
	assert.Equal(t, fixedNow, s.Turns()[0].Timestamp)

	now = now.Add(time.Hour)
	s.MarkReady()
	assert.Equal(t, fixedNow, s.Turns()[0].Timestamp)
}

func TestGreeting(t *testing.T) {
	assert.Contains(t, Greeting(agent.ModeClient, "Nitin Jangid"), "Co-Browse Engine")
	assert.Contains(t, Greeting(agent.ModeServer, "Nitin Jangid"), "Nitin Jangid's portfolio")
	assert.Contains(t, Greeting(agent.ModeServer, ""), "this portfolio")
}

func TestSubmit(t *testing.T) {
	runner := &stubRunner{reply: &agent.Reply{Text: "Here are my projects!"}}
	s := New(runner, WithClock(clock))

	turn, err := s.Submit(context.Background(), "Show me projects")
	require.NoError(t, err)
	assert.Equal(t, types.ConversationTurn{Role: types.RoleAssistant, Text: "Here are my projects!", Timestamp: fixedNow}, turn)

	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, types.RoleUser, turns[1].Role)
	assert.Equal(t, "Show me projects", turns[1].Text)
	assert.False(t, s.ShowSuggestions())

	// The greeting is not part of the model-facing history.
	require.Len(t, runner.history, 1)
	assert.Empty(t, runner.history[0])
}

func TestSubmitPassesPriorHistory(t *testing.T) {
	runner := &stubRunner{reply: &agent.Reply{Text: "ok"}}
	s := New(runner, WithClock(clock))

	_, err := s.Submit(context.Background(), "first")
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, runner.history, 2)
	assert.Equal(t, []types.ConversationTurn{
		{Role: types.RoleUser, Text: "first", Timestamp: fixedNow},
		{Role: types.RoleAssistant, Text: "ok", Timestamp: fixedNow},
	}, runner.history[1])
}

func TestSubmitErrorBecomesTurn(t *testing.T) {
	runner := &stubRunner{err: errors.New("LLM API key not configured")}
	var events []*types.AgentEvent
	s := New(runner, WithClock(clock), WithEventSink(func(e *types.AgentEvent) { events = append(events, e) }))

	turn, err := s.Submit(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, "Error: LLM API key not configured", turn.Text)
	assert.Len(t, s.Turns(), 3)
	assert.False(t, s.Busy())

	require.Len(t, events, 2)
	assert.True(t, events[0].IsBusy)
	assert.False(t, events[1].IsBusy)

	runner.err = nil
	runner.reply = &agent.Reply{Text: "recovered"}
	turn, err = s.Submit(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "recovered", turn.Text)
}

func TestSubmitRejectsEmptyMessage(t *testing.T) {
	s := New(&stubRunner{})
	_, err := s.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, s.Turns(), 1)
}

func TestSubmitWhileBusy(t *testing.T) {
	runner := &stubRunner{
		reply:   &agent.Reply{Text: "done"},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	s := New(runner)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), "first")
		done <- err
	}()
	<-runner.started

	assert.True(t, s.Busy())
	_, err := s.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, s.Turns(), 2, "busy submission does not touch history")

	close(runner.release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Len(t, s.Turns(), 3)
}

func TestServerModeExecutesIntentsAfterReply(t *testing.T) {
	intents := []types.ToolCallIntent{{Name: "scrollToSection", Args: map[string]interface{}{"sectionId": "desktop"}}}
	runner := &stubRunner{
		mode:  agent.ModeServer,
		reply: &agent.Reply{Text: agent.ServerAcknowledgement, Intents: intents},
	}
	s := New(runner)

	turn, err := s.Submit(context.Background(), "show projects")
	require.NoError(t, err)
	assert.Equal(t, agent.ServerAcknowledgement, turn.Text)
	require.Len(t, runner.executed, 1)
	assert.Equal(t, intents, runner.executed[0])
}

func TestModelHistoryBudget(t *testing.T) {
	runner := &stubRunner{reply: &agent.Reply{Text: strings.Repeat("x", 40)}}
	// Each exchange costs: user "q" (1+1+4) + assistant 40 chars (10+3+4) = 23.
	s := New(runner, WithHistoryBudget(50))

	for i := 0; i < 3; i++ {
		_, err := s.Submit(context.Background(), "q")
		require.NoError(t, err)
	}

	history := s.ModelHistory()
	require.Len(t, history, 4)
	assert.Equal(t, types.RoleUser, history[0].Role)

	wire := s.WireHistory()
	require.Len(t, wire, 4)
	assert.Equal(t, types.WireRoleUser, wire[0].Role)
	assert.Equal(t, types.WireRoleModel, wire[1].Role)
}

func TestModelHistoryUnlimited(t *testing.T) {
	runner := &stubRunner{reply: &agent.Reply{Text: "ok"}}
	s := New(runner, WithHistoryBudget(0))
	for i := 0; i < 5; i++ {
		_, err := s.Submit(context.Background(), "q")
		require.NoError(t, err)
	}
	assert.Len(t, s.ModelHistory(), 10)
}

func TestSuggestedPromptsCopy(t *testing.T) {
	prompts := SuggestedPrompts()
	assert.Equal(t, []string{"Scroll down", "Show me projects", "What is this site?", "Go to contact"}, prompts)
	prompts[0] = "changed"
	assert.Equal(t, "Scroll down", SuggestedPrompts()[0])
}
