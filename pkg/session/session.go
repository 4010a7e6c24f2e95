// Package session keeps the visible conversation of one chat surface and
// serializes message submission through the orchestration loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/entrhq/cobrowse/pkg/agent"
	"github.com/entrhq/cobrowse/pkg/llm/tokenizer"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/types"
)

var (
	// ErrBusy is returned when a message is submitted while another is
	// still being processed.
	ErrBusy = errors.New("session is busy")

	// ErrEmptyMessage is returned for blank submissions.
	ErrEmptyMessage = errors.New("message is empty")
)

// DefaultHistoryTokens bounds the history sent to the model.
const DefaultHistoryTokens = 4000

var sessionLog *logging.Logger

func init() {
	sessionLog = logging.MustNew("session")
}

// Runner processes one message. *agent.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, history []types.ConversationTurn, message string) (*agent.Reply, error)
	ExecuteIntents(ctx context.Context, intents []types.ToolCallIntent) []types.ToolExecutionResult
	Mode() agent.Mode
}

// Session holds the ordered turns of one conversation.
type Session struct {
	id        string
	runner    Runner
	tokenizer *tokenizer.Tokenizer
	budget    int
	events    types.EventSink
	now       func() time.Time

	mu    sync.Mutex
	turns []types.ConversationTurn
	busy  bool
}

// Option configures a Session.
type Option func(*Session)

// WithGreeting replaces the mode's default greeting.
func WithGreeting(text string) Option {
	return func(s *Session) {
		s.turns = []types.ConversationTurn{{Role: types.RoleAssistant, Text: text}}
	}
}

// WithTokenizer sets the tokenizer used for the history budget.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(s *Session) {
		s.tokenizer = t
	}
}

// WithHistoryBudget caps the tokens of history sent to the model. Zero or
// less disables the cap.
func WithHistoryBudget(tokens int) Option {
	return func(s *Session) {
		s.budget = tokens
	}
}

// WithEventSink receives busy status events.
func WithEventSink(sink types.EventSink) Option {
	return func(s *Session) {
		s.events = sink
	}
}

// WithClock replaces time.Now for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a session whose first turn is the greeting. The greeting has a
// zero timestamp until MarkReady is called.
func New(runner Runner, opts ...Option) *Session {
	s := &Session{
		id:     uuid.New().String(),
		runner: runner,
		budget: DefaultHistoryTokens,
		now:    time.Now,
		turns: []types.ConversationTurn{
			{Role: types.RoleAssistant, Text: Greeting(runner.Mode(), "")},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// MarkReady back-fills the greeting timestamp once the surface rendering it
// is ready. Later calls do nothing.
func (s *Session) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.turns) > 0 && s.turns[0].Timestamp.IsZero() {
		s.turns[0].Timestamp = s.now()
	}
}

// Turns returns a copy of the conversation.
func (s *Session) Turns() []types.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.ConversationTurn(nil), s.turns...)
}

// Busy reports whether a message is being processed.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// ShowSuggestions reports whether suggested prompts should be offered: only
// before the first exchange and while idle.
func (s *Session) ShowSuggestions() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns) <= 1 && !s.busy
}

// Submit appends text as a user turn, runs it through the loop and appends
// the assistant reply. Failures become an "Error: <msg>" assistant turn,
// which is returned together with the error; the session stays usable.
//
// In server mode the reply is appended before its intents are executed.
func (s *Session) Submit(ctx context.Context, text string) (types.ConversationTurn, error) {
	if strings.TrimSpace(text) == "" {
		return types.ConversationTurn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return types.ConversationTurn{}, ErrBusy
	}
	s.busy = true
	prior := append([]types.ConversationTurn(nil), s.turns...)
	s.turns = append(s.turns, types.ConversationTurn{Role: types.RoleUser, Text: text, Timestamp: s.now()})
	s.mu.Unlock()

	s.emitBusy(true)
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		s.emitBusy(false)
	}()

	reply, err := s.runner.Run(ctx, s.budgeted(types.TrimToFirstUser(prior)), text)
	if err != nil {
		sessionLog.Errorf("Session %s: %v", s.id, err)
		return s.appendAssistant(fmt.Sprintf("Error: %s", err.Error())), err
	}

	turn := s.appendAssistant(reply.Text)
	if s.runner.Mode() == agent.ModeServer && len(reply.Intents) > 0 {
		s.runner.ExecuteIntents(ctx, reply.Intents)
	}
	return turn, nil
}

func (s *Session) appendAssistant(text string) types.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn := types.ConversationTurn{Role: types.RoleAssistant, Text: text, Timestamp: s.now()}
	s.turns = append(s.turns, turn)
	return turn
}

func (s *Session) emitBusy(busy bool) {
	if s.events != nil {
		s.events(types.NewUpdateBusyEvent(busy))
	}
}
