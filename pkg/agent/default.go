package agent

import (
	"sync"

	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/ratelimit"
	"github.com/entrhq/cobrowse/pkg/types"
)

var agentLog *logging.Logger

func init() {
	agentLog = logging.MustNew("agent")
}

// Orchestrator drives the loop for one conversation. Run is serialized: a
// conversation processes one message at a time.
type Orchestrator struct {
	provider     llm.Provider
	executor     ToolExecutor
	gate         *ratelimit.Gate
	mode         Mode
	maxFollowUps int
	system       string
	stateful     bool
	events       types.EventSink

	runMu sync.Mutex

	// chat is created on the first stateful Run and kept for the life of
	// the orchestrator.
	chat *llm.Chat
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMode selects client or server behavior.
func WithMode(mode Mode) Option {
	return func(o *Orchestrator) {
		o.mode = mode
	}
}

// WithMaxFollowUps sets how many tool-result round trips a turn may make.
// Zero means tool results are never sent back.
func WithMaxFollowUps(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.maxFollowUps = n
		}
	}
}

// WithGate shares a rate limiter. Each orchestrator otherwise owns one with
// the default gap.
func WithGate(g *ratelimit.Gate) Option {
	return func(o *Orchestrator) {
		o.gate = g
	}
}

// WithSystemInstruction sets the system instruction sent with every call.
func WithSystemInstruction(system string) Option {
	return func(o *Orchestrator) {
		o.system = system
	}
}

// WithStateful keeps the model conversation inside the orchestrator instead
// of rebuilding it from the caller's turns on every Run.
func WithStateful(stateful bool) Option {
	return func(o *Orchestrator) {
		o.stateful = stateful
	}
}

// WithEventSink receives loop events.
func WithEventSink(sink types.EventSink) Option {
	return func(o *Orchestrator) {
		o.events = sink
	}
}

// New creates an orchestrator calling provider and executing tools through
// executor.
func New(provider llm.Provider, executor ToolExecutor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:     provider,
		executor:     executor,
		mode:         ModeClient,
		maxFollowUps: DefaultMaxFollowUps,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.gate == nil {
		o.gate = ratelimit.NewGate()
	}
	return o
}

// Mode returns the configured mode.
func (o *Orchestrator) Mode() Mode {
	return o.mode
}

// Reset drops the stateful conversation. The next Run starts fresh.
func (o *Orchestrator) Reset() {
	o.runMu.Lock()
	defer o.runMu.Unlock()
	o.chat = nil
}

func (o *Orchestrator) emitEvent(event *types.AgentEvent) {
	if o.events != nil {
		o.events(event)
	}
}
