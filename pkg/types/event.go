package types

import "time"

// AgentEventType defines the type of event emitted by the orchestration loop.
type AgentEventType string

const (
	EventTypeStateChange   AgentEventType = "state_change"    // EventTypeStateChange indicates the loop moved to a new LoopState.
	EventTypeAPICallStart  AgentEventType = "api_call_start"  // EventTypeAPICallStart indicates a model call is about to be sent.
	EventTypeAPICallEnd    AgentEventType = "api_call_end"    // EventTypeAPICallEnd indicates a model call returned.
	EventTypeRateLimitWait AgentEventType = "rate_limit_wait" // EventTypeRateLimitWait indicates the caller is waiting out the minimum call gap.
	EventTypeToolCall      AgentEventType = "tool_call"       // EventTypeToolCall indicates the loop is executing a tool.
	EventTypeToolResult    AgentEventType = "tool_result"     // EventTypeToolResult carries the outcome of a tool execution.
	EventTypeUpdateBusy    AgentEventType = "update_busy"     // EventTypeUpdateBusy indicates a change in the session's busy status.
	EventTypeTurnEnd       AgentEventType = "turn_end"        // EventTypeTurnEnd indicates the assistant finished the current user turn.
	EventTypeError         AgentEventType = "error"           // EventTypeError indicates the current turn failed.
)

// LoopState is a state of the orchestration state machine.
type LoopState string

const (
	StateAwaitingUserInput LoopState = "awaiting_user_input"
	StateCallingModel      LoopState = "calling_model"
	StateExecutingTools    LoopState = "executing_tools"
	StateDone              LoopState = "done"
)

// AgentEvent represents an event emitted while a user turn is processed.
type AgentEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// ToolInput is the input sent to the tool (for tool call events).
	ToolInput map[string]interface{}

	// Error contains error information for error events.
	Error error

	// Content holds text content, e.g. the final reply for turn end events.
	Content string

	// ToolName is the name of the tool being called (for tool events).
	ToolName string

	// Type indicates the kind of event.
	Type AgentEventType

	// State is the new loop state (for state change events).
	State LoopState

	// IsBusy indicates if the session is busy (for busy status events).
	IsBusy bool

	// Wait is how long the caller was suspended (for rate limit events).
	Wait time.Duration

	// Round is the 1-based model call number within the turn (for API call events).
	Round int
}

// NewStateChangeEvent creates a state change event.
func NewStateChangeEvent(state LoopState) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeStateChange,
		State:    state,
		Metadata: make(map[string]interface{}),
	}
}

// NewAPICallStartEvent creates an API call start event.
func NewAPICallStartEvent(round, messageCount int) *AgentEvent {
	return &AgentEvent{
		Type:  EventTypeAPICallStart,
		Round: round,
		Metadata: map[string]interface{}{
			"message_count": messageCount,
		},
	}
}

// NewAPICallEndEvent creates an API call end event.
func NewAPICallEndEvent(round, toolCalls int) *AgentEvent {
	return &AgentEvent{
		Type:  EventTypeAPICallEnd,
		Round: round,
		Metadata: map[string]interface{}{
			"tool_calls": toolCalls,
		},
	}
}

// NewRateLimitWaitEvent creates a rate limit wait event.
func NewRateLimitWaitEvent(wait time.Duration) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeRateLimitWait,
		Wait:     wait,
		Metadata: make(map[string]interface{}),
	}
}

// NewToolCallEvent creates a tool call event.
func NewToolCallEvent(toolName string, input map[string]interface{}) *AgentEvent {
	return &AgentEvent{
		Type:      EventTypeToolCall,
		ToolName:  toolName,
		ToolInput: input,
		Metadata:  make(map[string]interface{}),
	}
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(toolName, result string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeToolResult,
		ToolName: toolName,
		Content:  result,
		Metadata: make(map[string]interface{}),
	}
}

// NewUpdateBusyEvent creates a busy status event.
func NewUpdateBusyEvent(isBusy bool) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeUpdateBusy,
		IsBusy:   isBusy,
		Metadata: make(map[string]interface{}),
	}
}

// NewTurnEndEvent creates a turn end event carrying the final reply.
func NewTurnEndEvent(reply string) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeTurnEnd,
		Content:  reply,
		Metadata: make(map[string]interface{}),
	}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err error) *AgentEvent {
	return &AgentEvent{
		Type:     EventTypeError,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// IsError returns true if this is an error event.
func (e *AgentEvent) IsError() bool {
	return e.Type == EventTypeError
}

// EventSink receives events emitted by the orchestration loop.
// Implementations must not block for long; the loop calls them inline.
type EventSink func(*AgentEvent)
