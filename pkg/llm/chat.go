package llm

import (
	"context"
	"sync"

	"github.com/entrhq/cobrowse/pkg/types"
)

// Chat is a stateful conversation with a provider. Every Send carries the
// full history, so the provider itself stays stateless.
type Chat struct {
	mu       sync.Mutex
	provider Provider
	system   string
	tools    []types.ToolSpec
	history  []Message
}

// NewChat creates a chat bound to a system instruction and tool catalog.
func NewChat(provider Provider, system string, tools []types.ToolSpec) *Chat {
	return &Chat{
		provider: provider,
		system:   system,
		tools:    append([]types.ToolSpec(nil), tools...),
	}
}

// Send appends msg to the conversation and asks the model for the next
// reply. History only grows when the call succeeds.
func (c *Chat) Send(ctx context.Context, msg Message) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	messages := make([]Message, 0, len(c.history)+1)
	messages = append(messages, c.history...)
	messages = append(messages, msg)

	resp, err := c.provider.Generate(ctx, &Request{
		System:   c.system,
		Messages: messages,
		Tools:    c.tools,
	})
	if err != nil {
		return nil, err
	}

	c.history = append(messages, resp.Message())
	return resp, nil
}

// Record appends messages without calling the model. It closes a turn whose
// last response still has unanswered tool calls.
func (c *Chat) Record(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, msgs...)
}

// History returns a copy of the recorded conversation.
func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Len returns the number of recorded messages.
func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}

// NewChatFromHistory creates a chat that continues an existing conversation.
func NewChatFromHistory(provider Provider, system string, tools []types.ToolSpec, history []Message) *Chat {
	c := NewChat(provider, system, tools)
	c.history = append([]Message(nil), history...)
	return c
}

// Truncate drops every message after the first n. It is used to roll back a
// turn that failed halfway through a tool round.
func (c *Chat) Truncate(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n >= 0 && n < len(c.history) {
		c.history = c.history[:n]
	}
}
