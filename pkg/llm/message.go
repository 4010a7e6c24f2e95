package llm

import (
	"strings"

	"github.com/entrhq/cobrowse/pkg/types"
)

// Message is one entry of the conversation sent to a provider.
//
// A user message carries either Text or ToolResults (function responses fed
// back after a tool round). An assistant message carries Text, ToolCalls or
// both.
type Message struct {
	Role        types.Role
	Text        string
	ToolCalls   []types.ToolCallIntent
	ToolResults []types.ToolExecutionResult
}

// UserMessage creates a user text message.
func UserMessage(text string) Message {
	return Message{Role: types.RoleUser, Text: text}
}

// AssistantMessage creates an assistant text message.
func AssistantMessage(text string) Message {
	return Message{Role: types.RoleAssistant, Text: text}
}

// ToolResultsMessage creates the user-side message carrying function responses.
func ToolResultsMessage(results []types.ToolExecutionResult) Message {
	return Message{Role: types.RoleUser, ToolResults: append([]types.ToolExecutionResult(nil), results...)}
}

// MessagesFromTurns converts visible conversation turns into provider messages.
func MessagesFromTurns(turns []types.ConversationTurn) []Message {
	messages := make([]Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, Message{Role: turn.Role, Text: turn.Text})
	}
	return messages
}

// Request is a single model call.
type Request struct {
	// System is the system instruction.
	System string

	// Messages is the conversation, oldest first. It must start with a user message.
	Messages []Message

	// Tools is the catalog offered to the model.
	Tools []types.ToolSpec
}

// Part is one element of a model response: either text or a tool call.
type Part struct {
	Text     string
	ToolCall *types.ToolCallIntent
}

// TextPart creates a text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ToolCallPart creates a tool call part.
func ToolCallPart(id, name string, args map[string]interface{}) Part {
	if args == nil {
		args = map[string]interface{}{}
	}
	return Part{ToolCall: &types.ToolCallIntent{ID: id, Name: name, Args: args}}
}

// Response holds the parts of a model response in the order the model
// produced them.
type Response struct {
	Parts []Part
}

// Text concatenates the text parts in order, with no separator.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Parts {
		if p.ToolCall == nil {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool call intents in order.
func (r *Response) ToolCalls() []types.ToolCallIntent {
	if r == nil {
		return nil
	}
	var calls []types.ToolCallIntent
	for _, p := range r.Parts {
		if p.ToolCall != nil {
			calls = append(calls, *p.ToolCall)
		}
	}
	return calls
}

// Message converts the response into the assistant message that records it
// in a conversation.
func (r *Response) Message() Message {
	return Message{
		Role:      types.RoleAssistant,
		Text:      r.Text(),
		ToolCalls: r.ToolCalls(),
	}
}
