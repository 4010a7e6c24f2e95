package types

import "time"

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"      // RoleUser is a message typed by the visitor.
	RoleAssistant Role = "assistant" // RoleAssistant is a reply produced by the assistant.
)

// ConversationTurn is one message in the visible conversation.
//
// Turns are immutable once appended to a session. The only exception is the
// timestamp of the greeting turn, which is back-filled once the surface that
// renders it is ready.
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserTurn creates a user turn stamped with the current time.
func NewUserTurn(text string) ConversationTurn {
	return ConversationTurn{Role: RoleUser, Text: text, Timestamp: time.Now()}
}

// NewAssistantTurn creates an assistant turn stamped with the current time.
func NewAssistantTurn(text string) ConversationTurn {
	return ConversationTurn{Role: RoleAssistant, Text: text, Timestamp: time.Now()}
}

// TrimToFirstUser returns the suffix of turns starting at the first user turn.
// Providers reject conversations that open with a non-user role, so anything
// before the first user turn (greetings, errors) is dropped. A list without any
// user turn yields nil.
func TrimToFirstUser(turns []ConversationTurn) []ConversationTurn {
	for i, turn := range turns {
		if turn.Role == RoleUser {
			out := make([]ConversationTurn, len(turns)-i)
			copy(out, turns[i:])
			return out
		}
	}
	return nil
}
