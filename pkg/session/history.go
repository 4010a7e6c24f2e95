package session

import (
	"fmt"

	"github.com/entrhq/cobrowse/pkg/agent"
	"github.com/entrhq/cobrowse/pkg/types"
)

var suggestedPrompts = []string{
	"Scroll down",
	"Show me projects",
	"What is this site?",
	"Go to contact",
}

// SuggestedPrompts returns the prompts offered before the first exchange.
func SuggestedPrompts() []string {
	return append([]string(nil), suggestedPrompts...)
}

// Greeting returns the opening assistant turn for a mode. owner names the
// portfolio owner in the server greeting; empty keeps it generic.
func Greeting(mode agent.Mode, owner string) string {
	if mode == agent.ModeServer {
		subject := "this portfolio"
		if owner != "" {
			subject = owner + "'s portfolio"
		}
		return fmt.Sprintf("Initializing AI Interface...\nSystem Ready.\nHow can I assist you with %s today?", subject)
	}
	return "Initializing Co-Browse Engine...\nSystem Ready.\nI can scroll, highlight, click, and read this page for you. Try a command!"
}

// ModelHistory returns the conversation as the model should see it: starting
// at the first user turn and within the token budget.
func (s *Session) ModelHistory() []types.ConversationTurn {
	return s.budgeted(types.TrimToFirstUser(s.Turns()))
}

// WireHistory returns ModelHistory in the chat endpoint's wire format.
func (s *Session) WireHistory() []types.WireMessage {
	return types.ToWire(s.ModelHistory())
}

// budgeted drops the oldest turns until the rest fits the token budget. The
// result still starts with a user turn.
func (s *Session) budgeted(turns []types.ConversationTurn) []types.ConversationTurn {
	if s.budget <= 0 || len(turns) == 0 {
		return turns
	}

	total := s.tokenizer.CountTurnTokens(turns)
	start := 0
	for total > s.budget && start < len(turns) {
		total -= s.tokenizer.CountTurn(turns[start])
		start++
	}
	if start > 0 {
		sessionLog.Debugf("Dropped %d turns to fit history budget of %d tokens", start, s.budget)
	}
	return types.TrimToFirstUser(turns[start:])
}
