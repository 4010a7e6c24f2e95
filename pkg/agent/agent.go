// Package agent runs the tool-calling orchestration loop: it turns one user
// message into zero or more page actions and a final reply.
//
// The loop alternates between asking the model and executing the tool calls
// it returns:
//
//	AwaitingUserInput -> CallingModel -> ExecutingTools -> CallingModel ... -> Done
//
// In client mode tool results are sent back to the model until it stops
// calling tools or the follow-up budget is spent. In server mode the model
// is called once and the returned intents are executed afterwards without a
// feedback round trip.
package agent

import (
	"context"

	"github.com/entrhq/cobrowse/pkg/types"
)

// Mode selects the deployment variant of the loop.
type Mode string

const (
	// ModeClient feeds tool results back to the model.
	ModeClient Mode = "client"
	// ModeServer makes a single model call and executes intents afterwards.
	ModeServer Mode = "server"
)

// DefaultMaxFollowUps bounds the tool-result round trips of one turn.
const DefaultMaxFollowUps = 3

// Replies used when the model produced no text.
const (
	ClientAcknowledgement = "Done! I've performed the requested action."
	ServerAcknowledgement = "Executing requested actions..."
	NoResponse            = "I'm not sure how to respond to that."
)

// Acknowledgement returns the fallback reply for a mode when tools ran but
// the model said nothing.
func (m Mode) Acknowledgement() string {
	if m == ModeServer {
		return ServerAcknowledgement
	}
	return ClientAcknowledgement
}

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	return m == ModeClient || m == ModeServer
}

// ToolExecutor runs tool call intents. *tools.Registry implements it.
type ToolExecutor interface {
	Specs() []types.ToolSpec
	Execute(ctx context.Context, call types.ToolCallIntent) types.ToolExecutionResult
}

// Reply is the outcome of one user turn.
type Reply struct {
	// Text is the final reply shown to the user, fallbacks applied.
	Text string

	// ModelText is the concatenated text of the final model response,
	// empty when a fallback was used.
	ModelText string

	// Intents lists every tool call the model requested, in order.
	Intents []types.ToolCallIntent

	// Results lists the outcome of every executed tool call, in order.
	Results []types.ToolExecutionResult

	// Rounds is the number of model calls made.
	Rounds int
}
