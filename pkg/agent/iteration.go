package agent

import (
	"context"
	"fmt"

	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/types"
)

// Run processes one user message. history holds the visible conversation
// before message; it is ignored in stateful mode, where the orchestrator
// keeps its own model conversation.
//
// Errors come from the rate limiter or the provider. Tool failures never
// fail a turn.
func (o *Orchestrator) Run(ctx context.Context, history []types.ConversationTurn, message string) (*Reply, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	chat := o.conversation(history)
	checkpoint := chat.Len()

	reply, err := o.iterate(ctx, chat, message)
	if err != nil {
		if o.stateful {
			chat.Truncate(checkpoint)
		}
		o.emitEvent(types.NewErrorEvent(err))
		o.emitEvent(types.NewStateChangeEvent(types.StateAwaitingUserInput))
		return nil, err
	}

	o.emitEvent(types.NewStateChangeEvent(types.StateDone))
	o.emitEvent(types.NewTurnEndEvent(reply.Text))
	o.emitEvent(types.NewStateChangeEvent(types.StateAwaitingUserInput))
	return reply, nil
}

// conversation returns the chat this turn is sent on.
func (o *Orchestrator) conversation(history []types.ConversationTurn) *llm.Chat {
	specs := o.specs()
	if o.stateful {
		if o.chat == nil {
			o.chat = llm.NewChat(o.provider, o.system, specs)
		}
		return o.chat
	}
	prior := llm.MessagesFromTurns(types.TrimToFirstUser(history))
	return llm.NewChatFromHistory(o.provider, o.system, specs, prior)
}

func (o *Orchestrator) specs() []types.ToolSpec {
	if o.executor == nil {
		return nil
	}
	return o.executor.Specs()
}

// iterate runs the state machine for one message.
func (o *Orchestrator) iterate(ctx context.Context, chat *llm.Chat, message string) (*Reply, error) {
	reply := &Reply{}

	resp, err := o.send(ctx, chat, llm.UserMessage(message), reply)
	if err != nil {
		return nil, err
	}

	if o.mode == ModeServer {
		// Intents are returned to the caller, which executes them once the
		// reply has been shown.
		reply.ModelText = resp.Text()
		reply.Text = finalText(reply.ModelText, len(reply.Intents) > 0, o.mode)
		o.closePending(chat, resp, deferredResult, reply.Text)
		return reply, nil
	}

	for followUps := 0; ; followUps++ {
		calls := resp.ToolCalls()
		if len(calls) == 0 {
			break
		}
		if followUps >= o.maxFollowUps {
			agentLog.Warnf("Stopping after %d follow-ups with %d tool calls still pending", followUps, len(calls))
			break
		}

		results := o.executeAll(ctx, calls)
		reply.Results = append(reply.Results, results...)

		resp, err = o.send(ctx, chat, llm.ToolResultsMessage(results), reply)
		if err != nil {
			return nil, err
		}
	}

	reply.ModelText = resp.Text()
	reply.Text = finalText(reply.ModelText, len(reply.Results) > 0, o.mode)
	o.closePending(chat, resp, skippedResult, reply.Text)
	return reply, nil
}

const (
	deferredResult = "Deferred: the action runs after this reply is shown."
	skippedResult  = "Skipped: the follow-up limit was reached."
)

// closePending answers the tool calls of the last response in a stateful
// chat, so the next user message follows a complete exchange.
func (o *Orchestrator) closePending(chat *llm.Chat, resp *llm.Response, note, text string) {
	calls := resp.ToolCalls()
	if !o.stateful || len(calls) == 0 {
		return
	}
	results := make([]types.ToolExecutionResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, types.ToolExecutionResult{CallID: call.ID, Name: call.Name, Result: note})
	}
	chat.Record(llm.ToolResultsMessage(results), llm.AssistantMessage(text))
}

// send waits for the rate limiter and makes one model call.
func (o *Orchestrator) send(ctx context.Context, chat *llm.Chat, msg llm.Message, reply *Reply) (*llm.Response, error) {
	if wait := o.gate.Remaining(); wait > 0 {
		o.emitEvent(types.NewRateLimitWaitEvent(wait))
	}
	if err := o.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	reply.Rounds++
	o.emitEvent(types.NewStateChangeEvent(types.StateCallingModel))
	o.emitEvent(types.NewAPICallStartEvent(reply.Rounds, chat.Len()+1))

	agentLog.Debugf("Model call %d via %s (%s)", reply.Rounds, o.provider.Name(), o.provider.Model())
	resp, err := chat.Send(ctx, msg)
	if err != nil {
		agentLog.Errorf("Model call %d failed: %v", reply.Rounds, err)
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	calls := resp.ToolCalls()
	o.emitEvent(types.NewAPICallEndEvent(reply.Rounds, len(calls)))
	reply.Intents = append(reply.Intents, calls...)
	return resp, nil
}

// finalText applies the fallbacks to the model's text.
func finalText(modelText string, acted bool, mode Mode) string {
	switch {
	case modelText != "":
		return modelText
	case acted:
		return mode.Acknowledgement()
	default:
		return NoResponse
	}
}
