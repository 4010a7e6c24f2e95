package agent

import (
	"context"
	"fmt"

	"github.com/entrhq/cobrowse/pkg/types"
)

// ExecuteIntents runs intents in order. It is how server-mode callers act
// on the intents of a Reply after showing its text.
func (o *Orchestrator) ExecuteIntents(ctx context.Context, intents []types.ToolCallIntent) []types.ToolExecutionResult {
	if len(intents) == 0 {
		return nil
	}
	results := o.executeAll(ctx, intents)
	o.emitEvent(types.NewStateChangeEvent(types.StateAwaitingUserInput))
	return results
}

// executeAll runs each call strictly in order and reports it as events.
func (o *Orchestrator) executeAll(ctx context.Context, calls []types.ToolCallIntent) []types.ToolExecutionResult {
	o.emitEvent(types.NewStateChangeEvent(types.StateExecutingTools))

	results := make([]types.ToolExecutionResult, 0, len(calls))
	for _, call := range calls {
		o.emitEvent(types.NewToolCallEvent(call.Name, call.Args))
		result := o.executeTool(ctx, call)
		o.emitEvent(types.NewToolResultEvent(call.Name, result.Result))
		results = append(results, result)
	}
	return results
}

func (o *Orchestrator) executeTool(ctx context.Context, call types.ToolCallIntent) types.ToolExecutionResult {
	if o.executor == nil {
		return types.ToolExecutionResult{
			CallID: call.ID,
			Name:   call.Name,
			Result: fmt.Sprintf("Unknown tool: %s", call.Name),
		}
	}
	return o.executor.Execute(ctx, call)
}
