package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/types"
)

var toolsLog *logging.Logger

func init() {
	toolsLog = logging.MustNew("tools")
}

// Registry dispatches tool call intents to a fixed set of tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry holding tools in the given order.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// Get returns the tool registered under name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Specs returns a fresh copy of the catalog in registration order.
func (r *Registry) Specs() []types.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]types.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, SpecOf(r.tools[name]))
	}
	return specs
}

// Execute runs the tool named by call. An unknown name is reported in the
// result rather than as an error so the turn can continue.
func (r *Registry) Execute(ctx context.Context, call types.ToolCallIntent) types.ToolExecutionResult {
	result := types.ToolExecutionResult{CallID: call.ID, Name: call.Name}

	t, ok := r.Get(call.Name)
	if !ok {
		toolsLog.Warnf("Model called unknown tool %q", call.Name)
		result.Result = fmt.Sprintf("Unknown tool: %s", call.Name)
		return result
	}

	toolsLog.Debugf("Executing %s with args %v", call.Name, call.Args)
	result.Result = t.Execute(ctx, call)
	toolsLog.Infof("%s: %s", call.Name, result.Result)
	return result
}
