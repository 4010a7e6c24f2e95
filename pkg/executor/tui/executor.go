// Package tui provides a terminal user interface for a co-browsing chat
// session, built on Bubble Tea.
//
// The TUI codebase is split into multiple files:
// - executor.go: executor implementation and program lifecycle
// - model.go: core model structure and state
// - update.go: Bubble Tea Update function and message handling
// - view.go: Bubble Tea View function and rendering
// - helpers.go: formatting helpers
// - styles.go: color scheme and styling
package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/cobrowse/pkg/types"
)

// DefaultHeader is the title shown when none is given.
const DefaultHeader = "Co-Browse Assistant"

// Executor runs the interactive chat interface.
type Executor struct {
	conv   Conversation
	header string

	mu      sync.Mutex
	program *tea.Program
}

// NewExecutor creates a TUI executor for conv.
func NewExecutor(conv Conversation, header string) *Executor {
	if header == "" {
		header = DefaultHeader
	}
	return &Executor{conv: conv, header: header}
}

// HandleEvent forwards loop and session events to the running program.
// Pass it to agent.WithEventSink and session.WithEventSink.
func (e *Executor) HandleEvent(event *types.AgentEvent) {
	e.mu.Lock()
	p := e.program
	e.mu.Unlock()
	if p != nil {
		p.Send(event)
	}
}

// Run starts the TUI and blocks until the user exits.
func (e *Executor) Run(ctx context.Context) error {
	m := newModel(ctx, e.conv, e.header)

	program := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	e.mu.Lock()
	e.program = program
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.program = nil
		e.mu.Unlock()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
