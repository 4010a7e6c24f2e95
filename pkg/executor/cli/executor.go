// Package cli provides a line-oriented terminal front end for a chat session.
//
// Example usage:
//
//	var exec *cli.Executor
//	orch := agent.New(provider, registry, agent.WithEventSink(func(ev *types.AgentEvent) {
//	    exec.HandleEvent(ev)
//	}))
//	exec = cli.NewExecutor(session.New(orch), cli.WithShowTools(true))
//	if err := exec.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/cobrowse/pkg/session"
	"github.com/entrhq/cobrowse/pkg/types"
)

// Conversation is the session surface the executor drives. *session.Session
// implements it.
type Conversation interface {
	Turns() []types.ConversationTurn
	MarkReady()
	ShowSuggestions() bool
	Submit(ctx context.Context, text string) (types.ConversationTurn, error)
}

// Executor reads messages from a reader and prints replies to a writer.
type Executor struct {
	conv   Conversation
	reader *bufio.Reader

	mu     sync.Mutex
	writer io.Writer

	// Display options
	showTools bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithShowTools prints tool calls and their results as they happen.
func WithShowTools(show bool) ExecutorOption {
	return func(e *Executor) {
		e.showTools = show
	}
}

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets a custom input reader (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// NewExecutor creates a CLI executor for conv.
func NewExecutor(conv Conversation, opts ...ExecutorOption) *Executor {
	e := &Executor{
		conv:      conv,
		reader:    bufio.NewReader(os.Stdin),
		writer:    os.Stdout,
		showTools: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run prints the greeting and processes lines until exit, EOF or ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	for _, turn := range e.conv.Turns() {
		e.printTurn(turn)
	}
	e.conv.MarkReady()
	e.println("Type your message and press Enter. Type 'exit' or 'quit' to end the conversation.")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		suggestions := e.conv.ShowSuggestions()
		if suggestions {
			e.printSuggestions()
		}

		e.print("> ")
		input, err := e.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		if input == "exit" || input == "quit" {
			return nil
		}
		if suggestions {
			input = pickSuggestion(input)
		}

		if input != "" {
			turn, submitErr := e.conv.Submit(ctx, input)
			switch {
			case errors.Is(submitErr, session.ErrBusy):
				e.println("Still working on the previous message.")
			case errors.Is(submitErr, session.ErrEmptyMessage):
			default:
				// Failures arrive as an "Error: ..." turn.
				e.printTurn(turn)
			}
		}

		if eof {
			e.println("")
			return nil
		}
	}
}

// HandleEvent renders loop events. Pass it to agent.WithEventSink.
func (e *Executor) HandleEvent(event *types.AgentEvent) {
	switch event.Type {
	case types.EventTypeToolCall:
		if e.showTools {
			e.printf("  -> %s %s\n", event.ToolName, formatArgs(event.ToolInput))
		}
	case types.EventTypeToolResult:
		if e.showTools {
			e.printf("  <- %s\n", event.Content)
		}
	case types.EventTypeRateLimitWait:
		e.printf("  (waiting %s before the next model call)\n", event.Wait.Round(time.Millisecond))
	}
}

func (e *Executor) printTurn(turn types.ConversationTurn) {
	if turn.Role == types.RoleUser {
		e.printf("You: %s\n", turn.Text)
		return
	}
	e.printf("Assistant: %s\n\n", turn.Text)
}

func (e *Executor) printSuggestions() {
	prompts := session.SuggestedPrompts()
	parts := make([]string, len(prompts))
	for i, p := range prompts {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, p)
	}
	e.printf("Try: %s\n", strings.Join(parts, "  "))
}

// pickSuggestion maps "1".."n" to the suggested prompt with that number.
func pickSuggestion(input string) string {
	n, err := strconv.Atoi(input)
	if err != nil {
		return input
	}
	prompts := session.SuggestedPrompts()
	if n < 1 || n > len(prompts) {
		return input
	}
	return prompts[n-1]
}

// formatArgs renders tool arguments as key=value pairs in key order.
func formatArgs(args map[string]interface{}) string {
	flat := make(map[string]string, len(args))
	for k, v := range args {
		flat[k] = fmt.Sprint(v)
	}
	keys := types.SortedKeys(flat)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, flat[k])
	}
	return strings.Join(parts, " ")
}

func (e *Executor) print(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprint(e.writer, s)
}

func (e *Executor) println(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.writer, s)
}

func (e *Executor) printf(format string, args ...interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.writer, format, args...)
}
