// Package llm defines the model boundary of the assistant: a provider takes
// a system instruction, a conversation and a tool catalog, and returns an
// ordered list of text and tool-call parts.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := provider.Generate(ctx, &llm.Request{
//	    System:   instruction,
//	    Messages: []llm.Message{llm.UserMessage("Show me projects")},
//	    Tools:    registry.Specs(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, call := range resp.ToolCalls() {
//	    fmt.Println(call.Name, call.Args)
//	}
package llm

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned by providers when the model produced no
// candidate at all. A candidate with zero parts is not an error.
var ErrEmptyResponse = errors.New("model returned no candidates")

// Provider defines the interface for model integrations.
//
// Providers only translate between the request/response types of this
// package and a vendor API. They never execute tools or keep conversation
// state; that is the job of Chat and the agent loop.
type Provider interface {
	// Generate sends one request and returns the model's parts in order.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider identifier (e.g., "openai").
	Name() string

	// Model returns the model name being used.
	Model() string
}
