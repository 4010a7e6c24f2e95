// Package openai provides an OpenAI-compatible provider using native
// function calling.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o-mini"),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	resp, err := provider.Generate(ctx, &llm.Request{
//	    System:   "You are a helpful assistant.",
//	    Messages: []llm.Message{llm.UserMessage("Hello!")},
//	})
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/types"
)

const (
	// DefaultBaseURL is the default OpenAI API base URL
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured
	DefaultModel = "gpt-4o-mini"

	// APIKeyEnv is read when no API key is passed to NewProvider
	APIKeyEnv = "OPENAI_API_KEY"
)

var openaiLog *logging.Logger

func init() {
	openaiLog = logging.MustNew("openai")
}

// Provider implements llm.Provider for OpenAI-compatible APIs.
type Provider struct {
	client     openai.Client
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model to use for completions.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL sets a custom base URL for OpenAI-compatible APIs.
// This enables using Azure OpenAI, local models, or other compatible services.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = baseURL
		}
	}
}

// WithMaxRetries sets how often the client retries failed requests.
func WithMaxRetries(n int) ProviderOption {
	return func(p *Provider) {
		p.maxRetries = n
	}
}

// NewProvider creates a new OpenAI provider with the given API key.
//
// If apiKey is empty, it will attempt to read from the OPENAI_API_KEY environment variable.
// If baseURL is not provided via WithBaseURL option, it will check OPENAI_BASE_URL environment variable.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (provide via parameter or %s environment variable)", APIKeyEnv)
	}

	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.baseURL == DefaultBaseURL {
		if envBaseURL := os.Getenv("OPENAI_BASE_URL"); envBaseURL != "" {
			p.baseURL = envBaseURL
		}
	}

	p.client = openai.NewClient(
		option.WithAPIKey(p.apiKey),
		option.WithBaseURL(p.baseURL),
		option.WithMaxRetries(p.maxRetries),
	)
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "openai" }

// Model returns the model name being used.
func (p *Provider) Model() string { return p.model }

// BaseURL returns the base URL being used.
func (p *Provider) BaseURL() string { return p.baseURL }

// Generate sends one chat completion request with the tool catalog attached.
func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: convertMessages(req.System, req.Messages),
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	openaiLog.Debugf("Sending %d messages and %d tools to %s", len(params.Messages), len(params.Tools), p.model)
	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, llm.ErrEmptyResponse
	}

	msg := completion.Choices[0].Message
	resp := &llm.Response{}
	if msg.Content != "" {
		resp.Parts = append(resp.Parts, llm.TextPart(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		resp.Parts = append(resp.Parts, llm.ToolCallPart(tc.ID, tc.Function.Name, decodeArguments(tc.Function.Name, tc.Function.Arguments)))
	}
	return resp, nil
}

// decodeArguments parses a function call's JSON arguments. Malformed
// arguments become an empty map so the tool can report what is missing.
func decodeArguments(name, raw string) map[string]interface{} {
	args := map[string]interface{}{}
	if raw == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		openaiLog.Warnf("Ignoring malformed arguments for %s: %v", name, err)
		return map[string]interface{}{}
	}
	return args
}

// convertMessages converts the conversation to OpenAI's message union format.
func convertMessages(system string, messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, msg := range messages {
		switch {
		case len(msg.ToolResults) > 0:
			for _, r := range msg.ToolResults {
				out = append(out, openai.ToolMessage(r.Result, r.CallID))
			}
		case msg.Role == types.RoleAssistant && len(msg.ToolCalls) > 0:
			out = append(out, assistantWithCalls(msg))
		case msg.Role == types.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Text))
		default:
			out = append(out, openai.UserMessage(msg.Text))
		}
	}
	return out
}

func assistantWithCalls(msg llm.Message) openai.ChatCompletionMessageParamUnion {
	calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		args, err := json.Marshal(call.Args)
		if err != nil {
			args = []byte("{}")
		}
		calls = append(calls, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: string(args),
			},
		})
	}

	assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
	if msg.Text != "" {
		assistant.Content.OfString = openai.String(msg.Text)
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

// convertTools converts tool specs to function definitions.
func convertTools(specs []types.ToolSpec) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  shared.FunctionParameters(spec.JSONSchema()),
			},
		})
	}
	return tools
}
