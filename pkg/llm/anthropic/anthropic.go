// Package anthropic provides a provider for the Anthropic Messages API using
// native tool use.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/logging"
	"github.com/entrhq/cobrowse/pkg/types"
)

const (
	// DefaultModel is used when no model is configured
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens caps the length of a reply
	DefaultMaxTokens = 1024

	// APIKeyEnv is read when no API key is passed to NewProvider
	APIKeyEnv = "ANTHROPIC_API_KEY"
)

var anthropicLog *logging.Logger

func init() {
	anthropicLog = logging.MustNew("anthropic")
}

// Provider implements llm.Provider for Anthropic models.
type Provider struct {
	client     anthropic.Client
	model      string
	baseURL    string
	maxTokens  int64
	maxRetries int
}

// ProviderOption is a function that configures a Provider.
type ProviderOption func(*Provider)

// WithModel sets the model.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int64) ProviderOption {
	return func(p *Provider) {
		if n > 0 {
			p.maxTokens = n
		}
	}
}

// WithMaxRetries sets how often the client retries failed requests.
func WithMaxRetries(n int) ProviderOption {
	return func(p *Provider) {
		p.maxRetries = n
	}
}

// NewProvider creates an Anthropic provider. An empty apiKey falls back to
// the ANTHROPIC_API_KEY environment variable.
func NewProvider(apiKey string, opts ...ProviderOption) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (provide via parameter or %s environment variable)", APIKeyEnv)
	}

	p := &Provider{
		model:      DefaultModel,
		maxTokens:  DefaultMaxTokens,
		maxRetries: 2,
	}
	for _, opt := range opts {
		opt(p)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(p.maxRetries),
	}
	if p.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(p.baseURL))
	}
	p.client = anthropic.NewClient(clientOpts...)

	anthropicLog.Debugf("Anthropic provider created for model %s", p.model)
	return p, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "anthropic" }

// Model returns the model name being used.
func (p *Provider) Model() string { return p.model }

// Generate sends one Messages API request with the tool catalog attached.
func (p *Provider) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  convertMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = convertTools(req.Tools)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("messages request failed: %w", err)
	}
	if message == nil {
		return nil, llm.ErrEmptyResponse
	}
	anthropicLog.Debugf("Response received: stop_reason=%s blocks=%d", message.StopReason, len(message.Content))

	resp := &llm.Response{}
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			if variant.Text != "" {
				resp.Parts = append(resp.Parts, llm.TextPart(variant.Text))
			}
		case anthropic.ToolUseBlock:
			resp.Parts = append(resp.Parts, llm.ToolCallPart(variant.ID, variant.Name, decodeInput(variant.Name, variant.Input)))
		}
	}
	return resp, nil
}

// decodeInput turns a tool_use input into an argument map.
func decodeInput(name string, input interface{}) map[string]interface{} {
	args := map[string]interface{}{}
	raw, err := json.Marshal(input)
	if err != nil {
		anthropicLog.Warnf("Ignoring unreadable input for %s: %v", name, err)
		return args
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		anthropicLog.Warnf("Ignoring non-object input for %s: %v", name, err)
		return map[string]interface{}{}
	}
	return args
}

// convertMessages converts the conversation to Anthropic message params.
// Messages without any content are dropped since the API rejects them.
func convertMessages(messages []llm.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch {
		case len(msg.ToolResults) > 0:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, r := range msg.ToolResults {
				content := r.Result
				if content == "" {
					content = "[empty result]"
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(r.CallID, content, false))
			}
			result = append(result, anthropic.NewUserMessage(blocks...))

		case msg.Role == types.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Text))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: call.Args,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		default:
			if msg.Text == "" {
				continue
			}
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}

	return result
}

// convertTools converts tool specs to Anthropic tool definitions.
func convertTools(specs []types.ToolSpec) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, 0, len(specs))

	for _, spec := range specs {
		schema := spec.JSONSchema()
		result = append(result, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schema["properties"],
					Required:   spec.RequiredParams(),
				},
			},
		})
	}

	return result
}
