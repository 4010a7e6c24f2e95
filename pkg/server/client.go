package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/types"
)

// Client is an llm.Provider that answers through a remote chat endpoint.
// It is the page-side half of the server-mediated variant: the endpoint owns
// the model, the system instruction and the tool catalog.
type Client struct {
	url        string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client posting to url, typically
// http://host/api/chat.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider identifier.
func (c *Client) Name() string { return "remote" }

// Model returns the endpoint URL; the remote side picks the model.
func (c *Client) Model() string { return c.url }

// Generate sends the last user message with the text of the messages before
// it as history. Tool results never travel: the endpoint makes one round trip.
func (c *Client) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("no message to send")
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != types.RoleUser || last.Text == "" {
		return nil, errors.New("remote endpoint only accepts a user message")
	}

	body, err := json.Marshal(types.ChatRequest{
		Message: last.Text,
		History: wireHistory(req.Messages[:len(req.Messages)-1]),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp types.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			return nil, errors.New(errResp.Error)
		}
		return nil, fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var chatResp types.ChatResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}

	out := &llm.Response{}
	if chatResp.Text != "" {
		out.Parts = append(out.Parts, llm.TextPart(chatResp.Text))
	}
	for i, call := range chatResp.FunctionCalls {
		out.Parts = append(out.Parts, llm.ToolCallPart(fmt.Sprintf("call_%d", i), call.Name, call.Args))
	}
	return out, nil
}

// wireHistory keeps the text of user and assistant messages.
func wireHistory(messages []llm.Message) []types.WireMessage {
	out := make([]types.WireMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Text == "" || len(msg.ToolResults) > 0 {
			continue
		}
		out = append(out, types.WireMessage{
			Role:  types.WireRole(msg.Role),
			Parts: []types.WirePart{{Text: msg.Text}},
		})
	}
	return out
}
