package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/cobrowse/pkg/llm"
	"github.com/entrhq/cobrowse/pkg/types"
)

const toolUseMessage = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-3-5-haiku-latest",
  "content": [
    {"type": "text", "text": "Here are my projects!"},
    {"type": "tool_use", "id": "toolu_1", "name": "scroll_to_section", "input": {"sectionId": "desktop"}}
  ],
  "stop_reason": "tool_use",
  "stop_sequence": null,
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestNewProviderRequiresKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := NewProvider("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), APIKeyEnv)
}

func TestGenerate(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(toolUseMessage))
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/"), WithMaxRetries(0), WithMaxTokens(256))
	require.NoError(t, err)
	assert.Equal(t, "anthropic", p.Name())

	resp, err := p.Generate(context.Background(), &llm.Request{
		System: "be helpful",
		Messages: []llm.Message{
			llm.AssistantMessage(""),
			llm.UserMessage("Show me projects"),
		},
		Tools: []types.ToolSpec{{
			Name:        "scroll_to_section",
			Description: "Scroll to a section.",
			Parameters:  []types.ParamSpec{{Name: "sectionId", Type: types.ParamString, Required: true}},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Here are my projects!", resp.Text())
	require.Len(t, resp.ToolCalls(), 1)
	assert.Equal(t, types.ToolCallIntent{
		ID:   "toolu_1",
		Name: "scroll_to_section",
		Args: map[string]interface{}{"sectionId": "desktop"},
	}, resp.ToolCalls()[0])

	assert.Equal(t, float64(256), body["max_tokens"])
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1, "empty assistant message is dropped")

	system := body["system"].([]interface{})
	assert.Equal(t, "be helpful", system[0].(map[string]interface{})["text"])

	tools := body["tools"].([]interface{})
	tool := tools[0].(map[string]interface{})
	assert.Equal(t, "scroll_to_section", tool["name"])
	schema := tool["input_schema"].(map[string]interface{})
	assert.Equal(t, []interface{}{"sectionId"}, schema["required"])
}

func TestConvertMessagesToolRound(t *testing.T) {
	call := types.ToolCallIntent{ID: "toolu_1", Name: "scroll_window", Args: map[string]interface{}{"direction": "down"}}
	params := convertMessages([]llm.Message{
		llm.UserMessage("scroll"),
		{Role: types.RoleAssistant, Text: "Sure.", ToolCalls: []types.ToolCallIntent{call}},
		llm.ToolResultsMessage([]types.ToolExecutionResult{{CallID: "toolu_1", Name: "scroll_window", Result: ""}}),
	})

	require.Len(t, params, 3)

	raw, err := json.Marshal(params)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "assistant", decoded[1]["role"])
	assistant := decoded[1]["content"].([]interface{})
	require.Len(t, assistant, 2)
	assert.Equal(t, "tool_use", assistant[1].(map[string]interface{})["type"])

	assert.Equal(t, "user", decoded[2]["role"])
	result := decoded[2]["content"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "tool_result", result["type"])
	assert.Equal(t, "toolu_1", result["tool_use_id"])
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider("test-key", WithBaseURL(srv.URL+"/"), WithMaxRetries(0))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), &llm.Request{Messages: []llm.Message{llm.UserMessage("hi")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "messages request failed")
}
