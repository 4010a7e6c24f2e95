package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleFromWire(t *testing.T) {
	tests := []struct {
		wire     string
		expected Role
		ok       bool
	}{
		{wire: "user", expected: RoleUser, ok: true},
		{wire: "model", expected: RoleAssistant, ok: true},
		{wire: "assistant", expected: RoleAssistant, ok: true},
		{wire: "system", ok: false},
		{wire: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			role, ok := RoleFromWire(tt.wire)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, role)
		})
	}
}

func TestToWire(t *testing.T) {
	turns := []ConversationTurn{
		{Role: RoleUser, Text: "Show me projects"},
		{Role: RoleAssistant, Text: "Here are my projects!"},
	}

	raw, err := json.Marshal(ToWire(turns))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"role":"user","parts":[{"text":"Show me projects"}]},
		{"role":"model","parts":[{"text":"Here are my projects!"}]}
	]`, string(raw))
}

func TestWireMessageText(t *testing.T) {
	msg := WireMessage{Role: WireRoleModel, Parts: []WirePart{{Text: "Hello "}, {Text: "world"}}}
	assert.Equal(t, "Hello world", msg.Text())
	assert.Equal(t, "", WireMessage{}.Text())
}
