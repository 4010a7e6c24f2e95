package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/cobrowse/pkg/types"
)

func TestApproximate(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"Show me projects", 4},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, Approximate(tt.text))
		})
	}
}

func TestNilTokenizerFallsBack(t *testing.T) {
	var tok *Tokenizer

	assert.Equal(t, Approximate("hello world"), tok.CountTokens("hello world"))

	turns := []types.ConversationTurn{
		{Role: types.RoleUser, Text: "abcd"},
		{Role: types.RoleAssistant, Text: "abcdefgh"},
	}
	// user: 1 + 1 + 4, assistant: 2 + 3 + 4
	assert.Equal(t, 15, tok.CountTurnTokens(turns))
}
