// Package tokenizer counts tokens for history budgeting.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/entrhq/cobrowse/pkg/types"
)

// DefaultEncoding is used for every model; counts are an estimate for
// non-OpenAI models.
const DefaultEncoding = "cl100k_base"

// MessageOverhead approximates the role and framing tokens of one message.
const MessageOverhead = 4

// Tokenizer counts tokens with tiktoken. A nil *Tokenizer is usable and
// falls back to a four-characters-per-token estimate.
type Tokenizer struct {
	mu       sync.Mutex
	encoding *tiktoken.Tiktoken
}

// New loads the default encoding. Loading may need network access on first
// use, so callers should treat an error as "use the estimate".
func New() (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", DefaultEncoding, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	if t == nil || t.encoding == nil {
		return Approximate(text)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.encoding.Encode(text, nil, nil))
}

// CountTurnTokens returns the tokens of turns including per-message overhead.
func (t *Tokenizer) CountTurnTokens(turns []types.ConversationTurn) int {
	total := 0
	for _, turn := range turns {
		total += t.CountTurn(turn)
	}
	return total
}

// CountTurn returns the tokens of a single turn including overhead.
func (t *Tokenizer) CountTurn(turn types.ConversationTurn) int {
	return t.CountTokens(turn.Text) + t.CountTokens(string(turn.Role)) + MessageOverhead
}

// Approximate estimates tokens as one per four bytes, rounding up.
func Approximate(text string) int {
	return (len(text) + 3) / 4
}
