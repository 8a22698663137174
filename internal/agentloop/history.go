package agentloop

import (
	"github.com/relayforge/relayforge/internal/llm"
)

// DefaultHistoryTokenBudget is the approximate token budget used when a
// History is constructed with a non-positive value.
const DefaultHistoryTokenBudget = 8000

// approxTokens estimates a message's token count the same crude way the
// original conversation memory does: roughly four characters per token.
// It is an eviction heuristic, not a billing figure.
func approxTokens(m llm.Message) int {
	n := len(m.Content) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// History is an in-memory, bounded record of the conversation's
// user/assistant turns. It evicts the oldest turns first once the
// running token estimate exceeds TokenBudget, never truncating mid-turn.
type History struct {
	TokenBudget int
	turns       []llm.Message
	tokens      int
}

// NewHistory returns an empty History bounded by budget tokens. A
// non-positive budget falls back to DefaultHistoryTokenBudget.
func NewHistory(budget int) *History {
	if budget <= 0 {
		budget = DefaultHistoryTokenBudget
	}
	return &History{TokenBudget: budget}
}

// Append adds one turn to the history and evicts from the front until
// the running estimate fits within TokenBudget.
func (h *History) Append(m llm.Message) {
	h.turns = append(h.turns, m)
	h.tokens += approxTokens(m)
	for h.tokens > h.TokenBudget && len(h.turns) > 1 {
		h.tokens -= approxTokens(h.turns[0])
		h.turns = h.turns[1:]
	}
}

// Messages returns the retained turns in order, oldest first.
func (h *History) Messages() []llm.Message {
	out := make([]llm.Message, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len reports the number of retained turns.
func (h *History) Len() int {
	return len(h.turns)
}
