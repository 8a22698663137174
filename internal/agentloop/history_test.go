package agentloop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relayforge/relayforge/internal/llm"
)

func TestHistoryRetainsTurnsWithinBudget(t *testing.T) {
	h := NewHistory(1000)
	h.Append(llm.Message{Role: "user", Content: "hello"})
	h.Append(llm.Message{Role: "assistant", Content: "hi there"})
	assert.Equal(t, 2, h.Len())
}

func TestHistoryEvictsOldestTurnsOverBudget(t *testing.T) {
	h := NewHistory(10)
	h.Append(llm.Message{Role: "user", Content: "first message, long enough to matter"})
	h.Append(llm.Message{Role: "user", Content: "second message, also long enough"})
	h.Append(llm.Message{Role: "user", Content: "third message, also long enough"})

	messages := h.Messages()
	assert.Less(t, len(messages), 3)
	for _, m := range messages {
		assert.False(t, strings.Contains(m.Content, "first message"))
	}
}

func TestHistoryNeverEvictsLastTurn(t *testing.T) {
	h := NewHistory(1)
	h.Append(llm.Message{Role: "user", Content: "a message far larger than the budget allows"})
	assert.Equal(t, 1, h.Len())
}

func TestHistoryDefaultBudgetAppliedWhenNonPositive(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistoryTokenBudget, h.TokenBudget)
}
