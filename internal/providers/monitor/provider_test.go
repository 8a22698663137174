package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() func() time.Time {
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func testProvider() *Provider {
	return New(slog.Default(), fixedNow())
}

func TestCreateTodosAssignsSequentialIDs(t *testing.T) {
	p := testProvider()
	ctx := context.Background()

	result, err := p.executeCreateTodos(ctx, map[string]any{
		"todos": []any{"A", "B", "C"},
	})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "Created 3 todo items")

	session := p.store.Current(p.now())
	require.Len(t, session.Todos, 3)
	for _, id := range []string{"todo_1", "todo_2", "todo_3"} {
		todo, ok := session.Todos[id]
		require.True(t, ok, "expected %s to exist", id)
		assert.Equal(t, "pending", string(todo.Status))
	}
	assert.Equal(t, "A", session.Todos["todo_1"].Content)
	assert.Equal(t, "C", session.Todos["todo_3"].Content)
}

func TestCreateTodosAcceptsObjectForm(t *testing.T) {
	p := testProvider()
	ctx := context.Background()

	result, err := p.executeCreateTodos(ctx, map[string]any{
		"todos": []any{
			map[string]any{"content": "Deploy", "status": "in_progress", "activeForm": "Deploying"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "todo_1")

	session := p.store.Current(p.now())
	assert.Equal(t, "in_progress", string(session.Todos["todo_1"].Status))
	assert.Equal(t, "Deploying", session.Todos["todo_1"].ActiveForm)
}

func TestCreateTodosSkipsInvalidItems(t *testing.T) {
	p := testProvider()
	ctx := context.Background()

	result, err := p.executeCreateTodos(ctx, map[string]any{
		"todos": []any{
			map[string]any{"status": "pending"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "No valid todo items were created. Please provide todos as strings or objects with 'content' field.", result)
}

func TestCreateTodosUnknownStatusDegradesToPending(t *testing.T) {
	p := testProvider()
	ctx := context.Background()

	_, err := p.executeCreateTodos(ctx, map[string]any{
		"todos": []any{
			map[string]any{"content": "X", "status": "bogus"},
		},
	})
	require.NoError(t, err)
	session := p.store.Current(p.now())
	assert.Equal(t, "pending", string(session.Todos["todo_1"].Status))
}

func TestUpdateTodoStatusUnknownID(t *testing.T) {
	p := testProvider()
	ctx := context.Background()

	result, err := p.executeUpdateTodoStatus(ctx, map[string]any{
		"todo_id": "todo_99",
		"status":  "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Todo item 'todo_99' not found", result)
}

func TestUpdateTodoStatusTracksCompletion(t *testing.T) {
	p := testProvider()
	ctx := context.Background()
	_, err := p.executeCreateTodos(ctx, map[string]any{"todos": []any{"A"}})
	require.NoError(t, err)

	_, err = p.executeUpdateTodoStatus(ctx, map[string]any{
		"todo_id": "todo_1",
		"status":  "completed",
		"notes":   "done",
	})
	require.NoError(t, err)

	session := p.store.Current(p.now())
	assert.Equal(t, 1, session.CompletedTasks)
	assert.Equal(t, "completed", string(session.Todos["todo_1"].Status))
}

func TestGetCurrentTodosAllCompleted(t *testing.T) {
	p := testProvider()
	ctx := context.Background()
	_, err := p.executeCreateTodos(ctx, map[string]any{"todos": []any{"A"}})
	require.NoError(t, err)
	_, err = p.executeUpdateTodoStatus(ctx, map[string]any{"todo_id": "todo_1", "status": "completed"})
	require.NoError(t, err)

	result, err := p.executeGetCurrentTodos(ctx, map[string]any{"include_completed": false})
	require.NoError(t, err)
	assert.Equal(t, "All tasks completed! 🎉", result)
}

func TestClearTodosResetsCounters(t *testing.T) {
	p := testProvider()
	ctx := context.Background()
	_, err := p.executeCreateTodos(ctx, map[string]any{"todos": []any{"A", "B"}})
	require.NoError(t, err)
	_, err = p.executeUpdateTodoStatus(ctx, map[string]any{"todo_id": "todo_1", "status": "completed"})
	require.NoError(t, err)

	result, err := p.executeClearTodos(ctx, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Cleared 2 todo items", result)

	session := p.store.Current(p.now())
	assert.Equal(t, 0, session.TotalTasks)
	assert.Equal(t, 0, session.CompletedTasks)
	assert.Empty(t, session.Todos)
}

func TestGetCurrentTodosOrdersNumericallyNotLexicographically(t *testing.T) {
	p := testProvider()
	ctx := context.Background()

	todos := make([]any, 11)
	for i := range todos {
		todos[i] = fmt.Sprintf("task %d", i+1)
	}
	_, err := p.executeCreateTodos(ctx, map[string]any{"todos": todos})
	require.NoError(t, err)

	result, err := p.executeGetCurrentTodos(ctx, map[string]any{"include_completed": true})
	require.NoError(t, err)

	tenIdx := strings.Index(result.(string), "todo_10:")
	twoIdx := strings.Index(result.(string), "todo_2:")
	require.NotEqual(t, -1, tenIdx)
	require.NotEqual(t, -1, twoIdx)
	assert.Greater(t, tenIdx, twoIdx, "todo_10 must be listed after todo_2, not before it")
}

func TestGetProgressSummaryNoTasks(t *testing.T) {
	p := testProvider()
	result, err := p.executeGetProgressSummary(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "No tasks tracked yet. Create todos to start tracking progress.", result)
}

func TestGetProgressSummaryWithTasks(t *testing.T) {
	p := testProvider()
	ctx := context.Background()
	_, err := p.executeCreateTodos(ctx, map[string]any{"todos": []any{"A", "B"}})
	require.NoError(t, err)
	_, err = p.executeUpdateTodoStatus(ctx, map[string]any{"todo_id": "todo_1", "status": "completed"})
	require.NoError(t, err)

	result, err := p.executeGetProgressSummary(ctx, map[string]any{})
	require.NoError(t, err)
	summary := result.(string)
	assert.Contains(t, summary, "1/2 tasks")
	assert.Contains(t, summary, "Next Active Tasks")
	assert.Contains(t, summary, "B")
}
