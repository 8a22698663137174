package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// todoInput mirrors the object form accepted by create_todos:
// {"content": ..., "status": ..., "activeForm": ...}.
type todoInput struct {
	Content    string `json:"content"`
	Status     string `json:"status"`
	ActiveForm string `json:"activeForm"`
}

// CreateTodos replaces the session's todo map from raw, which may be a
// JSON array of strings or of todoInput-shaped objects (per spec.md §3's
// TodoItem import format). Unknown status strings degrade to pending
// with a logged warning; object items with no content are skipped, while
// a string item is kept as given, even when empty.
func CreateTodos(log *slog.Logger, session *toolkit.AgentSession, raw json.RawMessage, now time.Time) (string, error) {
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return "", fmt.Errorf("todos must be a JSON array: %w", err)
	}

	session.Todos = make(map[string]*toolkit.TodoItem)
	session.TotalTasks = 0
	session.CompletedTasks = 0
	session.FailedTasks = 0
	session.ResetTodoSequence()

	var created []string
	for i, item := range rawItems {
		var content, statusStr, activeForm string
		var asString string
		if err := json.Unmarshal(item, &asString); err == nil {
			content = asString
			statusStr = string(toolkit.TodoPending)
		} else {
			var obj todoInput
			if err := json.Unmarshal(item, &obj); err != nil {
				log.Warn("skipping todo item: unsupported format", "index", i+1)
				continue
			}
			if obj.Content == "" {
				log.Warn("skipping todo item: missing content", "index", i+1)
				continue
			}
			content = obj.Content
			statusStr = obj.Status
			if statusStr == "" {
				statusStr = string(toolkit.TodoPending)
			}
			activeForm = obj.ActiveForm
		}

		status, ok := validStatus(statusStr)
		if !ok {
			log.Warn("invalid status, defaulting to pending", "status", statusStr, "index", i+1)
			status = toolkit.TodoPending
		}
		if activeForm == "" {
			activeForm = defaultActiveForm(content)
		}

		id := session.NextTodoID()
		todo := &toolkit.TodoItem{
			ID:         id,
			Content:    content,
			ActiveForm: activeForm,
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		session.Todos[id] = todo
		session.TotalTasks++
		created = append(created, fmt.Sprintf("%s: %s [%s]", id, content, status))
	}

	if len(created) == 0 {
		return "No valid todo items were created. Please provide todos as strings or objects with 'content' field.", nil
	}

	session.LastActivityAt = now
	return fmt.Sprintf("Created %d todo items:\n%s", len(created), strings.Join(created, "\n")), nil
}

// UpdateTodoStatus sets the status/notes of todoID, returning a clear
// message when the id is unknown rather than an error.
func UpdateTodoStatus(session *toolkit.AgentSession, todoID, status, notes string, now time.Time) string {
	todo, ok := session.Todos[todoID]
	if !ok {
		return fmt.Sprintf("Todo item '%s' not found", todoID)
	}

	newStatus, ok := validStatus(status)
	if !ok {
		newStatus = toolkit.TodoPending
	}
	oldStatus := todo.Status
	todo.Status = newStatus
	todo.Notes = notes
	todo.UpdatedAt = now
	session.LastActivityAt = now

	if oldStatus != newStatus {
		switch newStatus {
		case toolkit.TodoCompleted:
			session.CompletedTasks++
		case toolkit.TodoFailed:
			session.FailedTasks++
		}
	}

	result := fmt.Sprintf("Updated %s: %s -> %s", todoID, todo.Content, status)
	if notes != "" {
		result += fmt.Sprintf(" (Notes: %s)", notes)
	}
	return result
}

// ActiveTodos returns todos not in a terminal state.
func ActiveTodos(session *toolkit.AgentSession) []*toolkit.TodoItem {
	var out []*toolkit.TodoItem
	for _, t := range session.Todos {
		if t.Status != toolkit.TodoCompleted && t.Status != toolkit.TodoFailed && t.Status != toolkit.TodoCancelled {
			out = append(out, t)
		}
	}
	return out
}

// FormatCurrentTodos renders the todo list, optionally including
// completed items.
func FormatCurrentTodos(session *toolkit.AgentSession, includeCompleted bool) string {
	if len(session.Todos) == 0 {
		return "No todo items in current session. Use create_todos to start tracking tasks."
	}

	var lines []string
	for _, t := range orderedTodos(session) {
		if !includeCompleted && t.Status == toolkit.TodoCompleted {
			continue
		}
		emoji := statusEmoji[t.Status]
		if emoji == "" {
			emoji = "❓"
		}
		line := fmt.Sprintf("%s %s: %s", emoji, t.ID, t.Content)
		if t.Notes != "" {
			line += fmt.Sprintf(" (Notes: %s)", t.Notes)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "All tasks completed! 🎉"
	}
	return "Current Todo List:\n" + strings.Join(lines, "\n")
}

// ClearTodos removes every todo item from session and returns the count
// cleared.
func ClearTodos(session *toolkit.AgentSession) int {
	n := len(session.Todos)
	session.Todos = make(map[string]*toolkit.TodoItem)
	session.TotalTasks = 0
	session.CompletedTasks = 0
	session.FailedTasks = 0
	session.ResetTodoSequence()
	return n
}

// ProgressSummary renders the progress report text.
func ProgressSummary(session *toolkit.AgentSession, now time.Time) string {
	if session.TotalTasks == 0 {
		return "No tasks tracked yet. Create todos to start tracking progress."
	}

	active := ActiveTodos(session)
	pct := float64(session.CompletedTasks) / float64(session.TotalTasks) * 100

	result := fmt.Sprintf(
		"Progress Summary:\n📊 Overall Progress: %d/%d tasks (%.1f%%)\n🔄 Active Tasks: %d\n⏱️  Session Duration: %s\n📈 Success Rate: %.1f%%",
		session.CompletedTasks, session.TotalTasks, pct, len(active), formatDuration(now.Sub(session.CreatedAt)), pct,
	)

	if len(active) > 0 {
		result += "\n\n🎯 Next Active Tasks:"
		limit := 3
		for i, t := range orderedTodoSlice(active) {
			if i >= limit {
				break
			}
			result += fmt.Sprintf("\n  • %s", t.Content)
		}
	}
	return result
}

func formatDuration(d time.Duration) string {
	totalSeconds := int64(d.Seconds())
	days := totalSeconds / 86400
	hours := (totalSeconds % 86400) / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case totalSeconds > 3600:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}

// orderedTodos returns the session's todos sorted by id for
// deterministic output ("todo_1", "todo_2", ... in numeric order).
func orderedTodos(session *toolkit.AgentSession) []*toolkit.TodoItem {
	out := make([]*toolkit.TodoItem, 0, len(session.Todos))
	for _, t := range session.Todos {
		out = append(out, t)
	}
	return orderedTodoSlice(out)
}

func orderedTodoSlice(in []*toolkit.TodoItem) []*toolkit.TodoItem {
	out := make([]*toolkit.TodoItem, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && todoLess(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// todoLess orders by the numeric suffix of the "todo_N" id, not the raw
// string: lexicographic comparison would put "todo_10" before "todo_2"
// once a session accumulates 10+ todos.
func todoLess(a, b *toolkit.TodoItem) bool { return todoSeq(a.ID) < todoSeq(b.ID) }

func todoSeq(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "todo_"))
	if err != nil {
		return 0
	}
	return n
}
