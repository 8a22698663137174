package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// Provider exposes the session/todo tools backed by a Store.
type Provider struct {
	log   *slog.Logger
	store *Store
	now   func() time.Time
}

// New constructs the monitoring provider. now defaults to time.Now when nil,
// overridable in tests for deterministic session ids/durations.
func New(log *slog.Logger, now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{log: log, store: NewStore(), now: now}
}

func (p *Provider) Name() string { return "monitor" }

func (p *Provider) Initialize(ctx context.Context) error { return nil }

func (p *Provider) Shutdown(ctx context.Context) error { return nil }

func (p *Provider) Tools() []providers.ToolBinding {
	return []providers.ToolBinding{
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "monitor_create_session",
				Description: "Create and switch to a new monitoring session",
				Provider:    "monitor",
				Category:    "session",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "name", Type: toolkit.ParamString, Description: "Session name prefix"},
				},
				Timeout: 5 * time.Second,
			},
			Executor: p.executeCreateSession,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "monitor_create_todos",
				Description: "Replace the current session's todo list from a list of strings or {content, status, activeForm} objects",
				Provider:    "monitor",
				Category:    "tasks",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "todos", Type: toolkit.ParamArray, Required: true, Description: "Array of todo strings or objects"},
				},
				Timeout: 5 * time.Second,
			},
			Executor: p.executeCreateTodos,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "monitor_update_todo_status",
				Description: "Update the status and notes of a todo item by id",
				Provider:    "monitor",
				Category:    "tasks",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "todo_id", Type: toolkit.ParamString, Required: true},
					{Name: "status", Type: toolkit.ParamString, Required: true, Description: "pending|in_progress|completed|failed|cancelled"},
					{Name: "notes", Type: toolkit.ParamString},
				},
				Timeout: 5 * time.Second,
			},
			Executor: p.executeUpdateTodoStatus,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "monitor_get_current_todos",
				Description: "List the current session's todo items",
				Provider:    "monitor",
				Category:    "tasks",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "include_completed", Type: toolkit.ParamBoolean, Default: false},
				},
				Timeout: 5 * time.Second,
			},
			Executor: p.executeGetCurrentTodos,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "monitor_clear_todos",
				Description: "Clear all todos and progress counters from the current session",
				Provider:    "monitor",
				Category:    "tasks",
				Version:     "1.0.0",
				Timeout:     5 * time.Second,
			},
			Executor: p.executeClearTodos,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "monitor_get_progress_summary",
				Description: "Summarize progress on the current session's todos",
				Provider:    "monitor",
				Category:    "tasks",
				Version:     "1.0.0",
				Timeout:     5 * time.Second,
			},
			Executor: p.executeGetProgressSummary,
		},
	}
}

func (p *Provider) executeCreateSession(ctx context.Context, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	session := p.store.CreateSession(name, p.now())
	return fmt.Sprintf("Created session '%s'", session.ID), nil
}

func (p *Provider) executeCreateTodos(ctx context.Context, args map[string]any) (any, error) {
	raw, err := json.Marshal(args["todos"])
	if err != nil {
		return nil, fmt.Errorf("encoding todos argument: %w", err)
	}
	session := p.store.Current(p.now())
	return CreateTodos(p.log, session, raw, p.now())
}

func (p *Provider) executeUpdateTodoStatus(ctx context.Context, args map[string]any) (any, error) {
	todoID, _ := args["todo_id"].(string)
	status, _ := args["status"].(string)
	notes, _ := args["notes"].(string)
	session := p.store.Current(p.now())
	return UpdateTodoStatus(session, todoID, status, notes, p.now()), nil
}

func (p *Provider) executeGetCurrentTodos(ctx context.Context, args map[string]any) (any, error) {
	includeCompleted, _ := args["include_completed"].(bool)
	session := p.store.Current(p.now())
	return FormatCurrentTodos(session, includeCompleted), nil
}

func (p *Provider) executeClearTodos(ctx context.Context, args map[string]any) (any, error) {
	session := p.store.Current(p.now())
	n := ClearTodos(session)
	return fmt.Sprintf("Cleared %d todo items", n), nil
}

func (p *Provider) executeGetProgressSummary(ctx context.Context, args map[string]any) (any, error) {
	session := p.store.Current(p.now())
	return ProgressSummary(session, p.now()), nil
}
