// Package monitor implements the monitoring provider (C2), which owns
// the AgentSession map: create_session, create_todos, update_todo_status,
// get_current_todos, clear_todos, get_progress_summary.
package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// Store owns the process-wide session map. Mutations happen only
// through its methods, which the provider calls under lock — matching
// spec.md §5's "mutated only through provider tools" requirement.
type Store struct {
	mu             sync.RWMutex
	sessions       map[string]*toolkit.AgentSession
	currentSession string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*toolkit.AgentSession)}
}

// CreateSession creates and selects a new session with the given name
// prefix, suffixed with the current unix timestamp for uniqueness.
func (s *Store) CreateSession(name string, now time.Time) *toolkit.AgentSession {
	if name == "" {
		name = "default"
	}
	id := fmt.Sprintf("%s_%d", name, now.Unix())
	session := &toolkit.AgentSession{
		ID:             id,
		CreatedAt:      now,
		LastActivityAt: now,
		Todos:          make(map[string]*toolkit.TodoItem),
	}
	s.mu.Lock()
	s.sessions[id] = session
	s.currentSession = id
	s.mu.Unlock()
	return session
}

// Current returns the current session, creating a default one if none
// exists yet.
func (s *Store) Current(now time.Time) *toolkit.AgentSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentSession == "" {
		id := fmt.Sprintf("session_%d", now.Unix())
		s.sessions[id] = &toolkit.AgentSession{
			ID:             id,
			CreatedAt:      now,
			LastActivityAt: now,
			Todos:          make(map[string]*toolkit.TodoItem),
		}
		s.currentSession = id
	}
	return s.sessions[s.currentSession]
}

var statusEmoji = map[toolkit.TodoStatus]string{
	toolkit.TodoPending:    "⏳",
	toolkit.TodoInProgress: "🔄",
	toolkit.TodoCompleted:  "✅",
	toolkit.TodoFailed:     "❌",
	toolkit.TodoCancelled:  "🚫",
}

func validStatus(s string) (toolkit.TodoStatus, bool) {
	switch toolkit.TodoStatus(s) {
	case toolkit.TodoPending, toolkit.TodoInProgress, toolkit.TodoCompleted, toolkit.TodoFailed, toolkit.TodoCancelled:
		return toolkit.TodoStatus(s), true
	}
	return "", false
}

func defaultActiveForm(content string) string {
	return "Working on " + strings.ToLower(content)
}
