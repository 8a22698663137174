// Package session implements the session/metrics store (C10): a
// process-wide map of agent sessions by id plus the aggregate counters
// the dispatcher and agent loop update as queries and tool calls
// complete. It is distinct from the monitoring provider's own session
// map (internal/providers/monitor): that one tracks per-session todo
// lists exposed as tools; this one tracks conversation-level session
// bookkeeping and global reliability metrics, and is never mutated by a
// registered tool.
package session

import (
	"sync"
	"time"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// Counters is one bucket of the running reliability metrics: either the
// global rollup or one provider's slice of it.
type Counters struct {
	QueriesTotal            int64
	QueriesSucceeded        int64
	QueriesFailed           int64
	ToolCallsTotal          int64
	ToolCallsSucceeded      int64
	ToolCallsFailed         int64
	ValidationErrors        int64
	RetryAttempts           int64
	OutputValidationErrors  int64
	OutputValidationWarning int64

	avgNanos float64
	avgCount int64
}

// AvgResponseTime is the running moving average of tool call duration.
func (c *Counters) AvgResponseTime() time.Duration {
	return time.Duration(c.avgNanos)
}

func (c *Counters) recordToolCall(succ bool, elapsed time.Duration) {
	c.ToolCallsTotal++
	if succ {
		c.ToolCallsSucceeded++
	} else {
		c.ToolCallsFailed++
	}
	c.avgCount++
	n := float64(c.avgCount)
	c.avgNanos += (float64(elapsed.Nanoseconds()) - c.avgNanos) / n
}

// Snapshot is a read-only copy of the store's state, safe to hold onto
// after the call returns.
type Snapshot struct {
	CurrentSessionID string
	Sessions         map[string]toolkit.AgentSession
	Global           Counters
	ByProvider       map[string]Counters
}

// Store is the process-wide session/metrics store. Every method is
// safe for concurrent use.
type Store struct {
	mu             sync.RWMutex
	sessions       map[string]*toolkit.AgentSession
	currentSession string

	global     Counters
	byProvider map[string]*Counters
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		sessions:   make(map[string]*toolkit.AgentSession),
		byProvider: make(map[string]*Counters),
	}
}

// StartSession creates and selects a new conversation session.
func (s *Store) StartSession(id string, now time.Time) *toolkit.AgentSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &toolkit.AgentSession{ID: id, CreatedAt: now, LastActivityAt: now}
	s.sessions[id] = sess
	s.currentSession = id
	return sess
}

// Touch updates the current session's last-activity timestamp,
// creating a default session first if none exists yet.
func (s *Store) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentSession == "" {
		id := "session_" + now.Format("20060102T150405.000000000")
		s.sessions[id] = &toolkit.AgentSession{ID: id, CreatedAt: now}
		s.currentSession = id
	}
	s.sessions[s.currentSession].LastActivityAt = now
}

// RecordQuery updates the global query counters for one completed
// agent-loop query.
func (s *Store) RecordQuery(succeeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.QueriesTotal++
	if succeeded {
		s.global.QueriesSucceeded++
	} else {
		s.global.QueriesFailed++
	}
}

// RecordToolCall updates both the global counters and the named
// provider's breakdown for one dispatched tool call.
func (s *Store) RecordToolCall(provider string, succeeded bool, elapsed time.Duration, retries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.recordToolCall(succeeded, elapsed)
	s.global.RetryAttempts += int64(retries)

	bucket, ok := s.byProvider[provider]
	if !ok {
		bucket = &Counters{}
		s.byProvider[provider] = bucket
	}
	bucket.recordToolCall(succeeded, elapsed)
	bucket.RetryAttempts += int64(retries)
}

// RecordValidationError increments the global validation-error counter
// (malformed or missing arguments, caught before dispatch).
func (s *Store) RecordValidationError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global.ValidationErrors++
}

// RecordOutputValidation increments the output-validation error or
// warning counter, depending on the classifier's verdict.
func (s *Store) RecordOutputValidation(isError, isWarning bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isError {
		s.global.OutputValidationErrors++
	}
	if isWarning {
		s.global.OutputValidationWarning++
	}
}

// Snapshot returns a read-only copy of the store's current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make(map[string]toolkit.AgentSession, len(s.sessions))
	for id, sess := range s.sessions {
		sessions[id] = *sess
	}
	byProvider := make(map[string]Counters, len(s.byProvider))
	for name, c := range s.byProvider {
		byProvider[name] = *c
	}

	return Snapshot{
		CurrentSessionID: s.currentSession,
		Sessions:         sessions,
		Global:           s.global,
		ByProvider:       byProvider,
	}
}

// Recorder is the narrow interface the dispatcher and agent loop use to
// report outcomes, so neither needs to import the concrete Store type.
type Recorder interface {
	RecordQuery(succeeded bool)
	RecordToolCall(provider string, succeeded bool, elapsed time.Duration, retries int)
	RecordValidationError()
	RecordOutputValidation(isError, isWarning bool)
}

var _ Recorder = (*Store)(nil)
