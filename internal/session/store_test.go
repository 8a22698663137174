package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionAndTouch(t *testing.T) {
	s := New()
	now := time.Now()
	sess := s.StartSession("sess_1", now)
	require.Equal(t, "sess_1", sess.ID)

	later := now.Add(time.Minute)
	s.Touch(later)

	snap := s.Snapshot()
	assert.Equal(t, "sess_1", snap.CurrentSessionID)
	assert.Equal(t, later, snap.Sessions["sess_1"].LastActivityAt)
}

func TestTouchCreatesDefaultSessionWhenNoneStarted(t *testing.T) {
	s := New()
	s.Touch(time.Now())
	snap := s.Snapshot()
	assert.NotEmpty(t, snap.CurrentSessionID)
	assert.Len(t, snap.Sessions, 1)
}

func TestRecordQueryUpdatesGlobalCounters(t *testing.T) {
	s := New()
	s.RecordQuery(true)
	s.RecordQuery(false)

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap.Global.QueriesTotal)
	assert.Equal(t, int64(1), snap.Global.QueriesSucceeded)
	assert.Equal(t, int64(1), snap.Global.QueriesFailed)
}

func TestRecordToolCallUpdatesGlobalAndPerProvider(t *testing.T) {
	s := New()
	s.RecordToolCall("calc", true, 10*time.Millisecond, 0)
	s.RecordToolCall("calc", false, 20*time.Millisecond, 2)
	s.RecordToolCall("remote", true, 30*time.Millisecond, 0)

	snap := s.Snapshot()
	assert.Equal(t, int64(3), snap.Global.ToolCallsTotal)
	assert.Equal(t, int64(2), snap.Global.ToolCallsSucceeded)
	assert.Equal(t, int64(1), snap.Global.ToolCallsFailed)
	assert.Equal(t, int64(2), snap.Global.RetryAttempts)
	assert.True(t, snap.Global.AvgResponseTime() > 0)

	calc := snap.ByProvider["calc"]
	assert.Equal(t, int64(2), calc.ToolCallsTotal)
	assert.Equal(t, int64(1), calc.ToolCallsFailed)

	remote := snap.ByProvider["remote"]
	assert.Equal(t, int64(1), remote.ToolCallsTotal)
	assert.Equal(t, int64(1), remote.ToolCallsSucceeded)
}

func TestRecordValidationErrorAndOutputValidation(t *testing.T) {
	s := New()
	s.RecordValidationError()
	s.RecordValidationError()
	s.RecordOutputValidation(true, false)
	s.RecordOutputValidation(false, true)

	snap := s.Snapshot()
	assert.Equal(t, int64(2), snap.Global.ValidationErrors)
	assert.Equal(t, int64(1), snap.Global.OutputValidationErrors)
	assert.Equal(t, int64(1), snap.Global.OutputValidationWarning)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	s := New()
	s.StartSession("sess_1", time.Now())
	snap := s.Snapshot()

	s.Touch(time.Now().Add(time.Hour))

	assert.NotEqual(t, s.Snapshot().Sessions["sess_1"].LastActivityAt, snap.Sessions["sess_1"].LastActivityAt)
}
