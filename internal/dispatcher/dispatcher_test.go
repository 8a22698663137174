package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/toolkit"
)

func newTestRegistry() *registry.Registry {
	return registry.New(nil)
}

func TestDispatchRetriesThenSucceeds(t *testing.T) {
	reg := newTestRegistry()
	baseDelay := 10 * time.Millisecond
	calls := 0
	reg.Register(toolkit.ToolDescriptor{
		Name:           "flaky_tool",
		Provider:       "test",
		MaxRetries:     3,
		RetryBaseDelay: baseDelay,
		Timeout:        time.Second,
	}, func(ctx context.Context, args map[string]any) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient failure")
		}
		return "ok", nil
	})

	d := New(reg, nil, nil)
	start := time.Now()
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "flaky_tool"})
	elapsed := time.Since(start)

	require.Equal(t, toolkit.ResultSuccess, result.Kind)
	assert.Equal(t, 2, result.RetryCount)
	assert.GreaterOrEqual(t, elapsed, baseDelay*(1+2))
}

func TestDispatchUnknownToolIsValidationError(t *testing.T) {
	reg := newTestRegistry()
	d := New(reg, nil, nil)
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "does_not_exist"})
	assert.Equal(t, toolkit.ResultValidationError, result.Kind)
	assert.NotEmpty(t, result.ValidationErrors)
}

func TestDispatchMissingRequiredParamNeverInvokesExecutor(t *testing.T) {
	reg := newTestRegistry()
	invoked := false
	reg.Register(toolkit.ToolDescriptor{
		Name: "needs_arg",
		Params: []toolkit.ParamSpec{
			{Name: "query", Type: toolkit.ParamString, Required: true},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		invoked = true
		return "unreachable", nil
	})

	d := New(reg, nil, nil)
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "needs_arg", Args: map[string]any{}})

	assert.Equal(t, toolkit.ResultValidationError, result.Kind)
	assert.False(t, invoked)
	assert.Contains(t, result.ValidationErrors[0], "query")
}

func TestDispatchDeadlineExceededIsDistinctTimeoutKind(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(toolkit.ToolDescriptor{
		Name:    "slow_tool",
		Timeout: 10 * time.Millisecond,
	}, func(ctx context.Context, args map[string]any) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	d := New(reg, nil, nil)
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "slow_tool"})

	assert.Equal(t, toolkit.ResultTimeout, result.Kind)
}

func TestDispatchPostValidationFlipsSuccessToError(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(toolkit.ToolDescriptor{
		Name:    "remote_execute_command",
		Timeout: time.Second,
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return "bash: command not found: frobnicate", nil
	})

	d := New(reg, nil, nil)
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "remote_execute_command"})

	assert.Equal(t, toolkit.ResultError, result.Kind)
}

func TestDispatchEnforcesExplicitParameterSchema(t *testing.T) {
	reg := newTestRegistry()
	invoked := false
	reg.Register(toolkit.ToolDescriptor{
		Name: "set_log_level",
		Params: []toolkit.ParamSpec{
			{Name: "level", Type: toolkit.ParamString, Required: true},
		},
		ParameterSchema: []byte(`{
			"type": "object",
			"properties": {
				"level": {"type": "string", "enum": ["debug", "info", "warn", "error"]}
			},
			"required": ["level"]
		}`),
	}, func(ctx context.Context, args map[string]any) (any, error) {
		invoked = true
		return "ok", nil
	})

	d := New(reg, nil, nil)
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{
		ToolName: "set_log_level",
		Args:     map[string]any{"level": "deafening"},
	})

	assert.Equal(t, toolkit.ResultValidationError, result.Kind)
	assert.False(t, invoked)
	assert.NotEmpty(t, result.ValidationErrors)
}

type fakeRecorder struct {
	queries          int
	toolCalls        int
	toolCallFailures int
	validationErrs   int
	outputErrs       int
	outputWarnings   int
}

func (f *fakeRecorder) RecordQuery(succeeded bool) { f.queries++ }

func (f *fakeRecorder) RecordToolCall(provider string, succeeded bool, elapsed time.Duration, retries int) {
	f.toolCalls++
	if !succeeded {
		f.toolCallFailures++
	}
}

func (f *fakeRecorder) RecordValidationError() { f.validationErrs++ }

func (f *fakeRecorder) RecordOutputValidation(isError, isWarning bool) {
	if isError {
		f.outputErrs++
	}
	if isWarning {
		f.outputWarnings++
	}
}

func TestDispatchReportsToRecorder(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(toolkit.ToolDescriptor{
		Name:     "remote_execute_command",
		Provider: "remote",
		Timeout:  time.Second,
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return "bash: command not found: frobnicate", nil
	})

	rec := &fakeRecorder{}
	d := New(reg, nil, rec)
	result := d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "remote_execute_command"})

	assert.Equal(t, toolkit.ResultError, result.Kind)
	assert.Equal(t, 1, rec.toolCalls)
	assert.Equal(t, 1, rec.outputErrs)
}

func TestDispatchReportsValidationErrorToRecorder(t *testing.T) {
	reg := newTestRegistry()
	reg.Register(toolkit.ToolDescriptor{
		Name: "needs_arg",
		Params: []toolkit.ParamSpec{
			{Name: "query", Type: toolkit.ParamString, Required: true},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return "unreachable", nil
	})

	rec := &fakeRecorder{}
	d := New(reg, nil, rec)
	d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "needs_arg", Args: map[string]any{}})

	assert.Equal(t, 1, rec.validationErrs)
	assert.Equal(t, 0, rec.toolCalls)
}

func TestDispatchAppliesParamDefaults(t *testing.T) {
	reg := newTestRegistry()
	var seen map[string]any
	reg.Register(toolkit.ToolDescriptor{
		Name: "defaulted_tool",
		Params: []toolkit.ParamSpec{
			{Name: "max_results", Type: toolkit.ParamInteger, Default: 5},
		},
		Timeout: time.Second,
	}, func(ctx context.Context, args map[string]any) (any, error) {
		seen = args
		return "done", nil
	})

	d := New(reg, nil, nil)
	d.Dispatch(context.Background(), toolkit.ToolInvocation{ToolName: "defaulted_tool", Args: map[string]any{}})

	assert.Equal(t, 5, seen["max_results"])
}
