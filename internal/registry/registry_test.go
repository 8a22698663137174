package registry

import (
	"context"
	"testing"
	"time"

	"github.com/relayforge/relayforge/internal/toolkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLookupList(t *testing.T) {
	r := New(nil)
	desc := toolkit.ToolDescriptor{Name: "calc_add", Provider: "calc"}
	r.Register(desc, func(ctx context.Context, args map[string]any) (any, error) {
		return "ok", nil
	})

	got, exec, ok := r.Lookup("calc_add")
	require.True(t, ok)
	assert.Equal(t, desc, got)
	res, err := exec(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	list := r.List()
	require.Len(t, list, 1)
	assert.Equal(t, "calc_add", list[0].Name)
}

func TestReRegisterReplacesAndKeepsSize(t *testing.T) {
	r := New(nil)
	r.Register(toolkit.ToolDescriptor{Name: "calc_add"}, func(ctx context.Context, args map[string]any) (any, error) {
		return 1, nil
	})
	r.Register(toolkit.ToolDescriptor{Name: "calc_add"}, func(ctx context.Context, args map[string]any) (any, error) {
		return 2, nil
	})

	assert.Len(t, r.List(), 1)
	_, exec, ok := r.Lookup("calc_add")
	require.True(t, ok)
	res, _ := exec(context.Background(), nil)
	assert.Equal(t, 2, res)
}

func TestLookupMissing(t *testing.T) {
	r := New(nil)
	_, _, ok := r.Lookup("nope")
	assert.False(t, ok)
}

func TestRecordCallAndStats(t *testing.T) {
	r := New(nil)
	r.RecordCall(true, 10*time.Millisecond)
	r.RecordCall(false, 20*time.Millisecond)

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Success)
	assert.Equal(t, int64(1), stats.Failure)
	assert.True(t, stats.AvgElapsedTime > 0)
}

func TestValidateArgsUsesExplicitParameterSchema(t *testing.T) {
	r := New(nil)
	r.Register(toolkit.ToolDescriptor{
		Name: "set_log_level",
		ParameterSchema: []byte(`{
			"type": "object",
			"properties": {"level": {"type": "string", "enum": ["debug", "info", "warn", "error"]}},
			"required": ["level"]
		}`),
	}, nil)

	assert.Empty(t, r.ValidateArgs("set_log_level", map[string]any{"level": "info"}))

	issues := r.ValidateArgs("set_log_level", map[string]any{"level": "deafening"})
	assert.NotEmpty(t, issues)
}

func TestValidateArgsDerivesSchemaFromParams(t *testing.T) {
	r := New(nil)
	r.Register(toolkit.ToolDescriptor{
		Name: "calc_add",
		Params: []toolkit.ParamSpec{
			{Name: "a", Type: toolkit.ParamNumber, Required: true},
			{Name: "b", Type: toolkit.ParamNumber, Required: true},
		},
	}, nil)

	assert.Empty(t, r.ValidateArgs("calc_add", map[string]any{"a": 1.0, "b": 2.0}))
	assert.NotEmpty(t, r.ValidateArgs("calc_add", map[string]any{"a": "not a number", "b": 2.0}))
}

func TestValidateArgsUnknownToolPasses(t *testing.T) {
	r := New(nil)
	assert.Empty(t, r.ValidateArgs("nope", map[string]any{"anything": true}))
}

func TestServerCounts(t *testing.T) {
	r := New(nil)
	r.Register(toolkit.ToolDescriptor{Name: "calc_add", Provider: "calc"}, nil)
	r.Register(toolkit.ToolDescriptor{Name: "calc_sub", Provider: "calc"}, nil)
	r.Register(toolkit.ToolDescriptor{Name: "remote_exec", Provider: "remote"}, nil)

	counts := r.ServerCounts()
	assert.Equal(t, 2, counts["calc"])
	assert.Equal(t, 1, counts["remote"])
}
