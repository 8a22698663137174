package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/relayforge/internal/dispatcher"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/session"
	"github.com/relayforge/relayforge/internal/toolkit"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	reg := registry.New(nil)
	reg.Register(toolkit.ToolDescriptor{
		Name:     "calc_calculate",
		Provider: "calc",
		Category: "math",
		Timeout:  time.Second,
		Params: []toolkit.ParamSpec{
			{Name: "expression", Type: toolkit.ParamString, Required: true},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return "8", nil
	})

	sessions := session.New()
	disp := dispatcher.New(reg, nil, sessions)
	s := New(reg, disp, sessions, nil)
	return s, httptest.NewServer(s.Handler())
}

func TestHandleToolsListsRegisteredTools(t *testing.T) {
	_, srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["count"])
}

func TestHandleServersSummarizesProviderCounts(t *testing.T) {
	_, srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/servers")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	servers := body["servers"].(map[string]any)
	assert.Equal(t, float64(1), servers["calc"])
}

func TestHandleExecuteSuccess(t *testing.T) {
	_, srv := newTestServer(t)
	defer srv.Close()

	payload := `{"tool_name": "calc_calculate", "arguments": {"expression": "5 + 3"}}`
	resp, err := http.Post(srv.URL+"/execute", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body executeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "8", body.Result)
}

func TestHandleExecuteUnknownToolReturns200WithSuccessFalse(t *testing.T) {
	_, srv := newTestServer(t)
	defer srv.Close()

	payload := `{"tool_name": "does_not_exist"}`
	resp, err := http.Post(srv.URL+"/execute", "application/json", bytes.NewBufferString(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body executeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
}

func TestHandleExecuteMalformedJSONReturns400(t *testing.T) {
	_, srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/execute", "application/json", bytes.NewBufferString(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleHealthReportsStats(t *testing.T) {
	_, srv := newTestServer(t)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestToolDeadlineCapsAtRequestDeadline(t *testing.T) {
	reg := registry.New(nil)
	reg.Register(toolkit.ToolDescriptor{Name: "slow_tool", Timeout: time.Hour}, func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	})
	assert.Equal(t, requestDeadline, toolDeadline(reg, "slow_tool"))
}

func TestToolDeadlineUsesToolTimeoutWhenSmaller(t *testing.T) {
	reg := registry.New(nil)
	reg.Register(toolkit.ToolDescriptor{Name: "fast_tool", Timeout: time.Second}, func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	})
	assert.Equal(t, time.Second, toolDeadline(reg, "fast_tool"))
}
