package callparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSingleCallWithStringParam(t *testing.T) {
	calls := Extract(`FUNCTION_CALL: calculate(expression="5 + 3")`)
	require.Len(t, calls, 1)
	assert.Equal(t, "calculate", calls[0].Name)
	assert.Equal(t, "5 + 3", calls[0].Params["expression"])
}

func TestExtractArrayParam(t *testing.T) {
	calls := Extract(`FUNCTION_CALL: create_todos(todos=["Deploy web app", "Test deployment"])`)
	require.Len(t, calls, 1)
	assert.Equal(t, []any{"Deploy web app", "Test deployment"}, calls[0].Params["todos"])
}

func TestExtractMultipleCalls(t *testing.T) {
	text := "FUNCTION_CALL: execute_command(command=\"uname -a\")\nFUNCTION_CALL: list_directory(path=\"/home/user\")"
	calls := Extract(text)
	require.Len(t, calls, 2)
	assert.Equal(t, "execute_command", calls[0].Name)
	assert.Equal(t, "list_directory", calls[1].Name)
}

func TestExtractNoCallsReturnsEmpty(t *testing.T) {
	calls := Extract("Here is your answer: 42")
	assert.Empty(t, calls)
}

func TestExtractMixedTypedParams(t *testing.T) {
	calls := Extract(`FUNCTION_CALL: configure(retries=3, verbose=true, factor=1.5, name="svc")`)
	require.Len(t, calls, 1)
	p := calls[0].Params
	assert.Equal(t, 3, p["retries"])
	assert.Equal(t, true, p["verbose"])
	assert.Equal(t, 1.5, p["factor"])
	assert.Equal(t, "svc", p["name"])
}

func TestExtractEmptyParamsIsValid(t *testing.T) {
	calls := Extract(`FUNCTION_CALL: list_servers()`)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Params)
}

func TestParseEnhancedRegexRecoversFromMalformedExpression(t *testing.T) {
	params := parseEnhancedRegex(`path="/tmp/report", recursive=true, depth=2`)
	assert.Equal(t, "/tmp/report", params["path"])
	assert.Equal(t, true, params["recursive"])
	assert.Equal(t, 2, params["depth"])
}

func TestParseSimpleFallback(t *testing.T) {
	params := parseSimple(`command='echo hi'`)
	assert.Equal(t, "echo hi", params["command"])
}

func TestParseExpressionRejectsGarbage(t *testing.T) {
	_, ok := parseExpression(`not a valid ( param list`)
	assert.False(t, ok)
}
