package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	c := NewCalculator()
	result, err := c.Calculate("2 + 3 * 4")
	require.NoError(t, err)
	assert.Equal(t, "14", result)
}

func TestVariableRoundTrip(t *testing.T) {
	c := NewCalculator()
	res, err := c.Calculate("x = 10")
	require.NoError(t, err)
	assert.Equal(t, "x = 10", res)

	res, err = c.Calculate("x * 2 + 5")
	require.NoError(t, err)
	assert.Equal(t, "25", res)

	vars := c.GetVariables()
	assert.Equal(t, float64(10), vars["x"])

	n := c.ClearVariables()
	assert.Equal(t, 1, n)
	assert.Empty(t, c.GetVariables())
}

func TestDivisionByZero(t *testing.T) {
	c := NewCalculator()
	_, err := c.Calculate("1 / 0")
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestUndefinedVariableBecomesErrorString(t *testing.T) {
	c := NewCalculator()
	result, err := c.Calculate("y + 1")
	require.NoError(t, err)
	assert.Contains(t, result, "Error")
}

func TestInvalidSyntaxBecomesErrorString(t *testing.T) {
	c := NewCalculator()
	result, err := c.Calculate("2 + * 3")
	require.NoError(t, err)
	assert.Equal(t, "Error: Invalid mathematical expression", result)
}

func TestFunctionsAndConstants(t *testing.T) {
	c := NewCalculator()
	result, err := c.Calculate("sqrt(16)")
	require.NoError(t, err)
	assert.Equal(t, "4", result)

	result, err = c.Calculate("max([1, 5, 3])")
	require.NoError(t, err)
	assert.Equal(t, "5", result)
}

func TestFloatFormattingTrims(t *testing.T) {
	c := NewCalculator()
	result, err := c.Calculate("1 / 3")
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333", result)
}

func TestChainedComparison(t *testing.T) {
	c := NewCalculator()
	result, err := c.Calculate("1 < 2 < 3")
	require.NoError(t, err)
	assert.Equal(t, "true", result)
}
