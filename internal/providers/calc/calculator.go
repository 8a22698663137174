package calc

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Calculator holds the provider-local variable bindings. Concurrent
// set_variable calls on the same instance are serialized, matching
// spec.md §5's concurrency model for the calculator.
type Calculator struct {
	mu   sync.Mutex
	vars map[string]float64
}

// NewCalculator returns an empty Calculator.
func NewCalculator() *Calculator {
	return &Calculator{vars: make(map[string]float64)}
}

// Calculate evaluates expression against the calculator's current
// variable bindings, returning the formatted result string. It never
// returns a Go error for a malformed or undefined-variable expression —
// like the original, it renders "Error: ..." into the result text — but
// does return a Go error for division by zero, so callers can surface
// the distinct error kind spec.md §8 calls for.
func (c *Calculator) Calculate(expression string) (string, error) {
	if name, rhs, ok := splitAssignment(expression); ok {
		result, err := c.Calculate(rhs)
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(result, "Error") {
			return result, nil
		}
		f, parseErr := strconv.ParseFloat(result, 64)
		if parseErr == nil {
			c.mu.Lock()
			c.vars[name] = f
			c.mu.Unlock()
		}
		return fmt.Sprintf("%s = %s", name, result), nil
	}

	tree, err := parseExpression(expression)
	if err != nil {
		return "Error: Invalid mathematical expression", nil
	}

	c.mu.Lock()
	snapshot := make(map[string]float64, len(c.vars))
	for k, v := range c.vars {
		snapshot[k] = v
	}
	c.mu.Unlock()

	ev := &evaluator{vars: snapshot}
	result, err := ev.eval(tree)
	if err != nil {
		switch {
		case err == ErrDivisionByZero:
			return "", ErrDivisionByZero
		default:
			return "Error: " + err.Error(), nil
		}
	}

	return formatValue(result), nil
}

func formatValue(v value) string {
	if v.isBool {
		if v.boolean {
			return "true"
		}
		return "false"
	}
	if v.isList {
		parts := make([]string, len(v.list))
		for i, x := range v.list {
			parts[i] = formatScalar(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return formatScalar(v.scalar)
}

func formatScalar(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', 10, 64)
}

// SetVariable binds name to value.
func (c *Calculator) SetVariable(name string, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[name] = value
}

// GetVariables returns a copy of the current bindings.
func (c *Calculator) GetVariables() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64, len(c.vars))
	for k, v := range c.vars {
		out[k] = v
	}
	return out
}

// ClearVariables removes every binding and returns the count cleared.
func (c *Calculator) ClearVariables() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.vars)
	c.vars = make(map[string]float64)
	return n
}
