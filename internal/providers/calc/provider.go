package calc

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// Provider offers calculate/set_variable/get_variables/clear_variables
// over a single private Calculator instance.
type Provider struct {
	calc *Calculator
}

// New constructs the calculation provider.
func New() *Provider {
	return &Provider{calc: NewCalculator()}
}

func (p *Provider) Name() string { return "calc" }

func (p *Provider) Initialize(ctx context.Context) error { return nil }

func (p *Provider) Shutdown(ctx context.Context) error {
	p.calc.ClearVariables()
	return nil
}

func (p *Provider) Tools() []providers.ToolBinding {
	return []providers.ToolBinding{
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "calc_calculate",
				Description: "Perform safe mathematical calculations including arithmetic, trigonometry, logarithms, factorials, variables, and complex expressions",
				Provider:    "calc",
				Category:    "mathematics",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "expression", Type: toolkit.ParamString, Required: true,
						Description: "Mathematical expression to evaluate (e.g. '2 + 3 * 4', 'sin(pi/2)', 'x = 5')"},
				},
				Timeout:        10 * time.Second,
				MaxRetries:     0,
				RetryBaseDelay: time.Second,
			},
			Executor: p.executeCalculate,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "calc_set_variable",
				Description: "Set a variable for use in calculations",
				Provider:    "calc",
				Category:    "variables",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "name", Type: toolkit.ParamString, Required: true, Description: "Variable name"},
					{Name: "value", Type: toolkit.ParamNumber, Required: true, Description: "Variable value"},
				},
				Timeout: 5 * time.Second,
			},
			Executor: p.executeSetVariable,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "calc_get_variables",
				Description: "Get all currently defined variables",
				Provider:    "calc",
				Category:    "variables",
				Version:     "1.0.0",
				Timeout:     5 * time.Second,
			},
			Executor: p.executeGetVariables,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "calc_clear_variables",
				Description: "Clear all variables from memory",
				Provider:    "calc",
				Category:    "variables",
				Version:     "1.0.0",
				Timeout:     5 * time.Second,
			},
			Executor: p.executeClearVariables,
		},
	}
}

func (p *Provider) executeCalculate(ctx context.Context, args map[string]any) (any, error) {
	expr, _ := args["expression"].(string)
	result, err := p.calc.Calculate(expr)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provider) executeSetVariable(ctx context.Context, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	value, err := toFloat(args["value"])
	if err != nil {
		return nil, err
	}
	p.calc.SetVariable(name, value)
	return fmt.Sprintf("Variable '%s' set to %s", name, formatScalar(value)), nil
}

func (p *Provider) executeGetVariables(ctx context.Context, args map[string]any) (any, error) {
	return p.calc.GetVariables(), nil
}

func (p *Provider) executeClearVariables(ctx context.Context, args map[string]any) (any, error) {
	n := p.calc.ClearVariables()
	return fmt.Sprintf("Cleared %d variables", n), nil
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case string:
		return strconv.ParseFloat(t, 64)
	default:
		return 0, fmt.Errorf("value must be numeric, got %T", v)
	}
}
