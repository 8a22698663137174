package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/toolkit"
)

func fullRegistry() *registry.Registry {
	reg := registry.New(nil)
	noop := func(ctx context.Context, args map[string]any) (any, error) { return nil, nil }
	for _, name := range []string{
		"remote_execute_command", "remote_list_directory", "remote_write_file",
		"monitor_create_todos",
	} {
		reg.Register(toolkit.ToolDescriptor{Name: name}, noop)
	}
	return reg
}

func TestIsComplexTaskDetectsKeywordIndicator(t *testing.T) {
	assert.True(t, IsComplexTask("Please deploy the new service to staging"))
}

func TestIsComplexTaskDetectsCategoryPattern(t *testing.T) {
	assert.True(t, IsComplexTask("track cpu metrics across the cluster"))
}

func TestIsComplexTaskDetectsSequenceIndicatorsWithProjectKeyword(t *testing.T) {
	assert.True(t, IsComplexTask("first check the project, then verify it, finally ship it"))
}

func TestIsComplexTaskDetectsNumberedList(t *testing.T) {
	query := "Do this:\n1. one\n2. two\n3. three\n"
	assert.True(t, IsComplexTask(query))
}

func TestIsComplexTaskRejectsSimpleQuery(t *testing.T) {
	assert.False(t, IsComplexTask("what is 2 + 2?"))
}

func TestClassifyDeployment(t *testing.T) {
	assert.Equal(t, CategoryDeployment, Classify("deploy the app to the server"))
}

func TestClassifyFallsBackToKeywordDefault(t *testing.T) {
	assert.Equal(t, CategoryDataProcessing, Classify("please process this oddly-shaped request"))
}

func TestDetectReturnsNilForSimpleQuery(t *testing.T) {
	p := New(fullRegistry())
	assert.Nil(t, p.Detect("what is 2 + 2?"))
}

func TestDetectDeployWebApplicationLeadsWithCreateTodos(t *testing.T) {
	p := New(fullRegistry())
	plan := p.Detect("Deploy a web application")
	require.NotNil(t, plan)
	require.GreaterOrEqual(t, len(plan.Steps), 3)

	first := plan.Steps[0]
	assert.Equal(t, "monitor_create_todos", first.ToolName)
	todos, ok := first.Params["todos"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, todos)
	for _, tool := range plan.Steps {
		assert.NotEmpty(t, tool.ToolName)
	}
}

func TestGenerateSkipsStepsForUnregisteredTools(t *testing.T) {
	reg := registry.New(nil)
	p := New(reg)
	plan := p.Generate("deploy the app")
	assert.Empty(t, plan.Steps)
}

func TestFlaskApplicationStepsUsesLiteralSequence(t *testing.T) {
	p := New(fullRegistry())
	plan := p.Generate("create a Flask web application")

	var toolNames []string
	for _, s := range plan.Steps {
		toolNames = append(toolNames, s.ToolName)
	}
	assert.Contains(t, toolNames, "remote_execute_command")
	assert.Contains(t, toolNames, "remote_write_file")

	var appStep *toolkit.TaskStep
	for _, s := range plan.Steps {
		if s.ToolName == "remote_write_file" && s.Params["filename"] == "hello_flask/app.py" {
			appStep = s
		}
	}
	require.NotNil(t, appStep)
	assert.Contains(t, appStep.Params["content"], "Flask(__name__)")
}

func TestPlanStartsPending(t *testing.T) {
	p := New(fullRegistry())
	plan := p.Generate("set up monitoring for the cluster")
	assert.Equal(t, toolkit.PlanPending, plan.Status)
	assert.False(t, plan.AllCompleted())
}
