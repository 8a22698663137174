// Package agentloop implements the LLM interaction loop (C8): a system
// prompt built from the live tool catalog, planner-driven execution for
// complex queries, and a parse-dispatch-synthesize cycle for everything
// else.
package agentloop

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/relayforge/relayforge/internal/agentloop/callparse"
	"github.com/relayforge/relayforge/internal/dispatcher"
	"github.com/relayforge/relayforge/internal/llm"
	"github.com/relayforge/relayforge/internal/planner"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/session"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// Config tunes the loop's execution behavior.
type Config struct {
	// Concurrency bounds how many parsed tool calls from a single model
	// response run at once. Default: 4.
	Concurrency int
	// HistoryTokenBudget bounds the in-memory conversation history.
	// Default: DefaultHistoryTokenBudget.
	HistoryTokenBudget int
}

// DefaultConfig returns the loop's baseline tuning.
func DefaultConfig() Config {
	return Config{Concurrency: 4, HistoryTokenBudget: DefaultHistoryTokenBudget}
}

// Engine drives one conversation: planning, dispatch, and model calls.
type Engine struct {
	registry   *registry.Registry
	dispatcher *dispatcher.Dispatcher
	planner    *planner.Planner
	llmClient  llm.Client
	recorder   session.Recorder
	log        *slog.Logger

	history     *History
	concurrency int
}

// New constructs an Engine. recorder may be nil.
func New(reg *registry.Registry, disp *dispatcher.Dispatcher, p *planner.Planner, client llm.Client, recorder session.Recorder, cfg Config, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Engine{
		registry:    reg,
		dispatcher:  disp,
		planner:     p,
		llmClient:   client,
		recorder:    recorder,
		log:         log.With("component", "agentloop"),
		history:     NewHistory(cfg.HistoryTokenBudget),
		concurrency: cfg.Concurrency,
	}
}

// Query answers one user message. If the message looks like a complex,
// multi-step task, it is executed directly through the planner and
// dispatcher with no model call; otherwise the model is consulted,
// its response parsed for tool calls, and those calls dispatched before
// a final synthesis call produces the answer.
func (e *Engine) Query(ctx context.Context, message string) (string, error) {
	if plan := e.planner.Detect(message); plan != nil {
		report := e.runPlan(ctx, plan)
		e.recordQuery(true)
		return report, nil
	}

	e.history.Append(llm.Message{Role: "user", Content: message})

	messages := append([]llm.Message{{Role: "system", Content: buildSystemPrompt(e.registry.List())}}, e.history.Messages()...)

	response, err := e.llmClient.Complete(ctx, messages)
	if err != nil {
		e.recordQuery(false)
		return "", fmt.Errorf("agentloop: model completion failed: %w", err)
	}

	calls := callparse.Extract(response)
	if len(calls) == 0 {
		e.history.Append(llm.Message{Role: "assistant", Content: response})
		e.recordQuery(true)
		return response, nil
	}

	toolLines := e.dispatchAll(ctx, calls)
	finalPrompt := "Based on the following tool results, provide a concise and accurate answer:\n\n" + strings.Join(toolLines, "\n")
	final, err := e.llmClient.Complete(ctx, []llm.Message{{Role: "user", Content: finalPrompt}})
	if err != nil {
		e.recordQuery(false)
		return "", fmt.Errorf("agentloop: synthesis completion failed: %w", err)
	}
	if strings.TrimSpace(final) == "" {
		final = "No response generated"
	}

	e.history.Append(llm.Message{Role: "assistant", Content: final})
	e.recordQuery(true)
	return final, nil
}

func (e *Engine) recordQuery(succeeded bool) {
	if e.recorder != nil {
		e.recorder.RecordQuery(succeeded)
	}
}

// dispatchAll runs every parsed call through the dispatcher concurrently
// up to e.concurrency, collecting one "Tool X: <result>" line per call
// in input order. It waits for every started dispatch to return. A call
// still waiting for a slot when ctx is canceled is reported as failed
// without being dispatched; a dispatch already running receives the
// canceled ctx, which ends its retry waits and reaches the executor
// through its call context.
func (e *Engine) dispatchAll(ctx context.Context, calls []callparse.Call) []string {
	lines := make([]string, len(calls))
	sem := make(chan struct{}, e.concurrency)
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(idx int, c callparse.Call) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				lines[idx] = fmt.Sprintf("Tool %s failed: %s", c.Name, ctx.Err())
				return
			}

			result := e.dispatcher.Dispatch(ctx, dispatcher.NewInvocation(c.Name, c.Params))
			lines[idx] = formatToolLine(c.Name, result)
		}(i, call)
	}

	wg.Wait()
	return lines
}

func formatToolLine(name string, result toolkit.ToolResult) string {
	if result.Succeeded() {
		return fmt.Sprintf("Tool %s: %s", name, resultText(result))
	}
	return fmt.Sprintf("Tool %s failed: %s", name, resultText(result))
}

func resultText(result toolkit.ToolResult) string {
	if result.Message != "" {
		return result.Message
	}
	if result.Payload != nil {
		return fmt.Sprintf("%v", result.Payload)
	}
	return string(result.Kind)
}

// runPlan executes plan's steps through the dispatcher in order and
// stops at the first failure, leaving remaining steps unattempted:
// a step failure marks the whole plan failed rather than skipping
// ahead to independent-looking steps.
func (e *Engine) runPlan(ctx context.Context, plan *toolkit.TaskPlan) string {
	plan.Status = toolkit.PlanInProgress
	for _, step := range plan.Steps {
		result := e.dispatcher.Dispatch(ctx, dispatcher.NewInvocation(step.ToolName, step.Params))
		step.Result = &result
		step.Completed = result.Succeeded()
		if !step.Completed {
			break
		}
		plan.CurrentStep++
	}
	now := time.Now()
	plan.CompletedAt = &now
	if plan.AllCompleted() {
		plan.Status = toolkit.PlanCompleted
	} else {
		plan.Status = toolkit.PlanFailed
	}
	return formatPlanReport(plan)
}

func formatPlanReport(plan *toolkit.TaskPlan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Executing plan: %s\n\n", plan.Description)

	completed := 0
	for _, step := range plan.Steps {
		emoji := "❌" // ❌
		if step.Completed {
			emoji = "✅" // ✅
			completed++
		}
		fmt.Fprintf(&sb, "%s %s\n", emoji, step.Description)
		if !step.Completed && step.Result != nil && step.Result.Message != "" {
			fmt.Fprintf(&sb, "   error: %s\n", step.Result.Message)
		}
	}

	fmt.Fprintf(&sb, "\nCompleted %d/%d steps.", completed, len(plan.Steps))
	return sb.String()
}
