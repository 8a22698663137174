// Package dispatcher implements the reliable dispatcher (C6): argument
// coercion and validation, a retry loop honoring each tool's declared
// backoff and timeout, call telemetry, and post-call output
// validation via the C5 classifier.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/relayforge/relayforge/internal/backoff"
	"github.com/relayforge/relayforge/internal/obs"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/session"
	"github.com/relayforge/relayforge/internal/toolkit"
	"github.com/relayforge/relayforge/internal/validator"
)

// Dispatcher resolves a tool invocation against the registry and runs
// it to completion, retrying on transient provider errors and
// classifying the resulting payload before returning.
type Dispatcher struct {
	registry *registry.Registry
	log      *slog.Logger
	recorder session.Recorder
	metrics  *obs.Metrics
}

// New constructs a Dispatcher bound to reg. recorder may be nil, in
// which case call outcomes are simply not aggregated anywhere beyond
// the registry's own running Stats().
func New(reg *registry.Registry, log *slog.Logger, recorder session.Recorder) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{registry: reg, log: log.With("component", "dispatcher"), recorder: recorder}
}

// SetMetrics attaches the Prometheus collector set. Call outcomes are
// only reported to m once it has been attached; a nil Dispatcher
// metrics field (the default) simply skips reporting.
func (d *Dispatcher) SetMetrics(m *obs.Metrics) {
	d.metrics = m
}

// Dispatch validates, invokes, retries, and classifies one tool call.
// It never panics or returns a Go error for a tool-domain failure; all
// such outcomes are reported through the returned ToolResult's Kind.
func (d *Dispatcher) Dispatch(ctx context.Context, inv toolkit.ToolInvocation) toolkit.ToolResult {
	start := time.Now()

	desc, exec, ok := d.registry.Lookup(inv.ToolName)
	if !ok {
		return toolkit.ToolResult{
			Kind:             toolkit.ResultValidationError,
			Message:          fmt.Sprintf("unknown tool: %s", inv.ToolName),
			ValidationErrors: []string{fmt.Sprintf("%s: tool not registered", inv.ToolName)},
			Timestamp:        start,
		}
	}

	args, issues := coerceArgs(desc.Params, inv.Args)
	if len(issues) > 0 {
		d.registry.RecordCall(false, time.Since(start))
		if d.recorder != nil {
			d.recorder.RecordValidationError()
		}
		return toolkit.ToolResult{
			Kind:             toolkit.ResultValidationError,
			Message:          "argument validation failed",
			ValidationErrors: issues,
			ElapsedTime:      time.Since(start),
			Timestamp:        start,
		}
	}
	applyDefaults(desc.Params, args)

	if issues := d.registry.ValidateArgs(inv.ToolName, args); len(issues) > 0 {
		d.registry.RecordCall(false, time.Since(start))
		if d.recorder != nil {
			d.recorder.RecordValidationError()
		}
		return toolkit.ToolResult{
			Kind:             toolkit.ResultValidationError,
			Message:          "argument schema validation failed",
			ValidationErrors: issues,
			ElapsedTime:      time.Since(start),
			Timestamp:        start,
		}
	}

	maxAttempts := desc.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	baseDelay := desc.RetryBaseDelay
	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var (
		payload  any
		lastErr  error
		attempt  int
		retryCnt int
	)

	for attempt = 1; attempt <= maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		payload, lastErr = exec(callCtx, args)
		cancel()

		if lastErr == nil {
			break
		}
		if errors.Is(lastErr, context.DeadlineExceeded) {
			break
		}
		var valErr *toolkit.ValidationError
		var secErr *toolkit.SecurityError
		if errors.As(lastErr, &valErr) || errors.As(lastErr, &secErr) {
			break
		}
		if attempt < maxAttempts {
			retryCnt++
			delay := backoff.ToolRetryDelay(baseDelay, attempt)
			if err := backoff.SleepWithContext(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	elapsed := time.Since(start)

	if lastErr != nil {
		succ := false
		d.registry.RecordCall(succ, elapsed)
		if d.recorder != nil {
			d.recorder.RecordToolCall(desc.Provider, succ, elapsed, retryCnt)
		}
		d.reportMetrics(inv.ToolName, "failure", elapsed, retryCnt)
		if errors.Is(lastErr, context.DeadlineExceeded) {
			return toolkit.ToolResult{
				Kind:        toolkit.ResultTimeout,
				Message:     fmt.Sprintf("tool %s timed out after %s", inv.ToolName, timeout),
				ElapsedTime: elapsed,
				RetryCount:  retryCnt,
				Timestamp:   start,
			}
		}
		return toolkit.ToolResult{
			Kind:        toolkit.ResultError,
			Message:     lastErr.Error(),
			ElapsedTime: elapsed,
			RetryCount:  retryCnt,
			Timestamp:   start,
		}
	}

	d.registry.RecordCall(true, elapsed)
	if d.recorder != nil {
		d.recorder.RecordToolCall(desc.Provider, true, elapsed, retryCnt)
	}
	d.reportMetrics(inv.ToolName, "success", elapsed, retryCnt)

	result := toolkit.ToolResult{
		Kind:        toolkit.ResultSuccess,
		Payload:     payload,
		ElapsedTime: elapsed,
		RetryCount:  retryCnt,
		Timestamp:   start,
	}

	if text := payloadText(payload); text != "" {
		class := inferCommandClass(inv.ToolName)
		verdict := validator.Classify(text, class, nil)
		result.Metadata = map[string]any{
			"validation_result":  string(verdict.Result),
			"validation_message": verdict.Message,
		}
		if d.recorder != nil {
			d.recorder.RecordOutputValidation(verdict.Result == validator.Error, verdict.Result == validator.Warning)
		}
		if verdict.Result == validator.Error {
			result.Kind = toolkit.ResultError
			result.Message = verdict.Message
		} else if verdict.Result == validator.Warning {
			result.Kind = toolkit.ResultPartial
			result.Message = verdict.Message
		}
	}

	return result
}

// applyDefaults fills in each declared parameter's Default where the
// caller omitted it entirely.
func applyDefaults(params []toolkit.ParamSpec, args map[string]any) {
	for _, p := range params {
		if p.Default == nil {
			continue
		}
		if _, ok := args[p.Name]; !ok {
			args[p.Name] = p.Default
		}
	}
}

// reportMetrics records one call outcome to the attached Prometheus
// collectors. A no-op when SetMetrics was never called.
func (d *Dispatcher) reportMetrics(toolName, kind string, elapsed time.Duration, retries int) {
	if d.metrics == nil {
		return
	}
	d.metrics.DispatchTotal.WithLabelValues(toolName, kind).Inc()
	d.metrics.DispatchElapsed.WithLabelValues(toolName).Observe(elapsed.Seconds())
	if retries > 0 {
		d.metrics.DispatchRetries.WithLabelValues(toolName).Add(float64(retries))
	}
}

// NewInvocation builds a ToolInvocation with a fresh correlation id, a
// convenience for callers that don't need to manage ids themselves
// (the HTTP bridge, the agent loop).
func NewInvocation(toolName string, args map[string]any) toolkit.ToolInvocation {
	return toolkit.ToolInvocation{
		ToolName:      toolName,
		Args:          args,
		CorrelationID: uuid.New(),
	}
}
