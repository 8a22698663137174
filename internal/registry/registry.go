// Package registry implements the process-wide tool registry (C1): a
// uniform map from qualified tool names to descriptor+executor pairs,
// with running telemetry counters.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// Executor is the abstract callable a provider registers for one tool.
// It takes the coerced argument mapping and returns a raw payload or a
// provider error.
type Executor func(ctx context.Context, args map[string]any) (any, error)

type entry struct {
	descriptor toolkit.ToolDescriptor
	executor   Executor
	schema     *jsonschema.Schema
}

// Registry is the shared, read-mostly tool catalog.
type Registry struct {
	log *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry

	total   int64
	success int64
	failure int64

	avgMu     sync.Mutex
	avgNanos  float64
	avgCount  int64
}

// New creates an empty Registry.
func New(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		log:     log.With("component", "registry"),
		entries: make(map[string]entry),
	}
}

// Register installs a descriptor and its executor under the descriptor's
// qualified name. Re-registering an existing name replaces the prior
// binding and logs a warning; it never silently drops the new
// registration and never leaves the registry larger than one entry per
// unique name.
func (r *Registry) Register(desc toolkit.ToolDescriptor, exec Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[desc.Name]; exists {
		r.log.Warn("overwriting existing tool registration", "tool", desc.Name)
	}
	raw := desc.ParameterSchema
	if len(raw) == 0 {
		raw = buildParameterSchema(desc.Params)
	}
	schema, err := compileSchema(desc.Name, raw)
	if err != nil {
		r.log.Warn("failed to compile tool parameter schema", "tool", desc.Name, "error", err)
	}
	r.entries[desc.Name] = entry{descriptor: desc, executor: exec, schema: schema}
}

// ValidateArgs checks args against name's compiled JSON-Schema parameter
// schema, returning one message per violation found. A tool with no
// compiled schema, or an unknown name, always passes: schema validation
// is an additional check layered on top of the dispatcher's own
// coercion, not a replacement for registry.Lookup's existence check.
func (r *Registry) ValidateArgs(name string, args map[string]any) []string {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok || e.schema == nil {
		return nil
	}
	decoded, err := toValidatable(args)
	if err != nil {
		return []string{fmt.Sprintf("arguments not representable as JSON: %v", err)}
	}
	if err := e.schema.Validate(decoded); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return flattenValidationError(verr)
		}
		return []string{err.Error()}
	}
	return nil
}

// Unregister removes a tool by qualified name. It is a no-op if the name
// is not present.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Lookup returns the descriptor and executor for name, and whether it
// was found.
func (r *Registry) Lookup(name string) (toolkit.ToolDescriptor, Executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return toolkit.ToolDescriptor{}, nil, false
	}
	return e.descriptor, e.executor, true
}

// List returns every registered descriptor, sorted by name for
// deterministic output.
func (r *Registry) List() []toolkit.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]toolkit.ToolDescriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RecordCall updates the running counters after a call completes. succ
// indicates whether the call succeeded; elapsed is the call's duration.
func (r *Registry) RecordCall(succ bool, elapsed time.Duration) {
	atomic.AddInt64(&r.total, 1)
	if succ {
		atomic.AddInt64(&r.success, 1)
	} else {
		atomic.AddInt64(&r.failure, 1)
	}
	r.avgMu.Lock()
	r.avgCount++
	n := float64(r.avgCount)
	r.avgNanos += (float64(elapsed.Nanoseconds()) - r.avgNanos) / n
	r.avgMu.Unlock()
}

// Stats is a snapshot of the registry's running counters.
type Stats struct {
	Total          int64
	Success        int64
	Failure        int64
	AvgElapsedTime time.Duration
}

// Stats returns the current counters.
func (r *Registry) Stats() Stats {
	r.avgMu.Lock()
	avg := time.Duration(r.avgNanos)
	r.avgMu.Unlock()
	return Stats{
		Total:          atomic.LoadInt64(&r.total),
		Success:        atomic.LoadInt64(&r.success),
		Failure:        atomic.LoadInt64(&r.failure),
		AvgElapsedTime: avg,
	}
}

// ServerCounts summarizes per-provider tool counts, for the /servers
// endpoint.
func (r *Registry) ServerCounts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, e := range r.entries {
		out[e.descriptor.Provider]++
	}
	return out
}
