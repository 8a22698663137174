// Package providers defines the shared capability-provider contract
// (C2): {initialize, shutdown, list-own-tools}, expressed as an
// explicit interface rather than duck-typing, per the design note in
// spec.md §9.
package providers

import (
	"context"

	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// ToolBinding pairs a descriptor with its executor, ready to hand to the
// registry.
type ToolBinding struct {
	Descriptor toolkit.ToolDescriptor
	Executor   registry.Executor
}

// Provider is the capability set every baseline and plugin-supplied
// provider must satisfy.
type Provider interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Tools() []ToolBinding
	Name() string
}

// RegisterAll registers every tool binding of p into reg.
func RegisterAll(reg *registry.Registry, p Provider) {
	for _, b := range p.Tools() {
		reg.Register(b.Descriptor, b.Executor)
	}
}
