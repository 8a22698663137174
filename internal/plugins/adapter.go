package plugins

import (
	"context"
	"time"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/registry"
	"github.com/relayforge/relayforge/internal/toolkit"
	"github.com/relayforge/relayforge/pkg/pluginsdk"
)

// adapter wraps a dynamically loaded pluginsdk.Provider as a
// providers.Provider, translating its SDK-level ToolSpecs into
// toolkit.ToolDescriptors and dispatching executor calls back through
// the plugin's single Execute entry point.
type adapter struct {
	plugin pluginsdk.Provider
}

func newAdapter(p pluginsdk.Provider) *adapter {
	return &adapter{plugin: p}
}

func (a *adapter) Name() string { return a.plugin.Name() }

func (a *adapter) Initialize(ctx context.Context) error { return a.plugin.Initialize(ctx) }

func (a *adapter) Shutdown(ctx context.Context) error { return a.plugin.Shutdown(ctx) }

func (a *adapter) Tools() []providers.ToolBinding {
	specs := a.plugin.Tools()
	bindings := make([]providers.ToolBinding, 0, len(specs))
	for _, spec := range specs {
		spec := spec
		descriptor := toolkit.ToolDescriptor{
			Name:        a.plugin.Name() + "_" + spec.Name,
			Description: spec.Description,
			Provider:    a.plugin.Name(),
			Category:    spec.Category,
			Version:     spec.Version,
			Params:      convertParams(spec.Params),
			Timeout:     time.Duration(spec.TimeoutSec) * time.Second,
			MaxRetries:  spec.MaxRetries,
		}
		bindings = append(bindings, providers.ToolBinding{
			Descriptor: descriptor,
			Executor: registry.Executor(func(ctx context.Context, args map[string]any) (any, error) {
				return a.plugin.Execute(ctx, spec.Name, args)
			}),
		})
	}
	return bindings
}

func convertParams(specs []pluginsdk.ParamSpec) []toolkit.ParamSpec {
	out := make([]toolkit.ParamSpec, 0, len(specs))
	for _, p := range specs {
		out = append(out, toolkit.ParamSpec{
			Name:        p.Name,
			Type:        toolkit.ParamType(p.Type),
			Description: p.Description,
			Required:    p.Required,
			Default:     p.Default,
		})
	}
	return out
}
