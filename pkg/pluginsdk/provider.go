// Package pluginsdk defines the contract a dynamically loaded
// provider plugin must satisfy, shared between the host process and
// any plugin built against this module.
package pluginsdk

import "context"

// ToolSpec is the provider-facing description of one tool a plugin
// exposes. It mirrors toolkit.ToolDescriptor's shape without importing
// the host's internal package, so plugin binaries only depend on this
// SDK.
type ToolSpec struct {
	Name        string
	Description string
	Category    string
	Version     string
	Params      []ParamSpec
	TimeoutSec  int
	MaxRetries  int
}

// ParamSpec describes one named parameter of a ToolSpec.
type ParamSpec struct {
	Name        string
	Type        string // "string", "integer", "number", "boolean", "array", "object"
	Description string
	Required    bool
	Default     any
}

// ToolHandler executes one tool call with coerced arguments.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// Provider is the capability set a plugin source file must satisfy to
// be instantiated by the loader: a name, a lifecycle, and a set of
// tools bound to handlers.
type Provider interface {
	Name() string
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Tools() []ToolSpec
	Execute(ctx context.Context, toolName string, args map[string]any) (any, error)
}

// PluginSymbol names the Provider value a plugin exports. The host's
// loader does not look this symbol up: it dispenses the provider over
// go-plugin under the "provider" plugin key.
const PluginSymbol = "RelayForgeProvider"
