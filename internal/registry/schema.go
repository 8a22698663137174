package registry

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// buildParameterSchema derives a JSON-Schema object describing a tool's
// arguments from its ParamSpec list. Providers that already set
// ToolDescriptor.ParameterSchema explicitly (e.g. a plugin mirroring an
// upstream tool's own schema) keep that schema instead.
func buildParameterSchema(params []toolkit.ParamSpec) json.RawMessage {
	properties := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		properties[p.Name] = map[string]any{
			"type":        jsonSchemaType(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	return raw
}

func jsonSchemaType(t toolkit.ParamType) string {
	switch t {
	case toolkit.ParamString:
		return "string"
	case toolkit.ParamInteger:
		return "integer"
	case toolkit.ParamNumber:
		return "number"
	case toolkit.ParamBoolean:
		return "boolean"
	case toolkit.ParamArray:
		return "array"
	default:
		return "string"
	}
}

// compileSchema compiles a tool's JSON-Schema parameter document. An
// empty raw schema compiles to a nil *jsonschema.Schema, meaning
// "nothing to check" rather than an error.
func compileSchema(name string, raw json.RawMessage) (*jsonschema.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	resource := fmt.Sprintf("tool://%s/params.json", name)
	schema, err := jsonschema.CompileString(resource, string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// toValidatable round-trips args through JSON encoding so Go-native
// numeric types (int, int64) come back as float64, matching what
// jsonschema's type checks expect from decoded JSON.
func toValidatable(args map[string]any) (any, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// flattenValidationError collapses a jsonschema validation error tree
// into one message per leaf cause.
func flattenValidationError(verr *jsonschema.ValidationError) []string {
	var out []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, e.Error())
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	return out
}
