package plugins

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// dangerousImports blocks packages that grant process control,
// arbitrary filesystem mutation, or dynamic code execution to a
// plugin source file.
var dangerousImports = map[string]bool{
	"os/exec":         true,
	"syscall":         true,
	"unsafe":          true,
	"plugin":          true,
	"debug/buildinfo": true,
	"reflect":         true,
}

// dangerousOsCalls are os package selectors that mutate the
// filesystem; plain os is not import-blocked outright since a provider
// legitimately reads files and env vars, so these are caught by the
// AST call scan below instead.
var dangerousOsCalls = map[string]bool{
	"RemoveAll": true,
	"Remove":    true,
	"WriteFile": true,
	"Mkdir":     true,
	"MkdirAll":  true,
	"Chmod":     true,
	"Create":    true,
	"Rename":    true,
	"Truncate":  true,
}

// dangerousSubstrings are literal text patterns that, if present
// anywhere in the source, reject the file regardless of whether it
// parses as valid syntax that happens to reference them indirectly
// (e.g. through a string built at runtime).
var dangerousSubstrings = []string{
	"os.RemoveAll(", "os.Remove(", "syscall.Exec(", "exec.Command(",
	"unsafe.Pointer", "//go:linkname",
}

// allowedPatterns are the conventional markers of a well-formed
// provider source file; their absence only produces a warning, never
// a rejection.
var allowedPatterns = []string{"func (p *", "Tools()", "Execute("}

// ValidationResult is the outcome of validating one candidate source
// file.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateSource runs the static safety check on a plugin's Go source
// text. It never executes or imports the code; it only parses it to a
// syntax tree and inspects the tree and the raw text.
func ValidateSource(filename, src string) ValidationResult {
	var result ValidationResult

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("invalid Go syntax: %v", err))
		return result
	}

	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		if dangerousImports[path] {
			result.Errors = append(result.Errors, fmt.Sprintf("dangerous import: %s", path))
		}
	}

	for _, pattern := range dangerousSubstrings {
		if strings.Contains(src, pattern) {
			result.Errors = append(result.Errors, fmt.Sprintf("dangerous pattern found: %s", pattern))
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		pkgIdent, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if pkgIdent.Name == "exec" && sel.Sel.Name == "Command" {
			result.Errors = append(result.Errors, "dangerous call: exec.Command")
		}
		if pkgIdent.Name == "os" && dangerousOsCalls[sel.Sel.Name] {
			result.Errors = append(result.Errors, fmt.Sprintf("dangerous call: os.%s", sel.Sel.Name))
		}
		return true
	})

	hasProviderShape := false
	for _, pattern := range allowedPatterns {
		if strings.Contains(src, pattern) {
			hasProviderShape = true
			break
		}
	}
	if !hasProviderShape {
		result.Warnings = append(result.Warnings, "source does not appear to declare a provider or register tools")
	}

	result.Valid = len(result.Errors) == 0
	return result
}
