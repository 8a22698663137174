package toolkit

import "fmt"

// ConfigError signals a fatal startup misconfiguration (missing required
// option, unreadable key file).
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Option, e.Reason)
}

// ValidationError signals an argument shape/type/required mismatch.
// Never retried by the dispatcher.
type ValidationError struct {
	Tool   string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %v", e.Tool, e.Issues)
}

// SecurityError signals path traversal, a forbidden extension, or a
// rejected plugin. Never bypassable and never retried.
type SecurityError struct {
	Reason string
}

func (e *SecurityError) Error() string {
	return "security error: " + e.Reason
}

var (
	// ErrPathTraversal is returned when a remote file operation's path
	// escapes the workspace via ".." segments or an absolute path.
	ErrPathTraversal = &SecurityError{Reason: "path traversal rejected"}
	// ErrForbiddenExtension is returned when write_file targets an
	// extension outside the configured whitelist.
	ErrForbiddenExtension = &SecurityError{Reason: "file extension not permitted"}
	// ErrPluginRejected is returned when the static plugin validator
	// rejects a candidate source file.
	ErrPluginRejected = &SecurityError{Reason: "plugin failed static validation"}
)

// ConnectionError signals an SSH authentication or transport failure.
// Retried by the dispatcher.
type ConnectionError struct {
	Target string
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error to %s: %v", e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// ToolError signals a provider-raised failure during execution. Retried.
type ToolError struct {
	Tool  string
	Cause error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error in %s: %v", e.Tool, e.Cause)
}

func (e *ToolError) Unwrap() error { return e.Cause }

// TimeoutError signals a deadline exceeded. The dispatcher does not
// single it out: an executor returning it is retried like other errors
// and reported as ResultError; only context.DeadlineExceeded yields
// ResultTimeout.
type TimeoutError struct {
	Tool    string
	Elapsed string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout error in %s after %s", e.Tool, e.Elapsed)
}

// PlannerError signals a step referencing an unknown tool, or a step
// failure mid-plan.
type PlannerError struct {
	PlanID string
	Reason string
}

func (e *PlannerError) Error() string {
	return fmt.Sprintf("planner error in plan %s: %s", e.PlanID, e.Reason)
}

// LLMParseError signals that the model emitted FUNCTION_CALL: syntax that
// could not be parsed by any of the three parsing strategies.
type LLMParseError struct {
	Raw string
}

func (e *LLMParseError) Error() string {
	return "llm parse error: could not extract a call from: " + e.Raw
}
