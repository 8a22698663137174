package validator

import (
	"strconv"
	"strings"
)

// Hooks carries the optional context overlay a caller may attach to a
// classification request.
type Hooks struct {
	ExpectedName     string
	ExpectedContent  string
	ForbiddenContent string
}

// Classification is the full verdict returned by Classify.
type Classification struct {
	Result         Result
	Message        string
	MatchedPattern string
	ContextSnippet string
}

// Classify evaluates output against the rule set for class, in order:
// error patterns, then warning patterns, then expected patterns,
// otherwise unknown. The context hooks, when present, can promote a
// result to ERROR regardless of pattern matches, and a parsed non-zero
// exit code is always an error.
func Classify(output string, class CommandClass, hooks *Hooks) Classification {
	r, ok := rules[class]
	if !ok {
		return Classification{Result: Unknown, Message: "unknown command type"}
	}

	for _, pat := range r.errs {
		if pat.MatchString(output) {
			return Classification{
				Result:         Error,
				Message:        "Error detected: " + pat.String(),
				MatchedPattern: pat.String(),
				ContextSnippet: extractContext(output, pat),
			}
		}
	}

	if c := classifyContext(output, hooks); c != "" {
		return Classification{Result: Error, Message: c}
	}

	var warned []string
	for _, pat := range r.warns {
		if pat.MatchString(output) {
			warned = append(warned, pat.String())
		}
	}
	if len(warned) > 0 {
		return Classification{
			Result:  Warning,
			Message: "Warnings detected: " + strings.Join(warned, ", "),
		}
	}

	var matched []string
	for _, pat := range r.expected {
		if pat.MatchString(output) {
			matched = append(matched, pat.String())
		}
	}
	if len(matched) > 0 {
		return Classification{
			Result:  Success,
			Message: "Validation successful. Expected patterns found: " + strings.Join(matched, ", "),
		}
	}

	return Classification{Result: Unknown, Message: "No clear validation patterns found"}
}

// classifyContext returns a non-empty error message if the context hooks
// or a parsed exit code promote the output to ERROR. hooks may be nil;
// the exit-code check still applies even then.
func classifyContext(output string, hooks *Hooks) string {
	lower := strings.ToLower(output)

	if hooks != nil {
		if hooks.ExpectedName != "" {
			if !strings.Contains(lower, strings.ToLower(hooks.ExpectedName)) {
				return "Expected '" + hooks.ExpectedName + "' not found in output"
			}
		}
		if hooks.ExpectedContent != "" {
			if !strings.Contains(lower, strings.ToLower(hooks.ExpectedContent)) {
				return "Expected content not found in output"
			}
		}
		if hooks.ForbiddenContent != "" {
			if strings.Contains(lower, strings.ToLower(hooks.ForbiddenContent)) {
				return "Forbidden content '" + hooks.ForbiddenContent + "' found in output"
			}
		}
	}

	if m := exitCodePattern.FindStringSubmatch(lower); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil && code != 0 {
			return "Command failed with exit code " + strconv.Itoa(code)
		}
	}

	return ""
}

// extractContext returns a ±2-line snippet around the first line
// matching pat, or the first 200 characters of output if no line
// matches (which should not happen given the caller already matched
// pat against the full text, but mirrors the original's fallback).
func extractContext(output string, pat interface {
	MatchString(string) bool
}) string {
	lines := strings.Split(output, "\n")
	const window = 2
	for i, line := range lines {
		if pat.MatchString(line) {
			start := i - window
			if start < 0 {
				start = 0
			}
			end := i + window + 1
			if end > len(lines) {
				end = len(lines)
			}
			return strings.Join(lines[start:end], "\n")
		}
	}
	if len(output) > 200 {
		return output[:200] + "..."
	}
	return output
}
