// Package callparse extracts FUNCTION_CALL: tool_name(key="value", ...)
// invocations out of a model's free-text response. It is a direct
// translation of the original agent's _extract_function_calls_reliable /
// _parse_parameters_reliable cascade: a handful of regexes find the call
// boundaries, and three independent parameter-parsing strategies are
// tried in order, the first to produce a non-empty result winning.
package callparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Call is one parsed function-call invocation.
type Call struct {
	Name   string
	Params map[string]any
}

// Go's RE2 engine has no lookahead, unlike the original's Python regex
// (which uses one to find the next "FUNCTION_CALL:" boundary without
// consuming it). Matching up to the first ")" (the first ")]" for the
// bracketed form) is the RE2 equivalent: it assumes, as the original
// effectively does for its common case, that a call's parameter list
// contains no ")", whether nested or inside a quoted value.
var callPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)FUNCTION_CALL:\s*(\w+)\(([^)]*)\)`),
	regexp.MustCompile(`(?is)\[FUNCTION_CALL:\s*(\w+)\(([^\]]*?)\)\]`),
	regexp.MustCompile(`(?is)function_call:\s*(\w+)\(([^)]*)\)`),
}

// Extract scans text for every FUNCTION_CALL-style invocation, in order
// of appearance, trying each pattern in callPatterns and each parameter
// strategy in turn. A call whose parameter string cannot be parsed by
// any strategy is dropped rather than aborting the whole extraction.
func Extract(text string) []Call {
	var calls []Call
	seen := map[string]bool{}
	for _, pattern := range callPatterns {
		matches := pattern.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			name, paramsStr := m[1], m[2]
			key := name + "(" + paramsStr + ")"
			if seen[key] {
				continue
			}
			seen[key] = true
			params, ok := parseParams(paramsStr)
			if !ok {
				continue
			}
			calls = append(calls, Call{Name: name, Params: params})
		}
	}
	return calls
}

// parseParams runs the three-strategy cascade and returns the first
// non-empty result. An empty (but syntactically valid, e.g. "") params
// string yields an empty, successful map.
func parseParams(paramsStr string) (map[string]any, bool) {
	if strings.TrimSpace(paramsStr) == "" {
		return map[string]any{}, true
	}
	if params, ok := parseExpression(paramsStr); ok && len(params) > 0 {
		return params, true
	}
	if params := parseEnhancedRegex(paramsStr); len(params) > 0 {
		return params, true
	}
	if params := parseSimple(paramsStr); len(params) > 0 {
		return params, true
	}
	return nil, false
}

// --- Strategy 1: Go expression-like tokenizer ---------------------------

// parseExpression tokenizes a comma-separated `key=value` argument list
// where each value is a Go/JSON-ish literal: a quoted string, a bare
// number, true/false, or a bracketed array of such literals. It is the
// Go analogue of the original's ast.literal_eval pass: stricter than the
// regex fallback, so it runs first and is trusted over it.
func parseExpression(s string) (map[string]any, bool) {
	p := &exprParser{input: s}
	params := make(map[string]any)
	for {
		p.skipSpace()
		if p.atEnd() {
			break
		}
		name, ok := p.readIdent()
		if !ok {
			return nil, false
		}
		p.skipSpace()
		if !p.consume('=') {
			return nil, false
		}
		p.skipSpace()
		value, ok := p.readValue()
		if !ok {
			return nil, false
		}
		params[name] = value
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		break
	}
	p.skipSpace()
	if !p.atEnd() {
		return nil, false
	}
	return params, true
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) atEnd() bool { return p.pos >= len(p.input) }

func (p *exprParser) skipSpace() {
	for !p.atEnd() && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n') {
		p.pos++
	}
}

func (p *exprParser) consume(c byte) bool {
	if !p.atEnd() && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) readIdent() (string, bool) {
	start := p.pos
	for !p.atEnd() {
		c := p.input[p.pos]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (p.pos > start && c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", false
	}
	return p.input[start:p.pos], true
}

func (p *exprParser) readValue() (any, bool) {
	if p.atEnd() {
		return nil, false
	}
	switch c := p.input[p.pos]; {
	case c == '"' || c == '\'':
		return p.readString(c)
	case c == '[':
		return p.readArray()
	default:
		return p.readScalar()
	}
}

func (p *exprParser) readString(quote byte) (string, bool) {
	p.pos++ // opening quote
	var sb strings.Builder
	for !p.atEnd() {
		c := p.input[p.pos]
		if c == '\\' && p.pos+1 < len(p.input) {
			sb.WriteByte(p.input[p.pos+1])
			p.pos += 2
			continue
		}
		if c == quote {
			p.pos++
			return sb.String(), true
		}
		sb.WriteByte(c)
		p.pos++
	}
	return "", false
}

func (p *exprParser) readArray() ([]any, bool) {
	p.pos++ // '['
	var items []any
	p.skipSpace()
	if p.consume(']') {
		return items, true
	}
	for {
		p.skipSpace()
		v, ok := p.readValue()
		if !ok {
			return nil, false
		}
		items = append(items, v)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			return items, true
		}
		return nil, false
	}
}

func (p *exprParser) readScalar() (any, bool) {
	start := p.pos
	for !p.atEnd() {
		c := p.input[p.pos]
		if c == ',' || c == ')' || c == ']' || c == ' ' || c == '\t' || c == '\n' {
			break
		}
		p.pos++
	}
	tok := p.input[start:p.pos]
	if tok == "" {
		return nil, false
	}
	switch strings.ToLower(tok) {
	case "true":
		return true, true
	case "false":
		return false, true
	case "none", "null":
		return nil, true
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return int(i), true
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, true
	}
	return tok, true
}

// --- Strategy 2: enhanced regex extraction -------------------------------

var (
	arrayParamPattern  = regexp.MustCompile(`(\w+)=\[([^\]]*)\]`)
	arrayItemPattern   = regexp.MustCompile(`["']([^"']*)["']`)
	stringParamPattern = regexp.MustCompile(`(\w+)=(["'])([^"']*)["']`)
	boolParamPattern   = regexp.MustCompile(`(?i)(\w+)=(true|false)`)
	numParamPattern    = regexp.MustCompile(`(\w+)=(\d+(?:\.\d+)?)`)
)

// parseEnhancedRegex applies the same four independent regex passes the
// original's _parse_params_with_enhanced_regex does, in the same order
// (array, string, boolean, number), never overwriting a param a prior
// pass already captured.
func parseEnhancedRegex(s string) map[string]any {
	params := make(map[string]any)

	for _, m := range arrayParamPattern.FindAllStringSubmatch(s, -1) {
		name, content := m[1], m[2]
		var items []any
		for _, item := range arrayItemPattern.FindAllStringSubmatch(content, -1) {
			items = append(items, item[1])
		}
		params[name] = items
	}
	for _, m := range stringParamPattern.FindAllStringSubmatch(s, -1) {
		name, value := m[1], m[3]
		if _, ok := params[name]; !ok {
			params[name] = value
		}
	}
	for _, m := range boolParamPattern.FindAllStringSubmatch(s, -1) {
		name, value := m[1], m[2]
		if _, ok := params[name]; !ok {
			params[name] = strings.EqualFold(value, "true")
		}
	}
	for _, m := range numParamPattern.FindAllStringSubmatch(s, -1) {
		name, value := m[1], m[2]
		if _, ok := params[name]; ok {
			continue
		}
		if strings.Contains(value, ".") {
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				params[name] = f
			}
			continue
		}
		if i, err := strconv.Atoi(value); err == nil {
			params[name] = i
		}
	}
	return params
}

// --- Strategy 3: naive comma-split key=value fallback --------------------

// parseSimple is the last-resort pass: split on every comma and
// each "key=value" pair, stripping surrounding quotes from the value.
// It has no notion of arrays and will mis-split a comma inside one, but
// it reliably recovers a single string parameter when the two stricter
// strategies above both fail.
func parseSimple(s string) map[string]any {
	params := make(map[string]any)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		idx := strings.Index(part, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(part[:idx])
		value := strings.TrimSpace(part[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		params[key] = value
	}
	return params
}
