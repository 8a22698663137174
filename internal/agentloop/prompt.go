package agentloop

import (
	"fmt"
	"strings"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// buildSystemPrompt renders the tool catalog and the FUNCTION_CALL
// calling convention the model must follow, grounded verbatim in the
// original's _build_reliable_system_prompt: one bullet per tool with
// its typed parameter list, followed by the fixed rules-and-examples
// block.
func buildSystemPrompt(tools []toolkit.ToolDescriptor) string {
	var descriptions []string
	for _, t := range tools {
		descriptions = append(descriptions, describeTool(t))
	}
	toolsText := strings.Join(descriptions, "\n")

	return fmt.Sprintf(`You are a highly reliable AI assistant that MUST use the available tools to answer questions.
CRITICAL: You must be extremely precise with tool usage and parameter formatting.

Available tools:
%s

CRITICAL RULES FOR RELIABLE TOOL USAGE:
1. ALWAYS use tools instead of giving instructions or educational responses
2. Use EXACT tool names as specified above (case-sensitive)
3. Format parameters EXACTLY as shown in the examples
4. For string parameters: use quotes: parameter="value"
5. For array parameters: use format: parameter=["item1", "item2"]
6. For boolean parameters: use true/false (no quotes)
7. For numeric parameters: use numbers only (no quotes)
8. NEVER skip required parameters
9. If unsure about a parameter, use a reasonable default or ask for clarification

To use a tool, respond with a function call in this EXACT format:
FUNCTION_CALL: tool_name(parameter1="value1", parameter2="value2")

EXACT EXAMPLES:
FUNCTION_CALL: calculate(expression="5 + 3")
FUNCTION_CALL: create_todos(todos=["Deploy web app", "Test deployment", "Monitor performance"])
FUNCTION_CALL: execute_command(command="uname -a")
FUNCTION_CALL: list_directory(path="/home/user")

You can make multiple function calls by using multiple FUNCTION_CALL lines.
After executing tools, I will provide you with the results, and you should give a final comprehensive answer based on the actual tool results.

IMPORTANT: If a tool fails, check the error message and try again with corrected parameters.`, toolsText)
}

func describeTool(t toolkit.ToolDescriptor) string {
	desc := fmt.Sprintf("- %s: %s", t.Name, t.Description)
	if len(t.Params) == 0 {
		return desc
	}
	var params []string
	for _, p := range t.Params {
		reqMarker := " (optional)"
		if p.Required {
			reqMarker = " (REQUIRED)"
		}
		typeGuidance := ""
		switch p.Type {
		case toolkit.ParamArray:
			typeGuidance = ` - Use format: ["item1", "item2"]`
		case toolkit.ParamBoolean:
			typeGuidance = " - Use: true/false"
		case toolkit.ParamInteger:
			typeGuidance = " - Use numeric value only"
		}
		params = append(params, fmt.Sprintf("    %s (%s)%s: %s%s", p.Name, p.Type, reqMarker, p.Description, typeGuidance))
	}
	return desc + "\n  Parameters:\n" + strings.Join(params, "\n")
}
