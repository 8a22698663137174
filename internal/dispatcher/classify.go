package dispatcher

import (
	"fmt"
	"strings"

	"github.com/relayforge/relayforge/internal/validator"
)

// inferCommandClass derives a validator.CommandClass from a tool's
// qualified name, matching the naming convention the baseline providers
// use (e.g. "remote_write_file", "dev_find_files").
func inferCommandClass(toolName string) validator.CommandClass {
	name := strings.ToLower(toolName)
	switch {
	case strings.Contains(name, "mkdir") || strings.Contains(name, "init_workspace"):
		return validator.ClassDirectoryCreation
	case strings.Contains(name, "list_directory") || strings.Contains(name, "list_repositories"):
		return validator.ClassDirectoryListing
	case strings.Contains(name, "write_file") || strings.Contains(name, "clone_repository"):
		return validator.ClassFileCreation
	case strings.Contains(name, "read_file") || strings.Contains(name, "get_") || strings.Contains(name, "search"):
		return validator.ClassFileReading
	case strings.Contains(name, "execute_command") || strings.Contains(name, "git_") || strings.Contains(name, "install_package"):
		return validator.ClassCommandExecution
	default:
		return validator.ClassCommandExecution
	}
}

// payloadText renders an executor's raw payload as the string C5
// classifies. Any payload other than a string or a fmt.Stringer renders
// as "", which skips classification; only string and fmt.Stringer
// payloads carry validator-relevant text in this system, since every
// baseline provider already formats its own human-readable result text.
func payloadText(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}
