// Package validator implements the output classifier (C5): it tags raw
// tool output text as success/warning/error/unknown against per-command-
// class rule sets, which are kept here as plain data rather than inlined
// in control flow so the tables can be enumerated by tests.
package validator

import "regexp"

// CommandClass names one of the five recognized output shapes.
type CommandClass string

const (
	ClassDirectoryCreation CommandClass = "directory_creation"
	ClassDirectoryListing  CommandClass = "directory_listing"
	ClassFileCreation      CommandClass = "file_creation"
	ClassFileReading       CommandClass = "file_reading"
	ClassCommandExecution  CommandClass = "command_execution"
)

// Result is the classification verdict.
type Result string

const (
	Success Result = "success"
	Error   Result = "error"
	Warning Result = "warning"
	Unknown Result = "unknown"
)

type rule struct {
	expected []*regexp.Regexp
	errs     []*regexp.Regexp
	warns    []*regexp.Regexp
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

var rules map[CommandClass]rule

func init() {
	rules = map[CommandClass]rule{
		ClassDirectoryCreation: {
			expected: compileAll([]string{
				`created`, `mkdir`, `directory`, `success`, `exit code: 0`,
			}),
			errs: compileAll([]string{
				`error`, `failed`, `permission denied`, `already exists`,
				`no such file`, `cannot create`, `exit code: [1-9]`,
			}),
			warns: compileAll([]string{
				`warning`, `already exists`, `directory exists`,
			}),
		},
		ClassDirectoryListing: {
			expected: compileAll([]string{
				`ls`, `directory`, `contents`, `files`, `directories`,
				`total`, `drwx`, `-rwx`, `\.`, `\.\.`, `exit code: 0`,
			}),
			errs: compileAll([]string{
				`error`, `failed`, `no such file`, `permission denied`,
				`cannot access`, `exit code: [1-9]`,
			}),
			warns: compileAll([]string{
				`warning`, `cannot read`, `access denied`,
			}),
		},
		ClassFileCreation: {
			expected: compileAll([]string{
				`created`, `touch`, `file`, `success`, `exit code: 0`,
				`write`, `saved`,
			}),
			errs: compileAll([]string{
				`error`, `failed`, `permission denied`, `cannot create`,
				`no space left`, `exit code: [1-9]`,
			}),
			warns: compileAll([]string{
				`warning`, `already exists`, `overwrite`,
			}),
		},
		ClassCommandExecution: {
			expected: compileAll([]string{
				`executed`, `success`, `exit code: 0`, `completed`,
			}),
			errs: compileAll([]string{
				`error`, `failed`, `command not found`, `permission denied`,
				`exit code: [1-9]`, `cannot execute`,
			}),
			warns: compileAll([]string{
				`warning`, `deprecated`, `obsolete`,
			}),
		},
		ClassFileReading: {
			expected: compileAll([]string{
				`read`, `content`, `file`, `success`, `exit code: 0`,
			}),
			errs: compileAll([]string{
				`error`, `failed`, `no such file`, `permission denied`,
				`cannot read`, `exit code: [1-9]`,
			}),
			warns: compileAll([]string{
				`warning`, `empty file`, `binary file`,
			}),
		},
	}
}

var exitCodePattern = regexp.MustCompile(`(?i)exit code: (\d+)`)
