// Package dev implements the development provider (C2): local git
// wrappers, filesystem search, and a package-install helper, all
// shelling out to the host toolchain via os/exec.
package dev

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// Provider exposes local git/filesystem/package tools.
type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "dev" }

func (p *Provider) Initialize(ctx context.Context) error { return nil }

func (p *Provider) Shutdown(ctx context.Context) error { return nil }

func (p *Provider) Tools() []providers.ToolBinding {
	return []providers.ToolBinding{
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_git_status", Description: "Get git repository status showing modified and untracked files plus branch name",
				Provider: "dev", Category: "git", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "repository_path", Type: toolkit.ParamString, Default: "."}},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeGitStatus,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_git_add", Description: "Stage files for git commit",
				Provider: "dev", Category: "git", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "files", Type: toolkit.ParamString, Required: true},
					{Name: "repository_path", Type: toolkit.ParamString, Default: "."},
				},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeGitAdd,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_git_commit", Description: "Create a git commit with the given message",
				Provider: "dev", Category: "git", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "message", Type: toolkit.ParamString, Required: true},
					{Name: "repository_path", Type: toolkit.ParamString, Default: "."},
				},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeGitCommit,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_git_log", Description: "Show recent git commit history, one line per commit",
				Provider: "dev", Category: "git", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "max_commits", Type: toolkit.ParamInteger, Default: 10},
					{Name: "repository_path", Type: toolkit.ParamString, Default: "."},
				},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeGitLog,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_git_diff", Description: "Show git differences for the working tree, a path, or the staging area",
				Provider: "dev", Category: "git", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "file_path", Type: toolkit.ParamString},
					{Name: "staged", Type: toolkit.ParamBoolean, Default: false},
					{Name: "repository_path", Type: toolkit.ParamString, Default: "."},
				},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeGitDiff,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_find_files", Description: "Search for files by name pattern, optionally filtered by extension",
				Provider: "dev", Category: "files", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "pattern", Type: toolkit.ParamString, Required: true},
					{Name: "directory", Type: toolkit.ParamString, Default: "."},
					{Name: "file_type", Type: toolkit.ParamString},
				},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeFindFiles,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_search_in_files", Description: "Search for text content within files under a directory",
				Provider: "dev", Category: "files", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "search_text", Type: toolkit.ParamString, Required: true},
					{Name: "directory", Type: toolkit.ParamString, Default: "."},
					{Name: "file_extension", Type: toolkit.ParamString},
					{Name: "case_sensitive", Type: toolkit.ParamBoolean, Default: false},
				},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeSearchInFiles,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name: "dev_install_package", Description: "Install a Python package via pip",
				Provider: "dev", Category: "packages", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "package_name", Type: toolkit.ParamString, Required: true},
					{Name: "version", Type: toolkit.ParamString},
				},
				Timeout: 120 * time.Second,
			},
			Executor: p.executeInstallPackage,
		},
	}
}

// run executes name with args in dir, returning combined stdout/stderr
// and the exit code. A non-zero exit surfaces as a (result, nil) pair —
// callers format the failure text themselves, matching the teacher's
// "return the error text as payload" pattern. A command that cannot be
// started at all (e.g. not found) returns exit code -1 and a non-nil
// error.
func run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	runErr := cmd.Run()
	stdout, stderr = outBuf.String(), errBuf.String()
	if runErr == nil {
		return stdout, stderr, 0, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return stdout, stderr, exitErr.ExitCode(), nil
	}
	return stdout, stderr, -1, fmt.Errorf("running %s: %w", name, runErr)
}

func (p *Provider) executeGitStatus(ctx context.Context, args map[string]any) (any, error) {
	repoPath := stringArg(args, "repository_path", ".")

	stdout, stderr, code, err := run(ctx, repoPath, "git", "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Git error: %s", stderr), nil
	}

	branchOut, _, _, _ := run(ctx, repoPath, "git", "branch", "--show-current")
	branch := strings.TrimSpace(branchOut)
	status := strings.TrimSpace(stdout)
	if status == "" {
		return fmt.Sprintf("Repository is clean (branch: %s)", branch), nil
	}
	return fmt.Sprintf("Branch: %s\n\nChanges:\n%s", branch, status), nil
}

func (p *Provider) executeGitAdd(ctx context.Context, args map[string]any) (any, error) {
	files := stringArg(args, "files", "")
	repoPath := stringArg(args, "repository_path", ".")

	_, stderr, code, err := run(ctx, repoPath, "git", append([]string{"add"}, strings.Fields(files)...)...)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Git add failed: %s", stderr), nil
	}
	return fmt.Sprintf("Successfully staged: %s", files), nil
}

func (p *Provider) executeGitCommit(ctx context.Context, args map[string]any) (any, error) {
	message := stringArg(args, "message", "")
	repoPath := stringArg(args, "repository_path", ".")

	stdout, stderr, code, err := run(ctx, repoPath, "git", "commit", "-m", message)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Git commit failed: %s", stderr), nil
	}
	return fmt.Sprintf("Commit successful: %s\n%s", message, stdout), nil
}

func (p *Provider) executeGitLog(ctx context.Context, args map[string]any) (any, error) {
	maxCommits := intArg(args, "max_commits", 10)
	repoPath := stringArg(args, "repository_path", ".")

	stdout, stderr, code, err := run(ctx, repoPath, "git", "log", "-"+strconv.Itoa(maxCommits), "--oneline")
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Git log failed: %s", stderr), nil
	}
	return strings.TrimSpace(stdout), nil
}

func (p *Provider) executeGitDiff(ctx context.Context, args map[string]any) (any, error) {
	filePath := stringArg(args, "file_path", "")
	staged, _ := args["staged"].(bool)
	repoPath := stringArg(args, "repository_path", ".")

	gitArgs := []string{"diff"}
	if staged {
		gitArgs = append(gitArgs, "--staged")
	}
	if filePath != "" {
		gitArgs = append(gitArgs, filePath)
	}

	stdout, stderr, code, err := run(ctx, repoPath, "git", gitArgs...)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Git diff failed: %s", stderr), nil
	}
	diff := strings.TrimSpace(stdout)
	if diff == "" {
		return "No differences found", nil
	}
	return diff, nil
}

func (p *Provider) executeFindFiles(ctx context.Context, args map[string]any) (any, error) {
	pattern := stringArg(args, "pattern", "")
	directory := stringArg(args, "directory", ".")
	fileType := stringArg(args, "file_type", "")

	findArgs := []string{directory, "-name", pattern}
	if fileType != "" {
		findArgs = append(findArgs, "-name", "*."+fileType)
	}

	stdout, stderr, code, err := run(ctx, "", "find", findArgs...)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Find command failed: %s", stderr), nil
	}
	files := strings.TrimSpace(stdout)
	if files == "" {
		return fmt.Sprintf("No files found matching pattern: %s", pattern), nil
	}
	return files, nil
}

func (p *Provider) executeSearchInFiles(ctx context.Context, args map[string]any) (any, error) {
	searchText := stringArg(args, "search_text", "")
	directory := stringArg(args, "directory", ".")
	fileExt := stringArg(args, "file_extension", "")
	caseSensitive, _ := args["case_sensitive"].(bool)

	grepArgs := []string{"-r"}
	if !caseSensitive {
		grepArgs = append(grepArgs, "-i")
	}
	grepArgs = append(grepArgs, "-n", searchText, directory)
	if fileExt != "" {
		grepArgs = append(grepArgs, "--include", "*."+fileExt)
	}

	stdout, _, code, err := run(ctx, "", "grep", grepArgs...)
	if err != nil {
		return nil, err
	}
	switch code {
	case 0:
		return strings.TrimSpace(stdout), nil
	case 1:
		return fmt.Sprintf("Text '%s' not found in any files", searchText), nil
	default:
		return fmt.Sprintf("Search failed: exit code %d", code), nil
	}
}

func (p *Provider) executeInstallPackage(ctx context.Context, args map[string]any) (any, error) {
	packageName := stringArg(args, "package_name", "")
	version := stringArg(args, "version", "")

	spec := packageName
	if version != "" {
		spec = packageName + "==" + version
	}

	_, stderr, code, err := run(ctx, "", "pip", "install", spec)
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return fmt.Sprintf("Package installation failed: %s", stderr), nil
	}
	return fmt.Sprintf("Successfully installed: %s", spec), nil
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

func intArg(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
