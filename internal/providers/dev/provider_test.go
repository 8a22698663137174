package dev

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArgDefaultsWhenMissingOrEmpty(t *testing.T) {
	assert.Equal(t, ".", stringArg(map[string]any{}, "directory", "."))
	assert.Equal(t, ".", stringArg(map[string]any{"directory": ""}, "directory", "."))
	assert.Equal(t, "src", stringArg(map[string]any{"directory": "src"}, "directory", "."))
}

func TestIntArgAcceptsFloat64FromJSON(t *testing.T) {
	assert.Equal(t, 5, intArg(map[string]any{"max_commits": float64(5)}, "max_commits", 10))
	assert.Equal(t, 10, intArg(map[string]any{}, "max_commits", 10))
}

func TestGitStatusOnCleanRepo(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "git", "init")
	mustRun(t, dir, "git", "config", "user.email", "test@example.com")
	mustRun(t, dir, "git", "config", "user.name", "test")

	p := New()
	result, err := p.executeGitStatus(context.Background(), map[string]any{"repository_path": dir})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "Repository is clean")
}

func TestGitAddAndCommit(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "git", "init")
	mustRun(t, dir, "git", "config", "user.email", "test@example.com")
	mustRun(t, dir, "git", "config", "user.name", "test")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	p := New()
	ctx := context.Background()
	addResult, err := p.executeGitAdd(ctx, map[string]any{"files": ".", "repository_path": dir})
	require.NoError(t, err)
	assert.Contains(t, addResult.(string), "Successfully staged")

	commitResult, err := p.executeGitCommit(ctx, map[string]any{"message": "initial", "repository_path": dir})
	require.NoError(t, err)
	assert.Contains(t, commitResult.(string), "Commit successful: initial")
}

func TestFindFilesNoMatches(t *testing.T) {
	dir := t.TempDir()
	p := New()
	result, err := p.executeFindFiles(context.Background(), map[string]any{
		"pattern": "nonexistent-*.go", "directory": dir,
	})
	require.NoError(t, err)
	assert.Contains(t, result.(string), "No files found matching pattern")
}

func mustRun(t *testing.T, dir, name string, args ...string) {
	t.Helper()
	_, stderr, code, err := run(context.Background(), dir, name, args...)
	require.NoError(t, err)
	require.Equal(t, 0, code, "stderr: %s", stderr)
}
