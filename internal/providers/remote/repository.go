package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/relayforge/relayforge/internal/sshpool"
)

// RepositoryManager tracks repositories cloned into the remote
// workspace and the one currently selected for git wrapper tools.
type RepositoryManager struct {
	pool          *sshpool.Pool
	host, user    string
	workspacePath string

	mu          sync.Mutex
	currentRepo string
	repoPaths   map[string]string
}

// NewRepositoryManager constructs a manager bound to pool for
// (host,user), rooted at the given workspace path.
func NewRepositoryManager(pool *sshpool.Pool, host, user, workspacePath string) *RepositoryManager {
	if workspacePath == "" {
		workspacePath = "/home/relayforge/workspace"
	}
	return &RepositoryManager{
		pool:          pool,
		host:          host,
		user:          user,
		workspacePath: workspacePath,
		repoPaths:     make(map[string]string),
	}
}

func (m *RepositoryManager) reposPath() string { return m.workspacePath + "/repositories" }

// InitWorkspace creates the workspace and repositories directories.
func (m *RepositoryManager) InitWorkspace(ctx context.Context) (string, error) {
	cmd := fmt.Sprintf("mkdir -p %s && chmod 755 %s && mkdir -p %s",
		m.workspacePath, m.workspacePath, m.reposPath())
	result, err := runCommand(ctx, m.pool, m.host, m.user, cmd, "")
	if err != nil {
		return "", fmt.Errorf("failed to initialize workspace: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("failed to initialize workspace: %s", result.Stderr)
	}
	return fmt.Sprintf("Workspace initialized at %s", m.workspacePath), nil
}

// CloneRepository clones repoURL into repositories/repoName, injecting
// authToken into an HTTPS URL when supplied, matching the original's
// token-in-URL HTTPS auth convention.
func (m *RepositoryManager) CloneRepository(ctx context.Context, repoURL, repoName, authToken string) (string, error) {
	repoPath := fmt.Sprintf("%s/%s", m.reposPath(), repoName)

	check, err := runCommand(ctx, m.pool, m.host, m.user,
		fmt.Sprintf("test -d %s && echo exists", repoPath), "")
	if err != nil {
		return "", fmt.Errorf("repository cloning failed: %w", err)
	}
	if strings.TrimSpace(check.Stdout) == "exists" {
		return fmt.Sprintf("Repository '%s' already exists at %s", repoName, repoPath), nil
	}

	cloneURL := repoURL
	if authToken != "" && strings.HasPrefix(repoURL, "https://") {
		cloneURL = strings.Replace(repoURL, "https://", fmt.Sprintf("https://%s@", authToken), 1)
	}

	cloneCmd := fmt.Sprintf("cd %s && git clone %s %s", m.reposPath(), cloneURL, repoName)
	result, err := runCommand(ctx, m.pool, m.host, m.user, cloneCmd, "")
	if err != nil {
		return "", fmt.Errorf("repository cloning failed: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("failed to clone repository: %s", result.Stderr)
	}

	m.mu.Lock()
	m.repoPaths[repoName] = repoPath
	m.mu.Unlock()
	return fmt.Sprintf("Repository '%s' cloned successfully to %s", repoName, repoPath), nil
}

// ListRepositories lists the contents of the repositories directory.
func (m *RepositoryManager) ListRepositories(ctx context.Context) (string, error) {
	result, err := runCommand(ctx, m.pool, m.host, m.user, fmt.Sprintf("ls -la %s", m.reposPath()), "")
	if err != nil {
		return "", fmt.Errorf("failed to list repositories: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Sprintf("No repositories found in %s", m.reposPath()), nil
	}
	return fmt.Sprintf("Repositories in %s:\n%s", m.reposPath(), result.Stdout), nil
}

// SwitchRepository selects repoName as the current git context,
// verifying it exists and is a git repository.
func (m *RepositoryManager) SwitchRepository(ctx context.Context, repoName string) (string, error) {
	repoPath := fmt.Sprintf("%s/%s", m.reposPath(), repoName)

	check, err := runCommand(ctx, m.pool, m.host, m.user,
		fmt.Sprintf("test -d %s && echo exists", repoPath), "")
	if err != nil {
		return "", fmt.Errorf("failed to switch repository: %w", err)
	}
	if strings.TrimSpace(check.Stdout) != "exists" {
		return "", fmt.Errorf("repository '%s' not found", repoName)
	}

	status, err := runCommand(ctx, m.pool, m.host, m.user,
		fmt.Sprintf("cd %s && git status", repoPath), "")
	if err != nil {
		return "", fmt.Errorf("failed to switch repository: %w", err)
	}
	if status.ExitCode != 0 {
		return "", fmt.Errorf("'%s' is not a valid git repository", repoName)
	}

	m.mu.Lock()
	m.currentRepo = repoName
	m.repoPaths[repoName] = repoPath
	m.mu.Unlock()
	return fmt.Sprintf("Switched to repository '%s' at %s", repoName, repoPath), nil
}

// CurrentRepository reports the selected repository, or its absence.
func (m *RepositoryManager) CurrentRepository() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentRepo == "" {
		return "No repository currently selected"
	}
	return fmt.Sprintf("Current repository: %s at %s", m.currentRepo, m.repoPaths[m.currentRepo])
}

// GitOperation runs `git <operation> <args...>` in the current
// repository, rendering exit code, stdout, and stderr into one message.
func (m *RepositoryManager) GitOperation(ctx context.Context, operation string, args ...string) (string, error) {
	m.mu.Lock()
	repoName := m.currentRepo
	repoPath := m.repoPaths[repoName]
	m.mu.Unlock()
	if repoName == "" {
		return "", fmt.Errorf("no repository selected, use switch_repository first")
	}

	cmd := fmt.Sprintf("cd %s && git %s", repoPath, operation)
	if len(args) > 0 {
		cmd += " " + strings.Join(args, " ")
	}

	result, err := runCommand(ctx, m.pool, m.host, m.user, cmd, "")
	if err != nil {
		return "", fmt.Errorf("git operation failed: %w", err)
	}

	msg := fmt.Sprintf("Git %s in %s (exit code: %d)\n", operation, repoName, result.ExitCode)
	if result.Stdout != "" {
		msg += fmt.Sprintf("STDOUT:\n%s", result.Stdout)
	}
	if result.Stderr != "" {
		msg += fmt.Sprintf("STDERR:\n%s", result.Stderr)
	}
	return msg, nil
}
