// Package remote implements the remote capability provider (C2):
// command execution, file transfer, and repository/git operations over
// the pooled SSH connection (C3).
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/relayforge/relayforge/internal/providers"
	"github.com/relayforge/relayforge/internal/sshpool"
	"github.com/relayforge/relayforge/internal/toolkit"
)

// Config configures the remote provider's default SSH target.
type Config struct {
	Host          string
	User          string
	WorkspacePath string
}

// Provider exposes execute_command/write_file/read_file/list_directory,
// repository management, and git wrapper tools.
type Provider struct {
	pool *sshpool.Pool
	cfg  Config
	repo *RepositoryManager
}

// New constructs the remote provider over an already-configured pool.
func New(pool *sshpool.Pool, cfg Config) *Provider {
	return &Provider{
		pool: pool,
		cfg:  cfg,
		repo: NewRepositoryManager(pool, cfg.Host, cfg.User, cfg.WorkspacePath),
	}
}

func (p *Provider) Name() string { return "remote" }

func (p *Provider) Initialize(ctx context.Context) error {
	_, err := p.repo.InitWorkspace(ctx)
	return err
}

func (p *Provider) Shutdown(ctx context.Context) error {
	p.pool.Close()
	return nil
}

func (p *Provider) Tools() []providers.ToolBinding {
	return append(p.coreTools(), p.repoAndGitTools()...)
}

func (p *Provider) coreTools() []providers.ToolBinding {
	return []providers.ToolBinding{
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_execute_command",
				Description: "Execute a shell command on the remote server and capture exit code, stdout, and stderr",
				Provider:    "remote",
				Category:    "execution",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "command", Type: toolkit.ParamString, Required: true},
					{Name: "input_data", Type: toolkit.ParamString, Description: "Optional stdin for interactive commands"},
				},
				Timeout:        60 * time.Second,
				MaxRetries:     2,
				RetryBaseDelay: time.Second,
			},
			Executor: p.executeCommand,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_write_file",
				Description: "Write a file to the remote server via SFTP",
				Provider:    "remote",
				Category:    "files",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "filename", Type: toolkit.ParamString, Required: true},
					{Name: "content", Type: toolkit.ParamString, Required: true},
				},
				Timeout:        30 * time.Second,
				MaxRetries:     2,
				RetryBaseDelay: time.Second,
			},
			Executor: p.executeWriteFile,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_read_file",
				Description: "Read a file from the remote server via SFTP",
				Provider:    "remote",
				Category:    "files",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "filename", Type: toolkit.ParamString, Required: true},
				},
				Timeout:        30 * time.Second,
				MaxRetries:     2,
				RetryBaseDelay: time.Second,
			},
			Executor: p.executeReadFile,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_list_directory",
				Description: "List directory contents on the remote server",
				Provider:    "remote",
				Category:    "files",
				Version:     "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "path", Type: toolkit.ParamString, Default: "."},
				},
				Timeout:        15 * time.Second,
				MaxRetries:     2,
				RetryBaseDelay: time.Second,
			},
			Executor: p.executeListDirectory,
		},
	}
}

func (p *Provider) repoAndGitTools() []providers.ToolBinding {
	simple := func(name, desc string, timeout time.Duration, exec registryExecutor) providers.ToolBinding {
		return providers.ToolBinding{
			Descriptor: toolkit.ToolDescriptor{
				Name: name, Description: desc, Provider: "remote", Category: "repository",
				Version: "1.0.0", Timeout: timeout, MaxRetries: 2, RetryBaseDelay: time.Second,
			},
			Executor: exec,
		}
	}

	return []providers.ToolBinding{
		simple("remote_init_workspace", "Initialize the remote workspace for repository management", 30*time.Second,
			func(ctx context.Context, args map[string]any) (any, error) { return p.repo.InitWorkspace(ctx) }),
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_clone_repository",
				Description: "Clone a repository into the remote workspace",
				Provider:    "remote", Category: "repository", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "repo_url", Type: toolkit.ParamString, Required: true},
					{Name: "repo_name", Type: toolkit.ParamString, Required: true},
					{Name: "auth_token", Type: toolkit.ParamString},
				},
				Timeout: 120 * time.Second, MaxRetries: 1, RetryBaseDelay: time.Second,
			},
			Executor: p.executeCloneRepository,
		},
		simple("remote_list_repositories", "List all repositories in the remote workspace", 15*time.Second,
			func(ctx context.Context, args map[string]any) (any, error) { return p.repo.ListRepositories(ctx) }),
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_switch_repository",
				Description: "Switch to a specific repository context for subsequent git tools",
				Provider:    "remote", Category: "repository", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "repo_name", Type: toolkit.ParamString, Required: true}},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeSwitchRepository,
		},
		simple("remote_get_current_repository", "Get the current repository context", 5*time.Second,
			func(ctx context.Context, args map[string]any) (any, error) { return p.repo.CurrentRepository(), nil }),
		simple("remote_git_status", "Get git status of the current repository", 15*time.Second,
			func(ctx context.Context, args map[string]any) (any, error) { return p.repo.GitOperation(ctx, "status") }),
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_git_log",
				Description: "Get git log of the current repository",
				Provider:    "remote", Category: "git", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "n", Type: toolkit.ParamInteger, Default: 10}},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeGitLog,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_git_diff",
				Description: "Get git diff of the current repository",
				Provider:    "remote", Category: "git", Version: "1.0.0",
				Params: []toolkit.ParamSpec{
					{Name: "commit1", Type: toolkit.ParamString},
					{Name: "commit2", Type: toolkit.ParamString},
				},
				Timeout: 15 * time.Second,
			},
			Executor: p.executeGitDiff,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_git_add",
				Description: "Add files to the git staging area",
				Provider:    "remote", Category: "git", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "files", Type: toolkit.ParamString, Default: "."}},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeGitAdd,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_git_commit",
				Description: "Commit staged changes",
				Provider:    "remote", Category: "git", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "message", Type: toolkit.ParamString, Required: true}},
				Timeout: 30 * time.Second,
			},
			Executor: p.executeGitCommit,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_git_push",
				Description: "Push committed changes to the remote",
				Provider:    "remote", Category: "git", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "branch", Type: toolkit.ParamString, Default: "main"}},
				Timeout: 60 * time.Second,
			},
			Executor: p.executeGitPush,
		},
		{
			Descriptor: toolkit.ToolDescriptor{
				Name:        "remote_git_pull",
				Description: "Pull changes from the remote",
				Provider:    "remote", Category: "git", Version: "1.0.0",
				Params:  []toolkit.ParamSpec{{Name: "branch", Type: toolkit.ParamString, Default: "main"}},
				Timeout: 60 * time.Second,
			},
			Executor: p.executeGitPull,
		},
	}
}

type registryExecutor = func(ctx context.Context, args map[string]any) (any, error)

func (p *Provider) executeCommand(ctx context.Context, args map[string]any) (any, error) {
	command, _ := args["command"].(string)
	inputData, _ := args["input_data"].(string)
	result, err := runCommand(ctx, p.pool, p.cfg.Host, p.cfg.User, command, inputData)
	if err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Exit Code: %d\n", result.ExitCode)
	if result.Stdout != "" {
		msg += fmt.Sprintf("STDOUT:\n%s", result.Stdout)
	}
	if result.Stderr != "" {
		msg += fmt.Sprintf("STDERR:\n%s", result.Stderr)
	}
	if result.Stdout == "" && result.Stderr == "" {
		msg += "No output"
	}
	return msg, nil
}

func (p *Provider) executeWriteFile(ctx context.Context, args map[string]any) (any, error) {
	filename, _ := args["filename"].(string)
	content, _ := args["content"].(string)
	n, err := writeFile(ctx, p.pool, p.cfg.Host, p.cfg.User, filename, content)
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("File '%s' written successfully (%d bytes)", filename, n), nil
}

func (p *Provider) executeReadFile(ctx context.Context, args map[string]any) (any, error) {
	filename, _ := args["filename"].(string)
	return readFile(ctx, p.pool, p.cfg.Host, p.cfg.User, filename)
}

func (p *Provider) executeListDirectory(ctx context.Context, args map[string]any) (any, error) {
	dir, _ := args["path"].(string)
	return listDirectory(ctx, p.pool, p.cfg.Host, p.cfg.User, dir)
}

func (p *Provider) executeCloneRepository(ctx context.Context, args map[string]any) (any, error) {
	repoURL, _ := args["repo_url"].(string)
	repoName, _ := args["repo_name"].(string)
	authToken, _ := args["auth_token"].(string)
	return p.repo.CloneRepository(ctx, repoURL, repoName, authToken)
}

func (p *Provider) executeSwitchRepository(ctx context.Context, args map[string]any) (any, error) {
	repoName, _ := args["repo_name"].(string)
	return p.repo.SwitchRepository(ctx, repoName)
}

func (p *Provider) executeGitLog(ctx context.Context, args map[string]any) (any, error) {
	n := 10
	if v, ok := args["n"].(float64); ok {
		n = int(v)
	}
	return p.repo.GitOperation(ctx, "log", fmt.Sprintf("-n %d", n))
}

func (p *Provider) executeGitDiff(ctx context.Context, args map[string]any) (any, error) {
	c1, _ := args["commit1"].(string)
	c2, _ := args["commit2"].(string)
	if c1 != "" && c2 != "" {
		return p.repo.GitOperation(ctx, "diff", c1, c2)
	}
	return p.repo.GitOperation(ctx, "diff")
}

func (p *Provider) executeGitAdd(ctx context.Context, args map[string]any) (any, error) {
	files, ok := args["files"].(string)
	if !ok || files == "" {
		files = "."
	}
	return p.repo.GitOperation(ctx, "add", files)
}

func (p *Provider) executeGitCommit(ctx context.Context, args map[string]any) (any, error) {
	message, _ := args["message"].(string)
	return p.repo.GitOperation(ctx, "commit", "-m", fmt.Sprintf("%q", message))
}

func (p *Provider) executeGitPush(ctx context.Context, args map[string]any) (any, error) {
	branch, ok := args["branch"].(string)
	if !ok || branch == "" {
		branch = "main"
	}
	return p.repo.GitOperation(ctx, "push", "origin", branch)
}

func (p *Provider) executeGitPull(ctx context.Context, args map[string]any) (any, error) {
	branch, ok := args["branch"].(string)
	if !ok || branch == "" {
		branch = "main"
	}
	return p.repo.GitOperation(ctx, "pull", "origin", branch)
}
