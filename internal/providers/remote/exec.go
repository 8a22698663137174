package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/relayforge/relayforge/internal/sshpool"
	"golang.org/x/crypto/ssh"
)

// commandResult is the parsed outcome of a remote command run.
type commandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// runCommand leases a connection for (host,user), runs command through a
// fresh SSH session, and returns captured stdout/stderr/exit code.
// inputData, when non-empty, is delivered over the session's stdin pipe
// rather than interpolated into the command string, so the payload can
// never widen the shell's attack surface.
func runCommand(ctx context.Context, pool *sshpool.Pool, host, user, command, inputData string) (commandResult, error) {
	lease, err := pool.Get(ctx, host, user)
	if err != nil {
		return commandResult{}, err
	}
	defer lease.Release()

	session, err := lease.Client.NewSession()
	if err != nil {
		return commandResult{}, fmt.Errorf("opening ssh session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr
	if inputData != "" {
		session.Stdin = strings.NewReader(inputData + "\n")
	}

	runErr := session.Run(command)
	result := commandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *ssh.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitStatus()
	default:
		return result, fmt.Errorf("command execution failed: %w", runErr)
	}
	return result, nil
}
