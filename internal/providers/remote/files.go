package remote

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/pkg/sftp"
	"github.com/relayforge/relayforge/internal/sshpool"
)

// writeFile validates filename, opens an SFTP session, creates any
// missing parent directory, and writes content, returning the byte
// count for the confirmation message.
func writeFile(ctx context.Context, pool *sshpool.Pool, host, user, filename, content string) (int, error) {
	filename, err := validateFilename(filename)
	if err != nil {
		return 0, err
	}

	lease, err := pool.Get(ctx, host, user)
	if err != nil {
		return 0, err
	}
	defer lease.Release()

	client, err := sftp.NewClient(lease.Client)
	if err != nil {
		return 0, fmt.Errorf("opening sftp session: %w", err)
	}
	defer client.Close()

	if dir := path.Dir(filename); dir != "." {
		_ = client.MkdirAll(dir)
	}

	f, err := client.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("creating remote file: %w", err)
	}
	defer f.Close()

	n, err := f.Write([]byte(content))
	if err != nil {
		return 0, fmt.Errorf("writing remote file: %w", err)
	}
	return n, nil
}

// readFile opens filename over SFTP and returns its full contents.
func readFile(ctx context.Context, pool *sshpool.Pool, host, user, filename string) (string, error) {
	if err := rejectTraversal(filename); err != nil {
		return "", err
	}

	lease, err := pool.Get(ctx, host, user)
	if err != nil {
		return "", err
	}
	defer lease.Release()

	client, err := sftp.NewClient(lease.Client)
	if err != nil {
		return "", fmt.Errorf("opening sftp session: %w", err)
	}
	defer client.Close()

	f, err := client.Open(filename)
	if err != nil {
		return "", fmt.Errorf("file '%s' not found: %w", filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("reading remote file: %w", err)
	}
	return string(data), nil
}

// listDirectory runs `ls -la path` over a command session, matching the
// teacher's remote provider rather than an SFTP ReadDir walk, since the
// spec's output format is the raw ls listing.
func listDirectory(ctx context.Context, pool *sshpool.Pool, host, user, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := rejectTraversal(dir); err != nil {
		return "", err
	}
	result, err := runCommand(ctx, pool, host, user, fmt.Sprintf("ls -la %s", dir), "")
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("directory listing failed: %s", result.Stderr)
	}
	return result.Stdout, nil
}
