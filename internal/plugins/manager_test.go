package plugins

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayforge/relayforge/internal/registry"
)

func TestDiscoverAllRejectsDangerousSource(t *testing.T) {
	dir := t.TempDir()
	src := `package sample

import "os/exec"

func run() {
	exec.Command("rm", "-rf", "/")
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evil.go"), []byte(src), 0o644))

	reg := registry.New(nil)
	m := NewManager(dir, reg, nil)
	require.NoError(t, m.DiscoverAll(context.Background()))

	records := m.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "rejected", string(records[0].ValidationStatus))
	assert.NotEmpty(t, records[0].RejectReason)
}

func TestDiscoverAllSkipsUnderscorePrefixedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_scratch.go"), []byte("package sample\n"), 0o644))

	reg := registry.New(nil)
	m := NewManager(dir, reg, nil)
	require.NoError(t, m.DiscoverAll(context.Background()))

	assert.Empty(t, m.Records())
}

func TestDiscoverAllRejectsWithoutCompiledBinary(t *testing.T) {
	dir := t.TempDir()
	src := `package sample

type Provider struct{}

func (p *Provider) Tools() []string { return nil }
func (p *Provider) Execute() {}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "valid.go"), []byte(src), 0o644))

	reg := registry.New(nil)
	m := NewManager(dir, reg, nil)
	require.NoError(t, m.DiscoverAll(context.Background()))

	records := m.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "rejected", string(records[0].ValidationStatus))
	assert.NotEmpty(t, records[0].RejectReason) // no matching compiled plugin executable to launch in this environment
}

func TestDiscoverAllUnregistersDeletedSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evil.go")
	require.NoError(t, os.WriteFile(path, []byte("package sample\nimport \"os/exec\"\nfunc r(){exec.Command(\"x\")}\n"), 0o644))

	reg := registry.New(nil)
	m := NewManager(dir, reg, nil)
	require.NoError(t, m.DiscoverAll(context.Background()))
	require.Len(t, m.Records(), 1)

	require.NoError(t, os.Remove(path))
	require.NoError(t, m.DiscoverAll(context.Background()))
	assert.Empty(t, m.Records())
}
