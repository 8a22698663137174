package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, []string{"examples/plugins", "plugins"}, cfg.PluginDiscoveryPaths)
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"max_retries": 7, "log_level": "debug"}`), 0o600))

	cfg, err := Load(jsonPath, "")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestDotEnvOverridesJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"max_retries": 7}`), 0o600))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("RELAYFORGE_MAX_RETRIES=9\n"), 0o600))

	cfg, err := Load(jsonPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxRetries)
}

func TestProcessEnvOverridesDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("RELAYFORGE_MAX_RETRIES=9\n"), 0o600))
	t.Setenv("RELAYFORGE_MAX_RETRIES", "11")

	cfg, err := Load("", envPath)
	require.NoError(t, err)
	assert.Equal(t, 11, cfg.MaxRetries)
}

func TestRedactedNeverEchoesSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.APIKey = "super-secret"
	cfg.SSHKeyPath = "/home/user/.ssh/id_ed25519"

	snap := cfg.Redacted()
	assert.True(t, snap.APIKeySet)
	assert.True(t, snap.SSHKeySet)
}
