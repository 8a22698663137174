package config

import (
	"bufio"
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/relayforge/relayforge/internal/toolkit"
)

// Load resolves the full precedence chain: defaults, overlaid by the
// JSON config file at jsonPath (if it exists), overlaid by the .env file
// at envPath (if it exists), overlaid by the process environment —
// env wins, matching spec.md §6's "highest precedence first: process
// environment, .env file, JSON config file, defaults."
func Load(jsonPath, envPath string) (Config, error) {
	cfg := Defaults()

	if jsonPath != "" {
		if raw, err := os.ReadFile(jsonPath); err == nil {
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return Config{}, &toolkit.ConfigError{Option: jsonPath, Reason: err.Error()}
			}
		} else if !os.IsNotExist(err) {
			return Config{}, &toolkit.ConfigError{Option: jsonPath, Reason: err.Error()}
		}
	}

	envFile := make(map[string]string)
	if envPath != "" {
		f, err := os.Open(envPath)
		if err == nil {
			defer f.Close()
			envFile, err = parseDotEnv(f)
			if err != nil {
				return Config{}, &toolkit.ConfigError{Option: envPath, Reason: err.Error()}
			}
		} else if !os.IsNotExist(err) {
			return Config{}, &toolkit.ConfigError{Option: envPath, Reason: err.Error()}
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		if v, ok := envFile[key]; ok {
			return v, true
		}
		return "", false
	}

	applyString(&cfg.ModelName, get, "RELAYFORGE_MODEL_NAME")
	applyString(&cfg.APIBaseURL, get, "RELAYFORGE_API_BASE_URL")
	applyString(&cfg.APIKey, get, "RELAYFORGE_API_KEY")
	applyString(&cfg.SSHHost, get, "RELAYFORGE_SSH_HOST")
	applyString(&cfg.SSHUser, get, "RELAYFORGE_SSH_USER")
	applyString(&cfg.SSHKeyPath, get, "RELAYFORGE_SSH_KEY_PATH")
	applyString(&cfg.LogLevel, get, "RELAYFORGE_LOG_LEVEL")
	applyString(&cfg.HTTPAddr, get, "RELAYFORGE_HTTP_ADDR")
	applyInt(&cfg.MaxRetries, get, "RELAYFORGE_MAX_RETRIES")
	applyInt(&cfg.TimeoutSeconds, get, "RELAYFORGE_TIMEOUT_SECONDS")
	applyInt(&cfg.ConnectionPoolSize, get, "RELAYFORGE_CONNECTION_POOL_SIZE")
	applyInt(&cfg.ConnectionTimeoutSeconds, get, "RELAYFORGE_CONNECTION_TIMEOUT_SECONDS")
	if v, ok := get("RELAYFORGE_PLUGIN_DISCOVERY_PATHS"); ok {
		cfg.PluginDiscoveryPaths = splitPaths(v)
	}

	return cfg, nil
}

func applyString(dst *string, get func(string) (string, bool), key string) {
	if v, ok := get(key); ok {
		*dst = v
	}
}

func applyInt(dst *int, get func(string) (string, bool), key string) {
	if v, ok := get(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func splitPaths(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDotEnv reads simple KEY=VALUE lines, skipping blanks and lines
// starting with '#'. Surrounding single or double quotes on the value
// are stripped.
func parseDotEnv(f *os.File) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		out[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
