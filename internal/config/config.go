// Package config loads relayforge's runtime configuration from a
// layered precedence chain: process environment, a .env file, a JSON
// config file, and built-in defaults, highest precedence first.
package config

import "time"

// Config holds every recognized runtime option (spec.md §6).
type Config struct {
	ModelName  string `json:"model_name"`
	APIBaseURL string `json:"api_base_url"`
	APIKey     string `json:"api_key"`

	SSHHost    string `json:"ssh_host"`
	SSHUser    string `json:"ssh_user"`
	SSHKeyPath string `json:"ssh_key_path"`

	LogLevel string `json:"log_level"`
	HTTPAddr string `json:"http_addr"`

	MaxRetries              int `json:"max_retries"`
	TimeoutSeconds          int `json:"timeout_seconds"`
	ConnectionPoolSize      int `json:"connection_pool_size"`
	ConnectionTimeoutSeconds int `json:"connection_timeout_seconds"`

	PluginDiscoveryPaths []string `json:"plugin_discovery_paths"`
}

// Defaults returns the built-in configuration baseline, the lowest
// precedence layer.
func Defaults() Config {
	return Config{
		LogLevel:                 "info",
		HTTPAddr:                 ":8080",
		MaxRetries:               3,
		TimeoutSeconds:           30,
		ConnectionPoolSize:       5,
		ConnectionTimeoutSeconds: 300,
		PluginDiscoveryPaths:     []string{"examples/plugins", "plugins"},
	}
}

// Timeout returns TimeoutSeconds as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConnectionTimeout returns ConnectionTimeoutSeconds as a time.Duration.
func (c Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.ConnectionTimeoutSeconds) * time.Second
}

// Snapshot is a redacted copy of Config safe to log or expose over the
// HTTP bridge: APIKey and SSHKeyPath contents are never echoed.
type Snapshot struct {
	ModelName                string   `json:"model_name"`
	APIBaseURL               string   `json:"api_base_url"`
	APIKeySet                bool     `json:"api_key_set"`
	SSHHost                  string   `json:"ssh_host"`
	SSHUser                  string   `json:"ssh_user"`
	SSHKeySet                bool     `json:"ssh_key_set"`
	LogLevel                 string   `json:"log_level"`
	HTTPAddr                 string   `json:"http_addr"`
	MaxRetries               int      `json:"max_retries"`
	TimeoutSeconds           int      `json:"timeout_seconds"`
	ConnectionPoolSize       int      `json:"connection_pool_size"`
	ConnectionTimeoutSeconds int      `json:"connection_timeout_seconds"`
	PluginDiscoveryPaths     []string `json:"plugin_discovery_paths"`
}

// Redacted returns a Snapshot of c with secrets replaced by presence
// flags.
func (c Config) Redacted() Snapshot {
	return Snapshot{
		ModelName:                c.ModelName,
		APIBaseURL:               c.APIBaseURL,
		APIKeySet:                c.APIKey != "",
		SSHHost:                  c.SSHHost,
		SSHUser:                  c.SSHUser,
		SSHKeySet:                c.SSHKeyPath != "",
		LogLevel:                 c.LogLevel,
		HTTPAddr:                 c.HTTPAddr,
		MaxRetries:               c.MaxRetries,
		TimeoutSeconds:           c.TimeoutSeconds,
		ConnectionPoolSize:       c.ConnectionPoolSize,
		ConnectionTimeoutSeconds: c.ConnectionTimeoutSeconds,
		PluginDiscoveryPaths:     c.PluginDiscoveryPaths,
	}
}
