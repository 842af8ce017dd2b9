package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "microhook/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for downloading listing sources.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries bounds retry attempts for transient HTTP failures
	// (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RegistryConfig holds settings for the syscall registry database.
type RegistryConfig struct {
	// Path is the SQLite database location (default "microhook.db").
	Path string `json:"path" yaml:"path"`
}

// LogConfig controls diagnostic logging on the non-converter paths.
type LogConfig struct {
	// Level is the minimum level printed: debug, info, warn, or error.
	Level string `json:"level" yaml:"level"`
}

// Config groups all tool configuration, mirroring microhook.yaml.
type Config struct {
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Registry RegistryConfig `json:"registry" yaml:"registry"`
	Log      LogConfig      `json:"log" yaml:"log"`
}
