package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when the corresponding field is unset.
const (
	DefaultServerURL   = "https://nidaan-6jyx.onrender.com"
	DefaultTypingIdle  = 1500 * time.Millisecond
	DefaultTypingDelay = 400 * time.Millisecond
)

// Config represents the global ~/.mentorchat/config.toml.
type Config struct {
	ServerURL      string `toml:"server_url"`
	DefaultSession string `toml:"default_session"`

	// TypingIdleMillis is how long the peer's typing indicator stays on
	// after the last typing signal.
	TypingIdleMillis int `toml:"typing_idle_millis"`

	// TypingDelayMillis is the keystroke debounce before an outbound
	// typing signal is emitted.
	TypingDelayMillis int `toml:"typing_delay_millis"`
}

// Load reads config from the given path. Returns an error if the file is
// missing; callers fall back to defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// BaseURL returns the configured server URL or the default.
func (c *Config) BaseURL() string {
	if c == nil || c.ServerURL == "" {
		return DefaultServerURL
	}
	return c.ServerURL
}

// TypingIdle returns the typing indicator quiescence window.
func (c *Config) TypingIdle() time.Duration {
	if c == nil || c.TypingIdleMillis <= 0 {
		return DefaultTypingIdle
	}
	return time.Duration(c.TypingIdleMillis) * time.Millisecond
}

// TypingDelay returns the outbound typing signal debounce.
func (c *Config) TypingDelay() time.Duration {
	if c == nil || c.TypingDelayMillis <= 0 {
		return DefaultTypingDelay
	}
	return time.Duration(c.TypingDelayMillis) * time.Millisecond
}
