package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{ServerURL: "https://chat.example.com", DefaultSession: "work"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.ServerURL != "https://chat.example.com" {
		t.Errorf("ServerURL = %q, want %q", loaded.ServerURL, "https://chat.example.com")
	}
	if loaded.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want %q", loaded.DefaultSession, "work")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultSession: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestTimerDefaults(t *testing.T) {
	var cfg *Config
	if got := cfg.TypingIdle(); got != 1500*time.Millisecond {
		t.Errorf("TypingIdle() = %v, want 1.5s", got)
	}
	if got := cfg.TypingDelay(); got != 400*time.Millisecond {
		t.Errorf("TypingDelay() = %v, want 400ms", got)
	}

	cfg = &Config{TypingIdleMillis: 2000, TypingDelayMillis: 100}
	if got := cfg.TypingIdle(); got != 2*time.Second {
		t.Errorf("TypingIdle() = %v, want 2s", got)
	}
	if got := cfg.TypingDelay(); got != 100*time.Millisecond {
		t.Errorf("TypingDelay() = %v, want 100ms", got)
	}
}
