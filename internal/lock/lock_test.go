package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustAcquire(t *testing.T, dir string) *Lock {
	t.Helper()
	l, err := Acquire(dir)
	if err != nil {
		t.Fatalf("Acquire(%s): %v", dir, err)
	}
	return l
}

// The lock file records who owns the session so a second client can name
// the holder in its error message.
func TestAcquireRecordsOwner(t *testing.T) {
	dir := t.TempDir()
	l := mustAcquire(t, dir)
	defer func() { _ = l.Release() }()

	data, err := os.ReadFile(filepath.Join(dir, "LOCK"))
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	want := fmt.Sprintf("pid=%d\n", os.Getpid())
	if !strings.HasPrefix(string(data), want) {
		t.Errorf("lock file = %q, want prefix %q", data, want)
	}
}

func TestContendedAcquireNamesHolder(t *testing.T) {
	dir := t.TempDir()
	holder := mustAcquire(t, dir)
	defer func() { _ = holder.Release() }()

	_, err := Acquire(dir)
	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("contended Acquire = %v (%T), want HeldError", err, err)
	}
	if held.PID != os.Getpid() {
		t.Errorf("HeldError.PID = %d, want %d", held.PID, os.Getpid())
	}
	if held.Path != filepath.Join(dir, "LOCK") {
		t.Errorf("HeldError.Path = %q", held.Path)
	}
}

// A released session must be immediately reusable: the shell releases on
// logout and the next login acquires the same directory.
func TestReleaseThenReacquire(t *testing.T) {
	dir := t.TempDir()

	first := mustAcquire(t, dir)
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "LOCK")); !os.IsNotExist(err) {
		t.Errorf("lock file still present after release: %v", err)
	}

	second := mustAcquire(t, dir)
	if err := second.Release(); err != nil {
		t.Errorf("second Release: %v", err)
	}
}

func TestReleaseTolerant(t *testing.T) {
	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil Release: %v", err)
	}

	dir := t.TempDir()
	l := mustAcquire(t, dir)
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("repeat Release: %v", err)
	}
}
