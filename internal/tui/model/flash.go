// Package model holds render-side state that belongs to the terminal
// shell rather than the chat core.
package model

import (
	"sync"
	"time"
)

// NoticeTTL is how long a standard notice stays on the status bar.
const NoticeTTL = 5 * time.Second

// Flash holds one transient status-bar message at a time. A newer
// message displaces the current one regardless of remaining time.
type Flash struct {
	mu      sync.RWMutex
	message string
	until   time.Time
}

// Notice stores a message with the standard lifetime.
func (f *Flash) Notice(msg string) {
	f.Set(msg, NoticeTTL)
}

// Set stores a message that expires after d.
func (f *Flash) Set(msg string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.until = time.Now().Add(d)
}

// Get returns the current message, or empty once expired.
func (f *Flash) Get() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.until) {
		return ""
	}
	return f.message
}

// Clear drops the message immediately.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = ""
	f.until = time.Time{}
}
