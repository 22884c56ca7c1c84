package chat

import (
	"context"
	"sync"
	"time"

	"github.com/nidaan/mentorchat/internal/bus"
	"github.com/nidaan/mentorchat/internal/push"
	"go.uber.org/zap"
)

// TypingNotifier emits an outbound typing signal to a peer.
type TypingNotifier interface {
	EmitTyping(ctx context.Context, to string)
}

// UnreadChange is the bus payload when a contact's counter moves.
type UnreadChange struct {
	ContactID string
	Count     int
}

// Tracker routes inbound channel events and owns the per-contact unread
// counters plus the active conversation's typing flag. Counters are
// session-local: a fresh session starts from zero.
type Tracker struct {
	mu       sync.Mutex
	store    *Store
	notifier TypingNotifier
	bus      *bus.Bus
	logger   *zap.Logger

	unread map[string]int

	typing      bool
	typingTimer *time.Timer
	idle        time.Duration

	emitTimer *time.Timer
	delay     time.Duration
}

// NewTracker creates a tracker. idle is the quiescence window before the
// peer's typing flag clears; delay is the keystroke debounce before an
// outbound typing signal is emitted.
func NewTracker(store *Store, n TypingNotifier, b *bus.Bus, logger *zap.Logger, idle, delay time.Duration) *Tracker {
	return &Tracker{
		store:    store,
		notifier: n,
		bus:      b,
		logger:   logger,
		unread:   make(map[string]int),
		idle:     idle,
		delay:    delay,
	}
}

// HandleIncoming routes one inbound message event. An event whose sender
// is the current identity is discarded unconditionally: without this
// guard a client re-processes its own broadcast echo as an incoming
// message, duplicating it on the sender's side.
func (t *Tracker) HandleIncoming(in push.Incoming) {
	selfID := t.store.SelfID()
	if in.From == "" || in.From == selfID {
		return
	}

	created := time.Now()
	if in.CreatedAt != nil {
		created = *in.CreatedAt
	}

	peer := t.store.ActivePeer()
	if !peer.IsZero() && peer.ID == in.From {
		t.store.Append(Message{
			Sender:    Identity{ID: in.From},
			Body:      in.Message,
			FileURL:   in.FileURL,
			CreatedAt: created,
		})
		t.MarkSeen(in.From)
	} else {
		t.mu.Lock()
		t.unread[in.From]++
		count := t.unread[in.From]
		t.mu.Unlock()
		t.bus.Publish(bus.New(bus.KindUnread, UnreadChange{ContactID: in.From, Count: count}))
	}
	t.store.SetPreview(in.From, in.Message)
}

// MarkSeen zeroes a contact's unread counter. Opening that contact's
// conversation constitutes "seen"; calling it again is a no-op.
func (t *Tracker) MarkSeen(contactID string) {
	if contactID == "" {
		return
	}
	t.mu.Lock()
	t.unread[contactID] = 0
	t.mu.Unlock()
	t.bus.Publish(bus.New(bus.KindUnread, UnreadChange{ContactID: contactID, Count: 0}))
}

// Unread returns a contact's counter.
func (t *Tracker) Unread(contactID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unread[contactID]
}

// HandleTyping routes one inbound typing signal. Only the active
// conversation's peer can raise the flag; signals from anyone else are
// ignored, no per-contact typing state is kept.
func (t *Tracker) HandleTyping(from string) {
	peer := t.store.ActivePeer()
	if peer.IsZero() || peer.ID != from {
		return
	}

	t.mu.Lock()
	changed := !t.typing
	t.typing = true
	if t.typingTimer != nil {
		t.typingTimer.Stop()
	}
	t.typingTimer = time.AfterFunc(t.idle, t.clearTyping)
	t.mu.Unlock()

	if changed {
		t.bus.Publish(bus.New(bus.KindTyping, true))
	}
}

func (t *Tracker) clearTyping() {
	t.mu.Lock()
	changed := t.typing
	t.typing = false
	t.mu.Unlock()
	if changed {
		t.bus.Publish(bus.New(bus.KindTyping, false))
	}
}

// Typing reports whether the active peer is currently typing.
func (t *Tracker) Typing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typing
}

// Keystroke restarts the outbound debounce. Only when the timer expires
// is a typing signal actually emitted, bounding signal frequency no
// matter how fast the user types. The peer is resolved at expiry, not
// capture, so a conversation switch mid-debounce signals the right one.
func (t *Tracker) Keystroke(ctx context.Context) {
	t.mu.Lock()
	if t.emitTimer != nil {
		t.emitTimer.Stop()
	}
	t.emitTimer = time.AfterFunc(t.delay, func() {
		peer := t.store.ActivePeer()
		if peer.IsZero() {
			return
		}
		t.notifier.EmitTyping(ctx, peer.ID)
	})
	t.mu.Unlock()
}

// Reset drops all counters and timers. Called on logout.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.unread = make(map[string]int)
	t.typing = false
	if t.typingTimer != nil {
		t.typingTimer.Stop()
		t.typingTimer = nil
	}
	if t.emitTimer != nil {
		t.emitTimer.Stop()
		t.emitTimer = nil
	}
	t.mu.Unlock()
}
