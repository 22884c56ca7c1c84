package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/nidaan/mentorchat/internal/push"
	"github.com/nidaan/mentorchat/internal/status"
	"go.uber.org/zap"
)

// AuthAPI is the thin auth collaborator: it establishes and tears down
// the session cookie and reports the bound identity.
type AuthAPI interface {
	Login(ctx context.Context, email, username, password string) (Identity, error)
	CurrentUser(ctx context.Context) (Identity, error)
	Logout(ctx context.Context) error
}

// API is the full backend surface the chat feature consumes.
type API interface {
	Fetcher
	Persister
	AuthAPI
}

// Service ties the four chat responsibilities together behind one
// façade: the connection manager, the conversation store, the send
// pipeline and the unread/typing tracker.
type Service struct {
	api      API
	conn     *push.Conn
	store    *Store
	pipeline *Pipeline
	tracker  *Tracker
	machine  *status.Machine
	logger   *zap.Logger

	// Login and Logout run on UI goroutines while render callbacks read
	// the identity, so access goes through the mutex.
	selfMu sync.RWMutex
	self   Identity
}

// NewService wires the chat core. Components are injected so tests can
// substitute any of them.
func NewService(api API, conn *push.Conn, store *Store, pipe *Pipeline, tracker *Tracker, machine *status.Machine, logger *zap.Logger) *Service {
	return &Service{
		api:      api,
		conn:     conn,
		store:    store,
		pipeline: pipe,
		tracker:  tracker,
		machine:  machine,
		logger:   logger,
	}
}

// Self returns the logged-in identity.
func (s *Service) Self() Identity {
	s.selfMu.RLock()
	defer s.selfMu.RUnlock()
	return s.self
}

func (s *Service) setSelf(id Identity) {
	s.selfMu.Lock()
	s.self = id
	s.selfMu.Unlock()
}

// Login authenticates, binds the store to the identity, brings up the
// push channel and performs the initial loads. A channel failure is not
// fatal: the client degrades to fetch-on-select.
func (s *Service) Login(ctx context.Context, email, username, password string) error {
	self, err := s.api.Login(ctx, email, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if self.IsZero() {
		self, err = s.api.CurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("resolve current user: %w", err)
		}
	}

	s.setSelf(self)
	s.store.SetSelf(self.ID)
	_ = s.machine.Transition(status.Connecting)

	if err := s.connect(ctx); err != nil {
		s.logger.Warn("push channel unavailable, running poll-only", zap.Error(err))
		_ = s.machine.Transition(status.Degraded)
	} else {
		_ = s.machine.Transition(status.Connected)
	}

	// Fetch failures here already left empty state behind; nothing fatal.
	_ = s.store.LoadContacts(ctx)
	_ = s.store.LoadConversations(ctx)
	return nil
}

// connect dials the channel and attaches the tracker's handlers. The
// registrations replace any prior handlers, so reconnecting never stacks
// subscriptions.
func (s *Service) connect(ctx context.Context) error {
	if err := s.conn.Connect(ctx, s.Self().ID); err != nil {
		return err
	}
	s.conn.OnMessage(s.tracker.HandleIncoming)
	s.conn.OnTyping(s.tracker.HandleTyping)
	s.conn.OnClose(func(err error) {
		_ = s.machine.Transition(status.Degraded)
	})
	return nil
}

// Reconnect retries the channel from the degraded state.
func (s *Service) Reconnect(ctx context.Context) error {
	if s.Self().IsZero() {
		return fmt.Errorf("not logged in")
	}
	_ = s.machine.Transition(status.Connecting)
	if err := s.connect(ctx); err != nil {
		_ = s.machine.Transition(status.Degraded)
		return err
	}
	_ = s.machine.Transition(status.Connected)
	return nil
}

// Logout tears everything down in order: channel first (handlers
// detached before any new identity can connect), then all per-identity
// state. The server logout is best effort.
func (s *Service) Logout(ctx context.Context) {
	s.conn.Disconnect()
	s.store.Reset()
	s.tracker.Reset()
	s.setSelf(Identity{})
	_ = s.machine.Transition(status.LoggedOut)
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("server logout failed", zap.Error(err))
	}
}

// SelectContact opens the conversation shared with contactID, loading
// its log and zeroing that contact's unread counter. Returns false if no
// conversation with the contact exists yet.
func (s *Service) SelectContact(ctx context.Context, contactID string) bool {
	conv := s.store.ConversationWith(contactID)
	if conv == nil {
		return false
	}
	s.Select(ctx, *conv)
	return true
}

// Select opens a conversation: loads messages and marks the peer seen.
func (s *Service) Select(ctx context.Context, conv Conversation) {
	_ = s.store.Select(ctx, conv)
	peer := conv.Other(s.Self().ID)
	if !peer.IsZero() {
		s.tracker.MarkSeen(peer.ID)
	}
}

// Send runs the send pipeline for the current composition.
func (s *Service) Send(ctx context.Context, body string, att *Attachment) error {
	return s.pipeline.Send(ctx, body, att)
}

// Keystroke feeds the outbound typing debounce.
func (s *Service) Keystroke(ctx context.Context) {
	s.tracker.Keystroke(ctx)
}

// Store exposes the conversation store for rendering.
func (s *Service) Store() *Store { return s.store }

// Tracker exposes the unread/typing tracker for rendering.
func (s *Service) Tracker() *Tracker { return s.tracker }
