package chat

import (
	"context"
	"sync"

	"github.com/nidaan/mentorchat/internal/bus"
	"go.uber.org/zap"
)

// Fetcher reads chat state from the durable store.
type Fetcher interface {
	Contacts(ctx context.Context) ([]Contact, error)
	Conversations(ctx context.Context) ([]Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]Message, error)
}

// Store owns the per-identity chat state: contacts, conversations, the
// active conversation and its message log. Loads are fetch-and-replace,
// never merge, so repeating them on identity change is safe.
type Store struct {
	mu      sync.RWMutex
	fetcher Fetcher
	bus     *bus.Bus
	logger  *zap.Logger

	selfID        string
	contacts      []Contact
	conversations []Conversation
	active        *Conversation
	messages      []Message
}

// NewStore creates an empty store backed by the given fetcher.
func NewStore(f Fetcher, b *bus.Bus, logger *zap.Logger) *Store {
	return &Store{fetcher: f, bus: b, logger: logger}
}

// SetSelf binds the store to an identity. Must be called before loads.
func (s *Store) SetSelf(id string) {
	s.mu.Lock()
	s.selfID = id
	s.mu.Unlock()
}

// SelfID returns the bound identity id.
func (s *Store) SelfID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID
}

// Reset drops every piece of per-identity state. Called on logout so
// nothing leaks into the next session.
func (s *Store) Reset() {
	s.mu.Lock()
	s.selfID = ""
	s.contacts = nil
	s.conversations = nil
	s.active = nil
	s.messages = nil
	s.mu.Unlock()
}

// LoadContacts fetches and replaces the contact list. On failure the list
// is emptied and the error is logged; the UI shows an empty state.
func (s *Store) LoadContacts(ctx context.Context) error {
	contacts, err := s.fetcher.Contacts(ctx)
	if err != nil {
		s.logger.Error("fetch contacts", zap.Error(err))
		contacts = nil
	}
	s.mu.Lock()
	s.contacts = contacts
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindContacts, nil))
	return err
}

// LoadConversations fetches and replaces the conversation list.
func (s *Store) LoadConversations(ctx context.Context) error {
	convs, err := s.fetcher.Conversations(ctx)
	if err != nil {
		s.logger.Error("fetch conversations", zap.Error(err))
		convs = nil
	}
	s.mu.Lock()
	s.conversations = convs
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindConversations, nil))
	return err
}

// Select makes conv the active conversation and loads its log. If the
// user selects another conversation before the fetch resolves, the stale
// response is discarded: the active id is re-checked at resolution time,
// never assumed from the call site.
func (s *Store) Select(ctx context.Context, conv Conversation) error {
	s.mu.Lock()
	c := conv
	s.active = &c
	s.messages = nil
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindMessages, conv.ID))

	msgs, err := s.fetcher.Messages(ctx, conv.ID)
	if err != nil {
		s.logger.Error("fetch messages", zap.Error(err), zap.String("conversation", conv.ID))
		msgs = nil
	}

	s.mu.Lock()
	if s.active == nil || s.active.ID != conv.ID {
		s.mu.Unlock()
		return err // selection moved on; drop the late response
	}
	s.messages = msgs
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindMessages, conv.ID))
	return err
}

// Deselect clears the active conversation and its log.
func (s *Store) Deselect() {
	s.mu.Lock()
	s.active = nil
	s.messages = nil
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindMessages, ""))
}

// Active returns a copy of the active conversation, or nil.
func (s *Store) Active() *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	c := *s.active
	return &c
}

// ActivePeer resolves the active conversation's other member. Zero
// Identity means no conversation is open or membership is malformed.
func (s *Store) ActivePeer() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.Other(s.selfID)
}

// Contacts returns a copy of the contact list.
func (s *Store) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// Conversations returns a copy of the conversation list.
func (s *Store) Conversations() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// ConversationWith returns the conversation whose membership includes
// contactID, or nil. There is at most one per contact pair.
func (s *Store) ConversationWith(contactID string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.conversations {
		if s.conversations[i].HasMember(contactID) {
			c := s.conversations[i]
			return &c
		}
	}
	return nil
}

// Messages returns a copy of the active conversation's log, oldest first.
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Append adds a message to the end of the active log.
func (s *Store) Append(msg Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	id := ""
	if s.active != nil {
		id = s.active.ID
	}
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindMessages, id))
}

// ReplacePending swaps the pending entry matched by tempID with the
// confirmed record, in place, preserving log position. Returns false if
// no pending entry matches (e.g. the log was replaced by a selection
// change mid flight).
func (s *Store) ReplacePending(tempID string, confirmed Message) bool {
	s.mu.Lock()
	replaced := false
	for i := range s.messages {
		if s.messages[i].Pending && s.messages[i].TempID == tempID {
			s.messages[i] = confirmed
			replaced = true
			break
		}
	}
	id := ""
	if s.active != nil {
		id = s.active.ID
	}
	s.mu.Unlock()
	if replaced {
		s.bus.Publish(bus.New(bus.KindMessages, id))
	}
	return replaced
}

// RemovePending rolls back the pending entry matched by tempID.
func (s *Store) RemovePending(tempID string) bool {
	s.mu.Lock()
	removed := false
	for i := range s.messages {
		if s.messages[i].Pending && s.messages[i].TempID == tempID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			removed = true
			break
		}
	}
	id := ""
	if s.active != nil {
		id = s.active.ID
	}
	s.mu.Unlock()
	if removed {
		s.bus.Publish(bus.New(bus.KindMessages, id))
	}
	return removed
}

// SetPreview updates a contact's denormalized last-message preview, the
// only locally mutated contact field.
func (s *Store) SetPreview(contactID, preview string) {
	s.mu.Lock()
	for i := range s.contacts {
		if s.contacts[i].ID == contactID {
			s.contacts[i].LastMessage = preview
			break
		}
	}
	s.mu.Unlock()
	s.bus.Publish(bus.New(bus.KindContacts, nil))
}
