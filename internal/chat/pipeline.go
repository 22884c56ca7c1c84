package chat

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nidaan/mentorchat/internal/bus"
	"go.uber.org/zap"
)

// Send entry guard failures. None of these reach the render path; the UI
// treats them as a disabled send action.
var (
	ErrEmptyMessage   = errors.New("nothing to send")
	ErrNoConversation = errors.New("no conversation selected")
	ErrNoPeer         = errors.New("conversation has no resolvable peer")
	ErrSendInFlight   = errors.New("a send is already in flight")
)

// Persister writes a message to the durable store and returns the
// server-issued record.
type Persister interface {
	SendMessage(ctx context.Context, conversationID, body string, att *Attachment) (Message, error)
}

// Notifier pushes a best-effort notification to the peer.
type Notifier interface {
	EmitMessage(ctx context.Context, to, from, message string)
}

// SendFailure is the bus payload when a persist fails and the optimistic
// entry has been rolled back. Draft lets the composer restore the text.
type SendFailure struct {
	Draft string
	Err   error
}

// Pipeline turns one composition into an optimistic log entry, a peer
// notification, and a durable write, then reconciles the entry with the
// persisted record or rolls it back. Single-flight: one send at a time.
type Pipeline struct {
	store     *Store
	persister Persister
	notifier  Notifier
	bus       *bus.Bus
	logger    *zap.Logger
	inflight  atomic.Bool
}

// NewPipeline creates a send pipeline over the given store.
func NewPipeline(store *Store, p Persister, n Notifier, b *bus.Bus, logger *zap.Logger) *Pipeline {
	return &Pipeline{store: store, persister: p, notifier: n, bus: b, logger: logger}
}

// Send runs the full pipeline synchronously. The optimistic entry is
// appended before any network I/O, so the caller may clear its composer
// immediately: perceived latency is decoupled from network latency.
func (p *Pipeline) Send(ctx context.Context, body string, att *Attachment) error {
	if strings.TrimSpace(body) == "" && att == nil {
		return ErrEmptyMessage
	}
	conv := p.store.Active()
	if conv == nil {
		return ErrNoConversation
	}
	selfID := p.store.SelfID()
	peer := conv.Other(selfID)
	if peer.IsZero() {
		return ErrNoPeer
	}
	if !p.inflight.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer p.inflight.Store(false)

	tempID := uuid.New().String()
	pending := Message{
		ConversationID: conv.ID,
		Sender:         Identity{ID: selfID},
		Body:           body,
		CreatedAt:      time.Now(),
		TempID:         tempID,
		Pending:        true,
	}
	if att != nil {
		pending.FileURL = att.LocalPath
	}
	p.store.Append(pending)
	p.store.SetPreview(peer.ID, body)

	// Best effort; the channel gives no acknowledgement.
	p.notifier.EmitMessage(ctx, peer.ID, selfID, body)

	confirmed, err := p.persister.SendMessage(ctx, conv.ID, body, att)
	if err != nil {
		p.logger.Error("send failed", zap.Error(err), zap.String("temp_id", tempID))
		p.store.RemovePending(tempID)
		p.bus.Publish(bus.New(bus.KindSendFailed, SendFailure{Draft: body, Err: err}))
		return err
	}

	if !p.store.ReplacePending(tempID, confirmed) {
		// Selection changed mid flight and the pending entry is gone;
		// the confirmed record will arrive with the next fetch.
		p.logger.Info("pending entry gone before reconciliation", zap.String("temp_id", tempID))
	}
	return nil
}
