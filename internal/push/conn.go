// Package push owns the lifetime of the push-channel connection: one
// websocket per logged-in identity, constructed on login and torn down on
// logout. It is an explicitly scoped object, never ambient global state.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// MessageHandler receives a peer message from the channel.
type MessageHandler func(Incoming)

// TypingHandler receives the sending identity id of a typing signal.
type TypingHandler func(from string)

// Conn manages the push channel. Registering a handler REPLACES the
// previous one: only one handler per event type is ever active, so a
// re-subscribe cannot stack stale handlers and double-deliver events.
type Conn struct {
	url    string
	logger *zap.Logger

	mu         sync.Mutex
	ws         *websocket.Conn
	cancel     context.CancelFunc
	identityID string

	hmu       sync.RWMutex
	onMessage MessageHandler
	onTyping  TypingHandler
	onClose   func(error)
}

// NewConn creates a connection manager for the given server base URL.
// Nothing is dialed until Connect.
func NewConn(baseURL string, logger *zap.Logger) *Conn {
	wsURL := strings.Replace(baseURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	return &Conn{url: wsURL + "/socket", logger: logger}
}

// OnMessage registers the single message handler, replacing any prior one.
func (c *Conn) OnMessage(h MessageHandler) {
	c.hmu.Lock()
	c.onMessage = h
	c.hmu.Unlock()
}

// OnTyping registers the single typing handler, replacing any prior one.
func (c *Conn) OnTyping(h TypingHandler) {
	c.hmu.Lock()
	c.onTyping = h
	c.hmu.Unlock()
}

// OnClose registers a callback invoked when the read loop exits with an
// error (not on Disconnect). Used to degrade to poll-only.
func (c *Conn) OnClose(h func(error)) {
	c.hmu.Lock()
	c.onClose = h
	c.hmu.Unlock()
}

// Connect establishes the channel for identityID and announces presence.
// An existing socket is torn down first so there is never more than one
// channel per client; handlers registered before the call stay attached,
// so register-then-connect and reconnects both deliver events.
func (c *Conn) Connect(ctx context.Context, identityID string) error {
	c.closeSocket()

	ws, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}

	frame, err := encode(EventAddUser, AddUser{IdentityID: identityID})
	if err != nil {
		_ = ws.Close(websocket.StatusInternalError, "encode")
		return err
	}
	if err := ws.Write(ctx, websocket.MessageText, frame); err != nil {
		_ = ws.Close(websocket.StatusInternalError, "announce")
		return fmt.Errorf("announce presence: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.ws = ws
	c.cancel = cancel
	c.identityID = identityID
	c.mu.Unlock()

	go c.readLoop(loopCtx, ws)

	c.logger.Info("push channel connected", zap.String("identity", identityID))
	return nil
}

// Disconnect tears the channel down and detaches all handlers. Idempotent
// and safe to call on identity change or shutdown.
func (c *Conn) Disconnect() {
	c.closeSocket()

	c.hmu.Lock()
	c.onMessage = nil
	c.onTyping = nil
	c.onClose = nil
	c.hmu.Unlock()
}

// closeSocket closes the current socket and stops its read loop, leaving
// handler registrations alone. Reconnects go through here so an
// established subscription survives the socket swap.
func (c *Conn) closeSocket() {
	c.mu.Lock()
	ws, cancel := c.ws, c.cancel
	c.ws = nil
	c.cancel = nil
	c.identityID = ""
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		_ = ws.Close(websocket.StatusNormalClosure, "client disconnect")
		c.logger.Info("push channel disconnected")
	}
}

// Connected reports whether a channel is currently established.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil
}

// EmitMessage notifies the peer of a new message. Fire-and-forget: the
// channel gives no acknowledgement and a write failure only logs.
func (c *Conn) EmitMessage(ctx context.Context, to, from, message string) {
	c.emit(ctx, EventSendMsg, SendMsg{To: to, From: from, Message: message})
}

// EmitTyping signals the peer that this client is composing.
func (c *Conn) EmitTyping(ctx context.Context, to string) {
	c.emit(ctx, EventTyping, TypingSignal{To: to})
}

func (c *Conn) emit(ctx context.Context, event string, data any) {
	c.mu.Lock()
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return
	}
	frame, err := encode(event, data)
	if err != nil {
		c.logger.Warn("encode push event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := ws.Write(ctx, websocket.MessageText, frame); err != nil {
		c.logger.Warn("emit push event", zap.String("event", event), zap.Error(err))
	}
}

func (c *Conn) readLoop(ctx context.Context, ws *websocket.Conn) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return // intentional disconnect
			}
			c.logger.Warn("push channel closed", zap.Error(err))
			c.hmu.RLock()
			h := c.onClose
			c.hmu.RUnlock()
			if h != nil {
				h(err)
			}
			return
		}
		c.dispatch(data)
	}
}

func (c *Conn) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("malformed push frame", zap.Error(err))
		return
	}

	switch env.Event {
	case EventMsgReceive:
		var in Incoming
		if err := json.Unmarshal(env.Data, &in); err != nil {
			c.logger.Warn("malformed msg-receive payload", zap.Error(err))
			return
		}
		c.hmu.RLock()
		h := c.onMessage
		c.hmu.RUnlock()
		if h != nil {
			h(in)
		}
	case EventTyping:
		// Inbound typing carries the bare sender id.
		var from string
		if err := json.Unmarshal(env.Data, &from); err != nil {
			c.logger.Warn("malformed typing payload", zap.Error(err))
			return
		}
		c.hmu.RLock()
		h := c.onTyping
		c.hmu.RUnlock()
		if h != nil {
			h(from)
		}
	default:
		c.logger.Debug("unhandled push event", zap.String("event", env.Event))
	}
}
