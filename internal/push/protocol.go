package push

import (
	"encoding/json"
	"time"
)

// Channel event names. The server routes by the envelope's event field.
const (
	EventAddUser    = "add-user"    // outbound: announce presence
	EventSendMsg    = "send-msg"    // outbound: best-effort peer notification
	EventTyping     = "typing"      // both directions
	EventMsgReceive = "msg-receive" // inbound: peer message
)

// Envelope is the wire format for all channel events.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// AddUser announces this client's identity so the server can route
// inbound events to it.
type AddUser struct {
	IdentityID string `json:"identityId"`
}

// SendMsg is the outbound peer notification. It carries no attachment
// payload; the peer learns the file URL from the durable store.
type SendMsg struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
}

// TypingSignal addresses a typing notification to a peer.
type TypingSignal struct {
	To string `json:"to"`
}

// Incoming is a peer message delivered out of band. CreatedAt may be
// absent; receivers substitute their local clock.
type Incoming struct {
	From      string     `json:"from"`
	Message   string     `json:"message"`
	FileURL   string     `json:"fileUrl,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
