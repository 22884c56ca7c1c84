package bus

import "time"

// Event kinds published by the chat core. Subscribers filter by prefix,
// e.g. "chat." receives every chat event.
const (
	KindConnStatus    = "conn.status_changed"
	KindContacts      = "chat.contacts_replaced"
	KindConversations = "chat.conversations_replaced"
	KindMessages      = "chat.messages_changed"
	KindUnread        = "chat.unread_changed"
	KindTyping        = "chat.typing_changed"
	KindSendFailed    = "chat.send_failed"
)

// Event is a domain event delivered through the bus.
type Event struct {
	Kind    string
	At      time.Time
	Payload any
}

// New builds an event stamped with the current time.
func New(kind string, payload any) Event {
	return Event{Kind: kind, At: time.Now(), Payload: payload}
}
