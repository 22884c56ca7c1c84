package chat

import (
	"path"
	"strings"
	"time"
)

// Identity is a user as the auth collaborator reports it. The chat core
// only reads identities, it never mutates them.
type Identity struct {
	ID       string     `json:"_id"`
	FullName string     `json:"fullName"`
	Avatar   string     `json:"avatar"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
	Online   bool       `json:"online,omitempty"`
}

// IsZero reports whether the identity is the "no peer" empty record.
func (i Identity) IsZero() bool {
	return i.ID == ""
}

// Contact is a messageable identity with a denormalized preview of the
// last exchanged message for list rendering.
type Contact struct {
	Identity
	LastMessage string `json:"lastMessage"`
}

// Conversation pairs exactly two members. There is at most one
// conversation per identity pair; it is the unit of message addressing.
type Conversation struct {
	ID          string     `json:"_id"`
	Members     []Identity `json:"members"`
	LastMessage string     `json:"lastMessage,omitempty"`
}

// Other returns the member that is not selfID. A missing conversation or
// membership yields the empty record, never an error: callers treat a
// zero Identity as "no peer".
func (c *Conversation) Other(selfID string) Identity {
	if c == nil {
		return Identity{}
	}
	for _, m := range c.Members {
		if m.ID != selfID {
			return m
		}
	}
	return Identity{}
}

// HasMember reports whether id is one of the conversation's members.
func (c *Conversation) HasMember(id string) bool {
	if c == nil {
		return false
	}
	for _, m := range c.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Message is one entry in a conversation's log. A message synthesized
// locally by the send pipeline carries TempID and Pending=true until the
// durable write returns the server-issued record.
type Message struct {
	ID             string    `json:"_id,omitempty"`
	ConversationID string    `json:"chatId,omitempty"`
	Sender         Identity  `json:"sender"`
	Body           string    `json:"message"`
	FileURL        string    `json:"fileUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`

	TempID  string `json:"-"`
	Pending bool   `json:"-"`
}

// Attachment is an outgoing file composition. LocalPath serves as the
// non-durable preview reference shown while the upload is pending.
type Attachment struct {
	Name      string
	LocalPath string
	Data      []byte
}

// FileKind classifies an attachment reference for rendering.
type FileKind int

const (
	FileNone FileKind = iota
	FileImage
	FileGeneric
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ClassifyFile returns how an attachment reference should be rendered:
// inline image for known image extensions (case-insensitive), generic
// download link otherwise.
func ClassifyFile(url string) FileKind {
	if url == "" {
		return FileNone
	}
	ext := strings.ToLower(path.Ext(url))
	if imageExts[ext] {
		return FileImage
	}
	return FileGeneric
}
