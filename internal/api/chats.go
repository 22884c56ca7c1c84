package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/nidaan/mentorchat/internal/chat"
)

// Contacts lists the identities the current user may message.
func (c *Client) Contacts(ctx context.Context) ([]chat.Contact, error) {
	raw, err := c.get(ctx, "/chats/contacts")
	if err != nil {
		return nil, err
	}
	return unwrap[[]chat.Contact](raw)
}

// Conversations lists established conversations with their membership.
func (c *Client) Conversations(ctx context.Context) ([]chat.Conversation, error) {
	raw, err := c.get(ctx, "/chats/chats")
	if err != nil {
		return nil, err
	}
	return unwrap[[]chat.Conversation](raw)
}

// Messages returns the ordered log for a conversation, oldest first as
// the backend serves it.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]chat.Message, error) {
	raw, err := c.get(ctx, "/chats/messages/"+conversationID)
	if err != nil {
		return nil, err
	}
	return unwrap[[]chat.Message](raw)
}

// SendMessage persists a message through the durable store. Multipart
// body: chatId, message, optional file. Never retried; a failure is the
// caller's rollback signal.
func (c *Client) SendMessage(ctx context.Context, conversationID, body string, att *chat.Attachment) (chat.Message, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("chatId", conversationID); err != nil {
		return chat.Message{}, fmt.Errorf("write chatId: %w", err)
	}
	if err := w.WriteField("message", body); err != nil {
		return chat.Message{}, fmt.Errorf("write message: %w", err)
	}
	if att != nil {
		part, err := w.CreateFormFile("file", att.Name)
		if err != nil {
			return chat.Message{}, fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(att.Data); err != nil {
			return chat.Message{}, fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return chat.Message{}, fmt.Errorf("close multipart: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/chats/message", w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return chat.Message{}, err
	}
	return unwrap[chat.Message](raw)
}
