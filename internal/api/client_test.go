package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/nidaan/mentorchat/internal/chat"
)

func respond(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":    data,
		"success": code < 300,
	})
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	c.retryMaxElapsed = time.Millisecond // keep retries short in tests
	return c
}

func TestContactsUnwrapsEnvelope(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats/contacts" {
			t.Errorf("path = %q, want /chats/contacts", r.URL.Path)
		}
		respond(w, 200, []map[string]any{
			{"_id": "u2", "fullName": "Alice", "lastMessage": "see you"},
		})
	}))

	contacts, err := c.Contacts(context.Background())
	if err != nil {
		t.Fatalf("Contacts() error = %v", err)
	}
	if len(contacts) != 1 || contacts[0].ID != "u2" || contacts[0].LastMessage != "see you" {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestMessagesPathCarriesConversationID(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats/messages/c42" {
			t.Errorf("path = %q, want /chats/messages/c42", r.URL.Path)
		}
		respond(w, 200, []map[string]any{{"_id": "m1", "message": "hello"}})
	}))

	msgs, err := c.Messages(context.Background(), "c42")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Body != "hello" {
		t.Errorf("messages = %+v", msgs)
	}
}

// TestRefreshOn401 verifies the session-refresh interceptor: a 401 on any
// endpoint triggers one refresh-token call and one replay of the original
// request.
func TestRefreshOn401(t *testing.T) {
	var refreshed, attempts atomic.Int32
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/refresh-token":
			refreshed.Add(1)
			respond(w, 200, nil)
		case "/chats/contacts":
			if attempts.Add(1) == 1 {
				respond(w, http.StatusUnauthorized, nil)
				return
			}
			respond(w, 200, []map[string]any{{"_id": "u2"}})
		default:
			http.NotFound(w, r)
		}
	}))

	contacts, err := c.Contacts(context.Background())
	if err != nil {
		t.Fatalf("Contacts() error = %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("contacts = %+v, want one entry after refresh", contacts)
	}
	if refreshed.Load() != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshed.Load())
	}
	if attempts.Load() != 2 {
		t.Errorf("contact attempts = %d, want 2 (original + replay)", attempts.Load())
	}
}

// TestRefreshFailureForcesError verifies that a failed refresh surfaces
// the original 401 so the caller can log out.
func TestRefreshFailureForcesError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/refresh-token" {
			respond(w, http.StatusForbidden, nil)
			return
		}
		respond(w, http.StatusUnauthorized, nil)
	}))

	_, err := c.Contacts(context.Background())
	var se *StatusError
	if !asStatus(err, &se) || se.Code != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401 StatusError", err)
	}
}

func TestSendMessageMultipart(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chats/message" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		if got := r.FormValue("chatId"); got != "c1" {
			t.Errorf("chatId = %q, want c1", got)
		}
		if got := r.FormValue("message"); got != "hi" {
			t.Errorf("message = %q, want hi", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part missing: %v", err)
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "pic.png" {
			t.Errorf("filename = %q, want pic.png", header.Filename)
		}
		respond(w, 200, map[string]any{
			"_id": "srv-1", "message": "hi", "fileUrl": "https://cdn/pic.png",
		})
	}))

	msg, err := c.SendMessage(context.Background(), "c1", "hi", &fakeAttachment)
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if msg.ID != "srv-1" || msg.FileURL != "https://cdn/pic.png" {
		t.Errorf("confirmed message = %+v", msg)
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"chat not found","success":false}`)
	}))

	_, err := c.SendMessage(context.Background(), "missing", "x", nil)
	var se *StatusError
	if !asStatus(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != http.StatusBadRequest || se.Message != "chat not found" {
		t.Errorf("status error = %+v", se)
	}
}

func TestLoginCookiePersistsAcrossCalls(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/login":
			http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "tok", Path: "/"})
			respond(w, 200, map[string]any{"user": map[string]any{"_id": "u1", "fullName": "Me"}})
		case "/users/current-user":
			if cookie, err := r.Cookie("accessToken"); err != nil || cookie.Value != "tok" {
				respond(w, http.StatusUnauthorized, nil)
				return
			}
			respond(w, 200, map[string]any{"_id": "u1", "fullName": "Me"})
		default:
			http.NotFound(w, r)
		}
	}))

	self, err := c.Login(context.Background(), "me@example.com", "", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if self.ID != "u1" {
		t.Errorf("login identity = %+v, want u1", self)
	}

	// The jar must replay the session cookie.
	again, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if again.ID != "u1" {
		t.Errorf("current user = %+v, want u1", again)
	}
}

var fakeAttachment = chat.Attachment{
	Name: "pic.png",
	Data: []byte{0x89, 'P', 'N', 'G'},
}
