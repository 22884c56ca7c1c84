package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nidaan/mentorchat/internal/chat"
)

// CurrentUser returns the identity bound to the session cookie.
func (c *Client) CurrentUser(ctx context.Context) (chat.Identity, error) {
	raw, err := c.get(ctx, "/users/current-user")
	if err != nil {
		return chat.Identity{}, err
	}
	return unwrap[chat.Identity](raw)
}

// loginResponse carries the user record; the tokens themselves arrive as
// Set-Cookie headers and land in the jar.
type loginResponse struct {
	User chat.Identity `json:"user"`
}

// Login authenticates with email/username + password and stores the
// session cookies in the jar.
func (c *Client) Login(ctx context.Context, email, username, password string) (chat.Identity, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	})
	if err != nil {
		return chat.Identity{}, err
	}
	raw, err := c.do(ctx, http.MethodPost, "/users/login", "application/json", body)
	if err != nil {
		return chat.Identity{}, err
	}
	resp, err := unwrap[loginResponse](raw)
	if err != nil {
		return chat.Identity{}, err
	}
	if !resp.User.IsZero() {
		return resp.User, nil
	}
	// Some deployments return the bare user record in data.
	return unwrap[chat.Identity](raw)
}

// Logout invalidates the server session. Cookie jar contents are simply
// abandoned with the client.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/users/logout", "", nil)
	return err
}
