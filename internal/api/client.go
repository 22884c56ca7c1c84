// Package api is the REST client for the marketplace backend. Chat
// endpoints are the contract the chat core depends on; the auth endpoints
// are a thin collaborator used to establish the session cookie.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Client talks to the backend over cookie-authenticated HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	retryMaxElapsed time.Duration
}

// NewClient creates a client with a fresh cookie jar. Session cookies live
// only for the process lifetime; a new run logs in again.
func NewClient(baseURL string, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	tr := &http.Transport{
		DialContext:     (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	return &Client{
		baseURL:         baseURL,
		http:            &http.Client{Transport: tr, Jar: jar, Timeout: 30 * time.Second},
		logger:          logger,
		retryMaxElapsed: 10 * time.Second,
	}, nil
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Success bool            `json:"success"`
}

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// do issues one request and, on a 401, refreshes the session cookie once
// and replays the request. body must be replayable, hence []byte.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	data, err := c.doOnce(ctx, method, path, contentType, body)
	var se *StatusError
	if err == nil || !asStatus(err, &se) || se.Code != http.StatusUnauthorized || path == "/users/refresh-token" {
		return data, err
	}

	// Expired access token: refresh and retry the original request once.
	if _, rerr := c.doOnce(ctx, http.MethodPost, "/users/refresh-token", "", nil); rerr != nil {
		c.logger.Warn("token refresh failed", zap.Error(rerr))
		return nil, err
	}
	return c.doOnce(ctx, method, path, contentType, body)
}

func asStatus(err error, target **StatusError) bool {
	se, ok := err.(*StatusError)
	if ok {
		*target = se
	}
	return ok
}

func (c *Client) doOnce(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return nil, &StatusError{Code: resp.StatusCode, Message: env.Message}
	}
	return raw, nil
}

// get issues a GET with exponential backoff on network errors and 5xx.
// 4xx (including 401, which do handles via refresh) are not retried here.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	operation := func() error {
		d, err := c.do(ctx, http.MethodGet, path, "", nil)
		if err != nil {
			var se *StatusError
			if asStatus(err, &se) && se.Code < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		data = d
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.retryMaxElapsed
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return data, nil
}

// unwrap decodes the backend envelope and unmarshals its data field.
func unwrap[T any](raw []byte) (T, error) {
	var out T
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return out, fmt.Errorf("decode envelope: %w", err)
	}
	if len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}
