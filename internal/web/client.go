package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultClientTimeout = 10 * time.Second

// Client calls the notification API of a running server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the server at baseURL. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Show shows a notification on key and returns its id.
func (c *Client) Show(ctx context.Context, key string, req ShowRequest) (string, error) {
	var resp ShowResponse
	if err := c.do(ctx, http.MethodPost, surfacePath(key, "toasts"), req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Dismiss dismisses the notification with id on key, or every notification
// on key when id is empty.
func (c *Client) Dismiss(ctx context.Context, key, id string) error {
	path := surfacePath(key, "dismiss")
	if id != "" {
		path = surfacePath(key, "toasts", id, "dismiss")
	}
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Remove removes the notification with id on key, or every notification on
// key when id is empty.
func (c *Client) Remove(ctx context.Context, key, id string) error {
	path := surfacePath(key, "toasts")
	if id != "" {
		path = surfacePath(key, "toasts", id)
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Surface returns the current notifications of key.
func (c *Client) Surface(ctx context.Context, key string) (SurfaceView, error) {
	var view SurfaceView
	err := c.do(ctx, http.MethodGet, surfacePath(key, "toasts"), nil, &view)
	return view, err
}

func surfacePath(key string, parts ...string) string {
	segs := []string{"/api/surfaces", url.PathEscape(key)}
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	return strings.Join(segs, "/")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		bits, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(bits)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
