// Package apiclient is the authenticated transport every backend gateway
// goes through.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"swms-portal/internal/nav"
	"swms-portal/internal/session"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Store
	navigator  nav.Navigator
}

// New builds a client for the primary backend. Requests carry no timeout
// of their own; callers bound them through the context if they want to.
// navigator is used when the request context carries none.
func New(baseURL string, sessions *session.Store, navigator nav.Navigator) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		sessions:   sessions,
		navigator:  navigator,
	}
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do sends one request and decodes a 2xx body into out (if non-nil).
// A 401 clears the session and navigates to the login page, unless the
// user is already on a login page, and is still returned to the caller.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess := c.sessions.Get(); sess.Token != nil && *sess.Token != "" {
		req.Header.Set("Authorization", authorizationHeader(*sess.Token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("❌ %s %s failed: %v", method, path, err)
		return &NetworkError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ %s %s returned %d", method, path, resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(ctx)
		}
		return &APIError{Status: resp.StatusCode, Message: serverMessage(data), Body: data}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	navigator, ok := nav.FromContext(ctx)
	if !ok {
		navigator = c.navigator
	}
	if navigator == nil {
		return
	}

	location := navigator.Location()
	if nav.IsLoginRoute(location) {
		log.Printf("⚠️  401 while on %s, leaving session untouched", location)
		return
	}

	log.Printf("🔐 401 on %s, clearing session and redirecting to %s", location, nav.LoginPath)
	if err := c.sessions.Clear(); err != nil {
		log.Printf("❌ Failed to clear session: %v", err)
	}
	navigator.Navigate(nav.LoginPath)
}

// authorizationHeader keeps an explicit scheme ("Bearer x", "Token x") and
// otherwise adds Bearer.
func authorizationHeader(token string) string {
	if i := strings.IndexByte(token, ' '); i > 0 {
		scheme := token[:i]
		isWord := true
		for _, r := range scheme {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
				isWord = false
				break
			}
		}
		if isWord {
			return token
		}
	}
	return "Bearer " + token
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
