// Package nav models the portal's notion of "where the user currently is"
// so the HTTP client can redirect to the login page on session loss.
package nav

import (
	"context"
	"strings"
	"sync"
)

const (
	LoginPath      = "/login"
	AdminLoginPath = "/admin/login"
)

// Navigator exposes the current location and moves it.
type Navigator interface {
	Location() string
	Navigate(path string)
}

// IsLoginRoute matches every login page, including the admin one.
func IsLoginRoute(path string) bool {
	return strings.Contains(path, LoginPath)
}

// History is an in-memory navigation stack.
type History struct {
	mu      sync.RWMutex
	entries []string
}

func NewHistory(start string) *History {
	return &History{entries: []string{start}}
}

func (h *History) Location() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[len(h.entries)-1]
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, path)
}

// Redirected returns the latest location if anything navigated away from
// the starting one.
func (h *History) Redirected() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) < 2 {
		return "", false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

type contextKey string

const navigatorKey contextKey = "navigator"

// WithNavigator scopes a navigator to one request.
func WithNavigator(ctx context.Context, n Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey, n)
}

func FromContext(ctx context.Context) (Navigator, bool) {
	n, ok := ctx.Value(navigatorKey).(Navigator)
	return n, ok
}
