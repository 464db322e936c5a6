package nav

import (
	"context"
	"testing"
)

func TestIsLoginRoute(t *testing.T) {
	cases := map[string]bool{
		"/login":           true,
		"/admin/login":     true,
		"/user/dashboard":  false,
		"/driver/tasks":    false,
		"/login?next=/foo": true,
	}
	for path, expect := range cases {
		if got := IsLoginRoute(path); got != expect {
			t.Fatalf("IsLoginRoute(%q): expected %v, got %v", path, expect, got)
		}
	}
}

func TestHistoryRedirected(t *testing.T) {
	h := NewHistory("/user/dashboard")
	if _, ok := h.Redirected(); ok {
		t.Fatalf("expected no redirect yet")
	}
	h.Navigate(LoginPath)
	to, ok := h.Redirected()
	if !ok || to != LoginPath {
		t.Fatalf("expected redirect to /login, got %q (%v)", to, ok)
	}
	if h.Location() != LoginPath {
		t.Fatalf("expected location /login, got %s", h.Location())
	}
}

func TestContextNavigator(t *testing.T) {
	h := NewHistory("/driver/dashboard")
	ctx := WithNavigator(context.Background(), h)
	got, ok := FromContext(ctx)
	if !ok || got.Location() != "/driver/dashboard" {
		t.Fatalf("expected navigator from context")
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no navigator on bare context")
	}
}
