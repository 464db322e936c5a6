package middleware

import (
	"context"
	"net/http"

	"swms-portal/internal/nav"
)

// Navigation gives each request its own navigator starting at the
// requested path. A 401 seen while serving the request navigates it to
// the login page; handlers turn that into a redirect via Redirected.
func Navigation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		history := nav.NewHistory(r.URL.Path)
		ctx := nav.WithNavigator(r.Context(), history)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Redirected reports where the request was navigated to, if anywhere.
func Redirected(ctx context.Context) (string, bool) {
	n, ok := nav.FromContext(ctx)
	if !ok {
		return "", false
	}
	history, ok := n.(*nav.History)
	if !ok {
		return "", false
	}
	return history.Redirected()
}
