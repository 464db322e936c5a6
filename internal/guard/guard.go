// Package guard decides whether the current session may see a route.
package guard

import (
	"context"
	"log"
	"net/http"

	"swms-portal/internal/models"
	"swms-portal/internal/nav"
	"swms-portal/internal/session"
)

// Capability is the requirement a route places on the session.
type Capability int

const (
	Public Capability = iota
	Authenticated
	Admin
)

// State is what the session currently satisfies.
type State string

const (
	StateUnauthenticated    State = "Unauthenticated"
	StateAuthenticated      State = "Authenticated"
	StateAuthenticatedAdmin State = "AuthenticatedAdmin"
)

type Decision struct {
	Allowed    bool
	State      State
	RedirectTo string
	Reason     string
}

// Classify maps a session to its state. A token without a user, or a user
// without an id, is unauthenticated.
func Classify(sess session.Session) (State, string) {
	switch {
	case sess.Token == nil || *sess.Token == "":
		return StateUnauthenticated, "no token"
	case sess.User == nil:
		return StateUnauthenticated, "no user"
	case sess.User.ID == "":
		return StateUnauthenticated, "no user id"
	case sess.User.Role == models.RoleAdmin:
		return StateAuthenticatedAdmin, ""
	}
	return StateAuthenticated, ""
}

// Evaluate is a pure function of the capability and session.
func Evaluate(c Capability, sess session.Session) Decision {
	state, reason := Classify(sess)

	switch c {
	case Public:
		return Decision{Allowed: true, State: state}
	case Admin:
		if state == StateUnauthenticated {
			return Decision{State: state, RedirectTo: nav.AdminLoginPath, Reason: reason}
		}
		if state != StateAuthenticatedAdmin {
			return Decision{State: state, RedirectTo: nav.AdminLoginPath, Reason: "not admin"}
		}
		return Decision{Allowed: true, State: state}
	default:
		if state == StateUnauthenticated {
			return Decision{State: state, RedirectTo: nav.LoginPath, Reason: reason}
		}
		return Decision{Allowed: true, State: state}
	}
}

type contextKey string

const userContextKey contextKey = "user"

// Require re-reads the session on every request so a session cleared
// mid-flight is caught on the next one.
func Require(store *session.Store, c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := store.Get()
			decision := Evaluate(c, sess)
			if !decision.Allowed {
				log.Printf("🔒 %s denied (%s), redirecting to %s", r.URL.Path, decision.Reason, decision.RedirectTo)
				http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
				return
			}

			ctx := r.Context()
			if sess.User != nil {
				ctx = context.WithValue(ctx, userContextKey, *sess.User)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the profile admitted by Require.
func UserFromContext(ctx context.Context) (models.UserProfile, bool) {
	user, ok := ctx.Value(userContextKey).(models.UserProfile)
	return user, ok
}
