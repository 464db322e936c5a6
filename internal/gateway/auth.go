// Package gateway maps backend resources to application types. Gateways
// never swallow errors; callers decide what a failure means.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/models"
	"swms-portal/internal/session"
)

// ErrNoToken is returned when the backend accepts credentials but sends no token.
var ErrNoToken = errors.New("no token in login response")

type authResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

type Auth struct {
	client   *apiclient.Client
	sessions *session.Store
}

func NewAuth(client *apiclient.Client, sessions *session.Store) *Auth {
	return &Auth{client: client, sessions: sessions}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login signs a user or driver in and stores the session. On any failure
// the existing session is left as it was.
func (a *Auth) Login(ctx context.Context, email, password string) (*models.UserProfile, error) {
	return a.login(ctx, "/auth/login", email, password)
}

// AdminLogin is Login against the admin endpoint.
func (a *Auth) AdminLogin(ctx context.Context, email, password string) (*models.UserProfile, error) {
	return a.login(ctx, "/auth/admin/login", email, password)
}

func (a *Auth) login(ctx context.Context, path, email, password string) (*models.UserProfile, error) {
	log.Printf("🔐 Login attempt for: %s", email)

	var resp authResponse
	if err := a.client.Post(ctx, path, credentials{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		log.Printf("❌ Login for %s returned no token", email)
		return nil, ErrNoToken
	}

	user, err := decodeOne[wireUser](resp.User, "user")
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("login response has no user")
	}
	profile := user.model()

	if err := a.sessions.Set(session.StripScheme(resp.Token), &profile); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	log.Printf("✅ Login successful: %s (%s)", profile.Email, profile.Role)
	return &profile, nil
}

// Register creates an account. If the backend signs the user in directly
// the session is stored as after Login.
func (a *Auth) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleDriver {
		req.DriverPin = ""
	}

	var resp authResponse
	if err := a.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}

	user, err := decodeOne[wireUser](resp.User, "user")
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	profile := user.model()

	if resp.Token != "" {
		if err := a.sessions.Set(session.StripScheme(resp.Token), &profile); err != nil {
			return nil, fmt.Errorf("failed to store session: %w", err)
		}
	}
	return &profile, nil
}

// Me asks the backend who the current token belongs to.
func (a *Auth) Me(ctx context.Context) (*models.UserProfile, error) {
	var raw json.RawMessage
	if err := a.client.Get(ctx, "/auth/me", &raw); err != nil {
		return nil, err
	}
	user, err := decodeOne[wireUser](raw, "user")
	if err != nil || user == nil {
		return nil, err
	}
	profile := user.model()
	return &profile, nil
}

func (a *Auth) Logout() error {
	return a.sessions.Clear()
}

// SignedIn reports whether a usable session is stored.
func (a *Auth) SignedIn() bool {
	return a.sessions.Get().Authenticated()
}
