// Package session holds the authenticated identity of this portal profile.
//
// The store is the single place that reads and writes the token and cached
// user in local storage. Writers are the login gateways and the HTTP
// client's unauthorized handler; everything else only reads.
package session

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"swms-portal/internal/models"
	"swms-portal/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenKey        = "token"
	UserKey         = "user"
	AdminProfileKey = "adminProfile"
)

// Session is the current credential plus cached profile. Either may be nil.
type Session struct {
	Token *string
	User  *models.UserProfile
}

// Authenticated is true only when both halves are present.
func (s Session) Authenticated() bool {
	return s.Token != nil && *s.Token != "" && s.User != nil
}

type Store struct {
	local storage.Local
}

func NewStore(local storage.Local) *Store {
	return &Store{local: local}
}

// Get reads the session. A cached user that fails to parse is reported as
// absent; Get never fails.
func (s *Store) Get() Session {
	var sess Session

	if token, ok := s.local.GetItem(TokenKey); ok && token != "" {
		sess.Token = &token
	}

	raw, ok := s.local.GetItem(UserKey)
	if !ok || raw == "" || raw == "null" {
		return sess
	}

	var user models.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Printf("⚠️  Cached user is not valid JSON, treating as signed out: %v", err)
		return sess
	}
	sess.User = &user
	return sess
}

// Set stores token and user together. On failure the previous session is
// left as it was.
func (s *Store) Set(token string, user *models.UserProfile) error {
	prevUser, hadUser := s.local.GetItem(UserKey)
	if err := s.SetUser(user); err != nil {
		return err
	}

	if err := s.local.SetItem(TokenKey, token); err != nil {
		var restoreErr error
		if hadUser {
			restoreErr = s.local.SetItem(UserKey, prevUser)
		} else {
			restoreErr = s.local.RemoveItem(UserKey)
		}
		if restoreErr != nil {
			log.Printf("❌ Failed to restore cached user: %v", restoreErr)
		}
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// SetUser refreshes the cached profile without touching the token.
func (s *Store) SetUser(user *models.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.local.SetItem(UserKey, string(data)); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

// Clear removes token and user. The admin profile override is kept.
func (s *Store) Clear() error {
	if err := s.local.RemoveItem(TokenKey); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	if err := s.local.RemoveItem(UserKey); err != nil {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	return nil
}

// AdminProfile returns the locally edited admin profile, seeded from the
// cached user when nothing has been saved yet.
func (s *Store) AdminProfile() models.AdminProfile {
	profile := models.AdminProfile{Role: models.RoleAdmin}
	if user := s.Get().User; user != nil {
		profile.FirstName = user.FirstName
		profile.LastName = user.LastName
		profile.Email = user.Email
		profile.Phone = user.Phone
		profile.Address = user.Address
		profile.Photo = user.Photo
	}

	raw, ok := s.local.GetItem(AdminProfileKey)
	if !ok || raw == "" {
		return profile
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		log.Printf("⚠️  Stored admin profile is not valid JSON, ignoring: %v", err)
	}
	profile.Role = models.RoleAdmin
	return profile
}

func (s *Store) SaveAdminProfile(profile models.AdminProfile) error {
	profile.Role = models.RoleAdmin
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode admin profile: %w", err)
	}
	return s.local.SetItem(AdminProfileKey, string(data))
}

// TokenClaims is what the portal can read from its own token without the
// signing key. Nothing here is trusted for authorization.
type TokenClaims struct {
	Subject   string
	Role      string
	ExpiresAt *time.Time
}

// Claims decodes the stored token without verifying it. Opaque tokens
// yield ok=false.
func (s *Store) Claims() (TokenClaims, bool) {
	sess := s.Get()
	if sess.Token == nil {
		return TokenClaims{}, false
	}

	raw := StripScheme(*sess.Token)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenClaims{}, false
	}

	var out TokenClaims
	for _, key := range []string{"sub", "user_id", "id"} {
		if v, ok := claims[key].(string); ok && v != "" {
			out.Subject = v
			break
		}
	}
	out.Role, _ = claims["role"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	return out, true
}

// StripScheme drops a leading "Bearer " so the stored token is the raw credential.
func StripScheme(token string) string {
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return token[7:]
	}
	return token
}
