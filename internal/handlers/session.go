package handlers

import (
	"net/http"
	"time"

	"swms-portal/internal/gateway"
	"swms-portal/internal/guard"
	"swms-portal/internal/models"
	"swms-portal/internal/nav"
	"swms-portal/internal/session"
	"swms-portal/pkg/utils"
)

type SessionResponse struct {
	State     guard.State         `json:"state"`
	User      *models.UserProfile `json:"user,omitempty"`
	Subject   string              `json:"subject,omitempty"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
	Location  string              `json:"location"`
	Verified  bool                `json:"verified"`
}

// GetSession reports what the portal currently believes about the signed
// in user. With ?verify=1 the backend is asked to confirm the token; a
// rejected token clears the session like any other 401.
// GET /session
func GetSession(sessions *session.Store, auth *gateway.Auth, navigator nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verified := false
		if queryFlag(r, "verify") && sessions.Get().Token != nil {
			user, err := auth.Me(r.Context())
			if err != nil {
				fail(w, r, err, "Failed to verify session")
				return
			}
			verified = user != nil
		}

		sess := sessions.Get()
		state, _ := guard.Classify(sess)
		resp := SessionResponse{
			State:    state,
			User:     sess.User,
			Location: navigator.Location(),
			Verified: verified,
		}
		if claims, ok := sessions.Claims(); ok {
			resp.Subject = claims.Subject
			resp.ExpiresAt = claims.ExpiresAt
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}
