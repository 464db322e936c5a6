package handlers

import (
	"log"
	"net/http"

	"swms-portal/internal/gateway"
	"swms-portal/internal/guard"
	"swms-portal/internal/models"
	"swms-portal/internal/session"
	"swms-portal/pkg/utils"
)

// GetProfile returns the backend profile, or the cached one when the
// backend cannot be reached.
// GET /user/profile, GET /driver/profile
func GetProfile(profile *gateway.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := profile.Get(r.Context())
		if err != nil || user == nil {
			if redirectIfNavigated(w, r) {
				return
			}
			cached, _ := guard.UserFromContext(r.Context())
			if err != nil {
				log.Printf("⚠️  Profile fetch failed, showing cached profile: %v", err)
			}
			utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
				"user":   cached,
				"cached": true,
			})
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"user":   user,
			"cached": false,
		})
	}
}

// UpdateProfile saves the self-editable fields and refreshes the cached user.
// PUT /user/profile, PUT /driver/profile
func UpdateProfile(profile *gateway.Profile, sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update models.ProfileUpdate
		if !decode(w, r, &update) {
			return
		}
		if update.FirstName == "" {
			utils.RespondError(w, http.StatusBadRequest, "First name is required")
			return
		}

		user, err := profile.Update(r.Context(), update)
		if err != nil {
			fail(w, r, err, "Failed to update profile")
			return
		}
		if user != nil {
			if err := sessions.SetUser(user); err != nil {
				log.Printf("⚠️  Failed to cache updated profile: %v", err)
			}
		}
		utils.RespondOK(w, map[string]interface{}{
			"message": "Profile updated successfully!",
			"user":    user,
		})
	}
}

// GET /admin/profile
func GetAdminProfile(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, sessions.AdminProfile())
	}
}

// UpdateAdminProfile stores the admin's local profile. It is never sent
// to the backend.
// PUT /admin/profile
func UpdateAdminProfile(sessions *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var profile models.AdminProfile
		if !decode(w, r, &profile) {
			return
		}
		if profile.Role == "" {
			profile.Role = models.RoleAdmin
		}
		if err := sessions.SaveAdminProfile(profile); err != nil {
			log.Printf("❌ Failed to save admin profile: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save profile")
			return
		}
		utils.RespondOK(w, map[string]interface{}{
			"message": "Profile updated successfully!",
			"profile": profile,
		})
	}
}
