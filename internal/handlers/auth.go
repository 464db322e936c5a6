package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"swms-portal/internal/gateway"
	"swms-portal/internal/models"
	"swms-portal/internal/nav"
	"swms-portal/internal/viewmodel"
	"swms-portal/pkg/utils"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK         bool                `json:"ok"`
	User       *models.UserProfile `json:"user,omitempty"`
	RedirectTo string              `json:"redirectTo"`
}

// Login signs in a citizen or driver and lands them on their dashboard.
func Login(auth *gateway.Auth, views *viewmodel.Registry, navigator nav.Navigator) http.HandlerFunc {
	return login(auth.Login, views, navigator, false)
}

// AdminLogin signs in an admin.
func AdminLogin(auth *gateway.Auth, views *viewmodel.Registry, navigator nav.Navigator) http.HandlerFunc {
	return login(auth.AdminLogin, views, navigator, true)
}

type signInFunc func(ctx context.Context, email, password string) (*models.UserProfile, error)

func login(signIn signInFunc, views *viewmodel.Registry, navigator nav.Navigator, admin bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			utils.RespondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		user, err := signIn(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, gateway.ErrNoToken) {
				utils.RespondError(w, http.StatusBadGateway, "Login failed. No token received.")
				return
			}
			fail(w, r, err, "Login failed. Please check your credentials.")
			return
		}

		// A new session never inherits the previous user's views.
		views.UnmountAll()

		landing := user.LandingRoute()
		if admin {
			landing = "/admin/dashboard"
		}
		navigator.Navigate(landing)

		utils.RespondJSON(w, http.StatusOK, LoginResponse{OK: true, User: user, RedirectTo: landing})
	}
}

// Register creates an account; if the backend signs the user straight in
// they land on their dashboard, otherwise on the login page.
func Register(auth *gateway.Auth, views *viewmodel.Registry, navigator nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if !decode(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			utils.RespondError(w, http.StatusBadRequest, "Email and password are required")
			return
		}
		if req.Role == models.RoleAdmin {
			utils.RespondError(w, http.StatusBadRequest, "Admins cannot self-register")
			return
		}

		user, err := auth.Register(r.Context(), req)
		if err != nil {
			fail(w, r, err, "Registration failed. Please try again.")
			return
		}

		redirectTo := nav.LoginPath
		if user != nil && auth.SignedIn() {
			views.UnmountAll()
			redirectTo = user.LandingRoute()
			navigator.Navigate(redirectTo)
		}
		log.Printf("✅ Registered %s", req.Email)
		utils.RespondJSON(w, http.StatusCreated, LoginResponse{OK: true, User: user, RedirectTo: redirectTo})
	}
}

// Logout clears the session and stops every mounted view.
func Logout(auth *gateway.Auth, views *viewmodel.Registry, navigator nav.Navigator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := auth.Logout(); err != nil {
			log.Printf("❌ Failed to clear session: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to log out")
			return
		}
		views.UnmountAll()
		navigator.Navigate(nav.LoginPath)
		utils.RespondJSON(w, http.StatusOK, LoginResponse{OK: true, RedirectTo: nav.LoginPath})
	}
}
