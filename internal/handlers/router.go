package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"swms-portal/internal/areas"
	"swms-portal/internal/gateway"
	"swms-portal/internal/guard"
	"swms-portal/internal/middleware"
	"swms-portal/internal/nav"
	"swms-portal/internal/session"
	"swms-portal/internal/viewmodel"
	"swms-portal/internal/websocket"
)

// Deps is everything the routes need.
type Deps struct {
	Sessions  *session.Store
	Auth      *gateway.Auth
	Profile   *gateway.Profile
	Areas     *areas.Client
	Views     *viewmodel.Registry
	Hub       *websocket.Hub
	Navigator nav.Navigator
}

// Mount registers the portal routes on r. Every request gets its own
// navigator; guarded groups redirect before the handler runs.
func Mount(r chi.Router, d Deps) {
	r.Use(middleware.Navigation)

	r.Get("/health", Health(d.Hub, d.Views, d.Areas))
	r.Get("/session", GetSession(d.Sessions, d.Auth, d.Navigator))
	r.Get("/areas", GetAreas(d.Areas))
	r.Get("/areas/{name}", GetArea(d.Areas))

	r.Post("/login", Login(d.Auth, d.Views, d.Navigator))
	r.Post("/admin/login", AdminLogin(d.Auth, d.Views, d.Navigator))
	r.Post("/register", Register(d.Auth, d.Views, d.Navigator))
	r.Post("/logout", Logout(d.Auth, d.Views, d.Navigator))

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(d.Sessions, guard.Authenticated))

		r.Get("/ws", websocket.HandleWebSocket(d.Hub))

		r.Get("/user/dashboard", GetUserDashboard(d.Views))
		r.Get("/user/complaints", GetUserComplaints(d.Views))
		r.Post("/user/complaints", SubmitComplaint(d.Views))
		r.Post("/user/schedules", SubmitSchedule(d.Views))
		r.Get("/user/profile", GetProfile(d.Profile))
		r.Put("/user/profile", UpdateProfile(d.Profile, d.Sessions))

		r.Get("/driver/dashboard", GetDriverDashboard(d.Views))
		r.Post("/driver/tasks/{id}/complete", CompleteTask(d.Views))
		r.Post("/driver/status", ToggleDriverStatus(d.Views))
		r.Get("/driver/history", GetDriverHistory(d.Views))
		r.Get("/driver/profile", GetProfile(d.Profile))
		r.Put("/driver/profile", UpdateProfile(d.Profile, d.Sessions))
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(d.Sessions, guard.Admin))

		r.Get("/admin/dashboard", GetAdminDashboard(d.Views))
		r.Get("/admin/complaints", GetAdminComplaints(d.Views))
		r.Put("/admin/complaints/{id}", UpdateComplaintStatus(d.Views))
		r.Get("/admin/schedules", GetAdminSchedules(d.Views))
		r.Put("/admin/schedules/{id}", UpdateSchedule(d.Views))
		r.Get("/admin/drivers", GetDrivers(d.Views))
		r.Put("/admin/drivers/{id}/area", AssignDriverArea(d.Views))
		r.Get("/admin/profile", GetAdminProfile(d.Sessions))
		r.Put("/admin/profile", UpdateAdminProfile(d.Sessions))
	})

	// Unknown routes land on the login page.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, nav.LoginPath, http.StatusFound)
	})
}
