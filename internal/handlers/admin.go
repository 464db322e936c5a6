package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"swms-portal/internal/guard"
	"swms-portal/internal/models"
	"swms-portal/internal/viewmodel"
	"swms-portal/pkg/utils"
)

func adminView(views *viewmodel.Registry, r *http.Request) *viewmodel.AdminDashboard {
	admin, _ := guard.UserFromContext(r.Context())
	return views.Admin(r.Context(), admin.ID)
}

// GetAdminDashboard renders the admin counters and driver roster.
// GET /admin/dashboard
func GetAdminDashboard(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vm := adminView(views, r)
		if queryFlag(r, "refresh") {
			<-vm.Refresh(r.Context())
		}
		if redirectIfNavigated(w, r) {
			return
		}
		utils.RespondJSON(w, http.StatusOK, vm.Snapshot())
	}
}

// GET /admin/complaints
func GetAdminComplaints(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		complaints, err := adminView(views, r).Complaints(r.Context())
		if err != nil {
			fail(w, r, err, "Failed to load complaints")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"complaints": complaintViews(complaints),
			"total":      len(complaints),
		})
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateComplaintStatus moves a complaint through its lifecycle.
// PUT /admin/complaints/{id}
func UpdateComplaintStatus(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if !decode(w, r, &req) {
			return
		}

		complaint, err := adminView(views, r).UpdateComplaint(r.Context(), chi.URLParam(r, "id"), models.ComplaintStatus(req.Status))
		if err != nil {
			fail(w, r, err, "Failed to update complaint status")
			return
		}
		utils.RespondJSON(w, http.StatusOK, complaint)
	}
}

// GET /admin/schedules
func GetAdminSchedules(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schedules, err := adminView(views, r).Schedules(r.Context())
		if err != nil {
			fail(w, r, err, "Failed to load schedule requests")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"schedules": schedules,
			"total":     len(schedules),
		})
	}
}

// UpdateSchedule approves, rejects or assigns a pickup request.
// PUT /admin/schedules/{id}
func UpdateSchedule(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update models.ScheduleUpdate
		if !decode(w, r, &update) {
			return
		}

		schedule, err := adminView(views, r).UpdateSchedule(r.Context(), chi.URLParam(r, "id"), update)
		if err != nil {
			fail(w, r, err, "Failed to update schedule request")
			return
		}
		utils.RespondJSON(w, http.StatusOK, schedule)
	}
}

// GetDrivers returns the roster and the areas a driver can be assigned to.
// GET /admin/drivers
func GetDrivers(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := adminView(views, r).Snapshot()
		if redirectIfNavigated(w, r) {
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"drivers": state.Drivers,
			"areas":   state.Areas,
		})
	}
}

type assignAreaRequest struct {
	Area string `json:"area"`
}

// AssignDriverArea moves a driver to a new area.
// PUT /admin/drivers/{id}/area
func AssignDriverArea(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignAreaRequest
		if !decode(w, r, &req) {
			return
		}

		driver, err := adminView(views, r).AssignArea(r.Context(), chi.URLParam(r, "id"), req.Area)
		if err != nil {
			fail(w, r, err, "Failed to assign area")
			return
		}
		utils.RespondJSON(w, http.StatusOK, driver)
	}
}
