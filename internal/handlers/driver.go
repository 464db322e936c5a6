package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"swms-portal/internal/guard"
	"swms-portal/internal/viewmodel"
	"swms-portal/pkg/utils"
)

// GetDriverDashboard renders the driver's reconciled task list.
// GET /driver/dashboard
func GetDriverDashboard(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, _ := guard.UserFromContext(r.Context())

		vm := views.Driver(r.Context(), driver.ID)
		if queryFlag(r, "refresh") {
			vm.Load(r.Context())
		}
		if redirectIfNavigated(w, r) {
			return
		}
		utils.RespondJSON(w, http.StatusOK, vm.Snapshot())
	}
}

// CompleteTask marks an area stop or custom pickup as done.
// POST /driver/tasks/{id}/complete
func CompleteTask(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, _ := guard.UserFromContext(r.Context())
		taskID := chi.URLParam(r, "id")

		vm := views.Driver(r.Context(), driver.ID)
		if err := vm.MarkComplete(r.Context(), taskID); err != nil {
			fail(w, r, err, "Failed to mark task as completed")
			return
		}
		utils.RespondJSON(w, http.StatusOK, vm.Snapshot())
	}
}

// ToggleDriverStatus flips the driver between active and inactive.
// POST /driver/status
func ToggleDriverStatus(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, _ := guard.UserFromContext(r.Context())

		vm := views.Driver(r.Context(), driver.ID)
		status, err := vm.ToggleStatus(r.Context())
		if err != nil {
			fail(w, r, err, "Failed to update status")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"status":  status,
			"message": vm.Snapshot().StatusMessage,
		})
	}
}

// GetDriverHistory lists the driver's completed stops, newest first.
// GET /driver/history
func GetDriverHistory(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		driver, _ := guard.UserFromContext(r.Context())

		state := views.Driver(r.Context(), driver.ID).Snapshot()
		if redirectIfNavigated(w, r) {
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"history": state.History,
			"total":   len(state.History),
		})
	}
}
