package handlers

import (
	"net/http"

	"swms-portal/internal/guard"
	"swms-portal/internal/models"
	"swms-portal/internal/viewmodel"
	"swms-portal/pkg/utils"
)

// ComplaintView is a complaint with its location split out of the
// description for display.
type ComplaintView struct {
	models.Complaint
	Location string `json:"location"`
	Details  string `json:"details"`
}

func complaintViews(complaints []models.Complaint) []ComplaintView {
	views := make([]ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		location, details := c.SplitLocation()
		views = append(views, ComplaintView{Complaint: c, Location: location, Details: details})
	}
	return views
}

// GetUserDashboard renders the citizen dashboard.
// GET /user/dashboard
func GetUserDashboard(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := guard.UserFromContext(r.Context())

		vm := views.User(r.Context(), user.ID)
		if queryFlag(r, "refresh") {
			vm.Load(r.Context())
		}
		if redirectIfNavigated(w, r) {
			return
		}
		utils.RespondJSON(w, http.StatusOK, vm.Snapshot())
	}
}

// GetUserComplaints lists the citizen's own complaints.
// GET /user/complaints
func GetUserComplaints(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := guard.UserFromContext(r.Context())

		state := views.User(r.Context(), user.ID).Snapshot()
		if redirectIfNavigated(w, r) {
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"complaints": complaintViews(state.Complaints),
			"locations":  state.Locations,
		})
	}
}

// SubmitComplaint files a waste report.
// POST /user/complaints
func SubmitComplaint(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := guard.UserFromContext(r.Context())

		var form viewmodel.ComplaintForm
		if !decode(w, r, &form) {
			return
		}

		complaint, err := views.User(r.Context(), user.ID).SubmitComplaint(r.Context(), form)
		if err != nil {
			fail(w, r, err, "Failed to submit complaint. Please try again.")
			return
		}
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success":   true,
			"message":   "Complaint submitted successfully!",
			"complaint": complaint,
		})
	}
}

// SubmitSchedule requests a custom pickup.
// POST /user/schedules
func SubmitSchedule(views *viewmodel.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := guard.UserFromContext(r.Context())

		var form viewmodel.ScheduleForm
		if !decode(w, r, &form) {
			return
		}

		schedule, err := views.User(r.Context(), user.ID).SubmitSchedule(r.Context(), form)
		if err != nil {
			fail(w, r, err, "Failed to submit schedule request. Please try again.")
			return
		}
		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success":  true,
			"message":  "Schedule request submitted successfully!",
			"schedule": schedule,
		})
	}
}
