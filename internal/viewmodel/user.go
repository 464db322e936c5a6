package viewmodel

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"swms-portal/internal/models"
	"swms-portal/internal/notify"
	"swms-portal/internal/websocket"
)

type UserState struct {
	Profile       *models.UserProfile      `json:"profile"`
	Schedules     []models.ScheduleRequest `json:"schedules"`
	Complaints    []models.Complaint       `json:"complaints"`
	Notifications []models.Notification    `json:"notifications"`
	Locations     []string                 `json:"locations"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// ComplaintForm is the citizen's waste report.
type ComplaintForm struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ScheduleForm is the citizen's custom pickup request.
type ScheduleForm struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
	WasteType string `json:"wasteType"`
	Address   string `json:"address"`
}

type UserDashboard struct {
	lifecycle
	deps    Deps
	userID  string
	tracker *notify.Tracker

	mu    sync.RWMutex
	state UserState
}

func NewUserDashboard(deps Deps, userID string) *UserDashboard {
	return &UserDashboard{deps: deps, userID: userID, tracker: notify.NewTracker()}
}

func (u *UserDashboard) Load(ctx context.Context) {
	sess := u.deps.Sessions.Get()
	if !sess.Authenticated() {
		return
	}

	schedules, schedErr := u.deps.Schedules.Mine(ctx)
	if schedErr != nil {
		log.Printf("❌ Error fetching user schedules: %v", schedErr)
	}

	complaints, err := u.deps.Complaints.Mine(ctx)
	if err != nil {
		log.Printf("❌ Error fetching user complaints: %v", err)
		complaints = nil
	}

	locations := u.deps.Areas.Areas(ctx).Names()

	if !u.alive() {
		return
	}

	u.mu.Lock()
	u.state.Profile = sess.User
	u.state.Complaints = complaints
	u.state.Locations = locations
	if schedErr != nil {
		u.state.Notifications = notify.Failure()
	} else {
		u.state.Schedules = schedules
		u.state.Notifications = u.tracker.Observe(schedules)
	}
	u.state.UpdatedAt = time.Now()
	snapshot := u.state
	u.mu.Unlock()

	u.deps.publish(websocket.ViewUser, u.userID, snapshot)
}

func (u *UserDashboard) Snapshot() UserState {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

// SubmitComplaint files a waste report and reloads the dashboard.
func (u *UserDashboard) SubmitComplaint(ctx context.Context, form ComplaintForm) (*models.Complaint, error) {
	user := u.deps.Sessions.Get().User
	if user == nil || user.ID == "" {
		return nil, ErrNotSignedIn
	}
	if strings.TrimSpace(form.Description) == "" {
		return nil, &ValidationError{Field: "description"}
	}
	if strings.TrimSpace(form.Location) == "" {
		return nil, &ValidationError{Field: "location"}
	}

	complaint, err := u.deps.Complaints.Submit(ctx, models.NewComplaint{
		User:         user.ID,
		Description:  models.ComposeComplaintDescription(form.Type, form.Description, form.Location),
		SuggestedBin: true,
	})
	if err != nil {
		return nil, err
	}

	u.Load(ctx)
	return complaint, nil
}

// SubmitSchedule requests a custom pickup and reloads the dashboard.
func (u *UserDashboard) SubmitSchedule(ctx context.Context, form ScheduleForm) (*models.ScheduleRequest, error) {
	user := u.deps.Sessions.Get().User
	if user == nil || user.ID == "" {
		return nil, ErrNotSignedIn
	}
	required := []struct{ field, value string }{
		{"date", form.Date},
		{"time", form.Time},
		{"reason", form.Reason},
		{"wasteType", form.WasteType},
		{"address", form.Address},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, &ValidationError{Field: r.field}
		}
	}

	schedule, err := u.deps.Schedules.Submit(ctx, models.NewScheduleRequest{
		Date:      form.Date,
		Time:      form.Time,
		Reason:    form.Reason,
		WasteType: form.WasteType,
		Location:  form.Address,
		User:      user.ID,
	})
	if err != nil {
		return nil, err
	}

	u.Load(ctx)
	return schedule, nil
}
