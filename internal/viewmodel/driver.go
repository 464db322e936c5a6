package viewmodel

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"swms-portal/internal/models"
	"swms-portal/internal/tasks"
	"swms-portal/internal/websocket"
)

type DriverState struct {
	Profile       models.UserProfile        `json:"profile"`
	Status        models.DriverStatus       `json:"status"`
	Area          string                    `json:"area"`
	Stops         []models.AreaStopTask     `json:"stops"`
	Tasks         []models.DriverTask       `json:"tasks"`
	History       []models.CompletionRecord `json:"history"`
	Notifications []models.Notification     `json:"notifications"`
	StatusMessage string                    `json:"statusMessage,omitempty"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// DriverDashboard reconciles the driver's area stops, assigned custom
// pickups and completion log into one task list.
type DriverDashboard struct {
	lifecycle
	deps     Deps
	driverID string

	mu          sync.RWMutex
	state       DriverState
	baseStops   []models.AreaStopTask
	schedules   []models.ScheduleRequest
	completions []models.CompletionRecord
	// localGen counts MarkComplete updates; a load that started before
	// one keeps the newer schedules and completions.
	localGen uint64
}

func NewDriverDashboard(deps Deps, driverID string) *DriverDashboard {
	return &DriverDashboard{deps: deps, driverID: driverID}
}

// Load refetches everything and replaces the state.
func (d *DriverDashboard) Load(ctx context.Context) {
	if !d.deps.signedIn() {
		return
	}

	d.mu.RLock()
	gen := d.localGen
	d.mu.RUnlock()

	var failed []string

	profile, err := d.deps.Profile.Get(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to fetch driver profile: %v - using cached user", err)
		profile = d.deps.Sessions.Get().User
		if profile == nil {
			profile = &models.UserProfile{ID: d.driverID, Role: models.RoleDriver}
			failed = append(failed, "your profile")
		}
	} else {
		d.deps.cacheUser(profile)
	}

	var subAreas []string
	if profile.Area != "" {
		subAreas = d.deps.Areas.Area(ctx, profile.Area).Societies
		if len(subAreas) == 0 {
			subAreas = tasks.FallbackSubAreas(profile.Area)
		}
	}
	base := tasks.DeriveStops(subAreas)

	schedules, err := d.deps.Schedules.Assigned(ctx)
	if err != nil {
		log.Printf("❌ Failed to fetch custom tasks: %v", err)
		schedules = nil
		failed = append(failed, "your custom pickup tasks")
	}

	completions, err := d.deps.Completions.ForDriver(ctx, d.driverID)
	if err != nil {
		log.Printf("❌ Failed to read completion log: %v", err)
		completions = nil
	}

	if !d.alive() {
		return
	}

	status := profile.Status
	if status == "" {
		status = models.DriverInactive
	}

	var notes []models.Notification
	if len(failed) > 0 {
		notes = []models.Notification{
			errorNotification("load-error", "Failed to load "+strings.Join(failed, " and ")+"."),
		}
	}

	d.mu.Lock()
	d.baseStops = base
	if d.localGen == gen {
		d.schedules = schedules
		d.completions = completions
	}
	d.state = DriverState{
		Profile:       *profile,
		Status:        status,
		Area:          profile.Area,
		Notifications: notes,
	}
	d.rebuildLocked()
	snapshot := d.state
	d.mu.Unlock()

	d.deps.publish(websocket.ViewDriver, d.driverID, snapshot)
}

// rebuildLocked derives stops, tasks and history from the stored inputs.
func (d *DriverDashboard) rebuildLocked() {
	d.state.Stops = tasks.Reconcile(d.baseStops, d.state.Area, d.completions)
	d.state.Tasks = tasks.CombineTasks(d.state.Stops, d.schedules)
	d.state.History = tasks.History(d.driverID, d.completions)
	d.state.UpdatedAt = time.Now()
}

func (d *DriverDashboard) Snapshot() DriverState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// MarkComplete completes one task from the current list. Area stops go to
// the completion log; custom pickups are marked completed on the backend.
func (d *DriverDashboard) MarkComplete(ctx context.Context, taskID string) error {
	d.mu.RLock()
	var task models.DriverTask
	found := false
	for _, t := range d.state.Tasks {
		if t.ID == taskID {
			task, found = t, true
			break
		}
	}
	area := d.state.Area
	d.mu.RUnlock()

	if !found {
		return ErrTaskNotFound
	}

	switch task.Type {
	case models.TaskTypeArea:
		rec := models.CompletionRecord{
			DriverID: d.driverID,
			Title:    task.Title,
			Area:     area,
			Location: task.Location,
		}
		if _, _, err := d.deps.Completions.Append(ctx, rec); err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}
		completions, err := d.deps.Completions.ForDriver(ctx, d.driverID)
		if err != nil {
			return fmt.Errorf("failed to read completion log: %w", err)
		}

		d.mu.Lock()
		d.completions = completions
		d.localGen++
		d.rebuildLocked()
		snapshot := d.state
		d.mu.Unlock()
		d.deps.publish(websocket.ViewDriver, d.driverID, snapshot)

	case models.TaskTypeCustom:
		if _, err := d.deps.Schedules.Update(ctx, task.ScheduleID, models.ScheduleUpdate{Status: models.ScheduleCompleted}); err != nil {
			return err
		}

		d.mu.Lock()
		updated := make([]models.ScheduleRequest, len(d.schedules))
		copy(updated, d.schedules)
		for i := range updated {
			if updated[i].ID == task.ScheduleID {
				updated[i].Status = models.ScheduleCompleted
			}
		}
		d.schedules = updated
		d.localGen++
		d.rebuildLocked()
		snapshot := d.state
		d.mu.Unlock()
		d.deps.publish(websocket.ViewDriver, d.driverID, snapshot)
	}

	log.Printf("✅ Task %s marked complete by driver %s", taskID, d.driverID)
	return nil
}

// ToggleStatus flips the driver between active and inactive.
func (d *DriverDashboard) ToggleStatus(ctx context.Context) (models.DriverStatus, error) {
	d.mu.RLock()
	email := d.state.Profile.Email
	current := d.state.Status
	d.mu.RUnlock()

	cached := d.deps.Sessions.Get().User
	if email == "" && cached != nil {
		email = cached.Email
	}
	if email == "" {
		return "", ErrMissingEmail
	}

	next := models.DriverActive
	if current == models.DriverActive {
		next = models.DriverInactive
	}

	got, err := d.deps.Profile.UpdateDriverStatus(ctx, email, next)
	if err != nil {
		d.setStatusMessage("Failed to update status")
		return "", err
	}

	d.mu.Lock()
	d.state.Status = got
	d.state.Profile.Status = got
	d.state.StatusMessage = "Status updated to " + string(got)
	snapshot := d.state
	d.mu.Unlock()

	if cached != nil {
		cached.Status = got
		d.deps.cacheUser(cached)
	}
	d.deps.publish(websocket.ViewDriver, d.driverID, snapshot)
	return got, nil
}

func (d *DriverDashboard) setStatusMessage(msg string) {
	d.mu.Lock()
	d.state.StatusMessage = msg
	d.mu.Unlock()
}
