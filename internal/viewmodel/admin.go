package viewmodel

import (
	"context"
	"log"
	"sync"
	"time"

	"swms-portal/internal/gateway"
	"swms-portal/internal/models"
	"swms-portal/internal/websocket"
)

type AdminState struct {
	ActiveDrivers     int                  `json:"activeDrivers"`
	TotalLocations    int                  `json:"totalLocations"`
	PendingComplaints int                  `json:"pendingComplaints"`
	Drivers           []models.UserProfile `json:"drivers"`
	Areas             []string             `json:"areas"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// AdminDashboard holds the admin counters and the driver roster.
type AdminDashboard struct {
	lifecycle
	deps    Deps
	adminID string

	mu    sync.RWMutex
	state AdminState
	// known is the last seen status of each pickup request.
	known map[string]models.ScheduleStatus
}

func NewAdminDashboard(deps Deps, adminID string) *AdminDashboard {
	return &AdminDashboard{deps: deps, adminID: adminID}
}

// Refresh fetches the three counters concurrently. Each one is applied as
// soon as it arrives; the returned channel closes after all three.
func (a *AdminDashboard) Refresh(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if !a.deps.signedIn() {
		close(done)
		return done
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		drivers, err := a.deps.Users.Filter(ctx, models.RoleDriver, models.DriverActive)
		if err != nil {
			// The previous count stays on screen.
			log.Printf("❌ Error fetching active drivers: %v", err)
			return
		}
		a.apply(func(s *AdminState) { s.ActiveDrivers = len(drivers) })
	}()

	go func() {
		defer wg.Done()
		catalog := a.deps.Areas.Areas(ctx)
		a.apply(func(s *AdminState) {
			s.TotalLocations = len(catalog)
			s.Areas = catalog.Names()
		})
	}()

	go func() {
		defer wg.Done()
		pending, err := a.deps.Complaints.Pending(ctx)
		if err != nil {
			log.Printf("❌ Error fetching pending complaints: %v", err)
			pending = nil
		}
		a.apply(func(s *AdminState) { s.PendingComplaints = len(pending) })
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

// LoadDrivers refreshes the driver roster.
func (a *AdminDashboard) LoadDrivers(ctx context.Context) {
	if !a.deps.signedIn() {
		return
	}
	drivers, err := a.deps.Users.Drivers(ctx)
	if err != nil {
		log.Printf("❌ Error fetching drivers: %v", err)
		drivers = nil
	}
	a.apply(func(s *AdminState) { s.Drivers = drivers })
}

// Load is Refresh and LoadDrivers, waited on.
func (a *AdminDashboard) Load(ctx context.Context) {
	done := a.Refresh(ctx)
	a.LoadDrivers(ctx)
	<-done
}

func (a *AdminDashboard) apply(update func(s *AdminState)) {
	if !a.alive() {
		return
	}
	a.mu.Lock()
	update(&a.state)
	a.state.UpdatedAt = time.Now()
	snapshot := a.state
	a.mu.Unlock()

	a.deps.publish(websocket.ViewAdmin, a.adminID, snapshot)
}

func (a *AdminDashboard) Snapshot() AdminState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// AssignArea moves a driver to an area and reloads the roster.
func (a *AdminDashboard) AssignArea(ctx context.Context, driverID, area string) (*models.UserProfile, error) {
	if area == "" {
		return nil, &ValidationError{Field: "area"}
	}
	driver, err := a.deps.Users.Update(ctx, driverID, gateway.UserUpdate{Area: area})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Driver %s assigned to %s", driverID, area)
	a.LoadDrivers(ctx)
	return driver, nil
}

func (a *AdminDashboard) Complaints(ctx context.Context) ([]models.Complaint, error) {
	return a.deps.Complaints.List(ctx)
}

func (a *AdminDashboard) UpdateComplaint(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, &ValidationError{Field: "status", Msg: "unknown complaint status " + string(status)}
	}
	complaint, err := a.deps.Complaints.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	a.Refresh(context.WithoutCancel(ctx))
	return complaint, nil
}

func (a *AdminDashboard) Schedules(ctx context.Context) ([]models.ScheduleRequest, error) {
	schedules, err := a.deps.Schedules.List(ctx)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.known = make(map[string]models.ScheduleStatus, len(schedules))
	for _, s := range schedules {
		a.known[s.ID] = s.Status
	}
	a.mu.Unlock()
	return schedules, nil
}

// UpdateSchedule approves, rejects or assigns a pickup request. Rejected and
// completed requests are final.
func (a *AdminDashboard) UpdateSchedule(ctx context.Context, id string, update models.ScheduleUpdate) (*models.ScheduleRequest, error) {
	if update.Status == "" && update.AssignedDriver == "" {
		return nil, &ValidationError{Field: "status"}
	}
	if update.Status != "" && !update.Status.Valid() {
		return nil, &ValidationError{Field: "status", Msg: "unknown schedule status " + string(update.Status)}
	}
	if update.AssignedDriver != "" && update.Status == "" {
		update.Status = models.ScheduleAssigned
	}

	current, ok := a.knownStatus(id)
	if !ok {
		if _, err := a.Schedules(ctx); err != nil {
			// The backend still guards the transition.
			log.Printf("⚠️ Could not check schedule %s before update: %v", id, err)
		}
		current, _ = a.knownStatus(id)
	}
	if current.Terminal() {
		return nil, &ValidationError{Field: "status", Msg: "schedule is already " + string(current)}
	}

	updated, err := a.deps.Schedules.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		a.mu.Lock()
		if a.known == nil {
			a.known = make(map[string]models.ScheduleStatus)
		}
		a.known[id] = updated.Status
		a.mu.Unlock()
	}
	return updated, nil
}

func (a *AdminDashboard) knownStatus(id string) (models.ScheduleStatus, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	status, ok := a.known[id]
	return status, ok
}

// Profile is the locally edited admin profile.
func (a *AdminDashboard) Profile() models.AdminProfile {
	return a.deps.Sessions.AdminProfile()
}

func (a *AdminDashboard) SaveProfile(profile models.AdminProfile) error {
	return a.deps.Sessions.SaveAdminProfile(profile)
}
