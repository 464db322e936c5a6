package viewmodel

import (
	"context"
	"errors"
	"sync"

	"swms-portal/internal/areas"
	"swms-portal/internal/gateway"
	"swms-portal/internal/models"
	"swms-portal/internal/session"
	"swms-portal/internal/storage"
	"swms-portal/internal/tasks"
	"swms-portal/internal/websocket"
)

var errBackend = errors.New("backend down")

type fakeProfile struct {
	profile   *models.UserProfile
	before    func()
	err       error
	statusErr error
	sent      []models.DriverStatus
}

func (f *fakeProfile) Get(ctx context.Context) (*models.UserProfile, error) {
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeProfile) UpdateDriverStatus(ctx context.Context, email string, status models.DriverStatus) (models.DriverStatus, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	f.sent = append(f.sent, status)
	return status, nil
}

type fakeSchedules struct {
	mu        sync.Mutex
	mine      []models.ScheduleRequest
	assigned  []models.ScheduleRequest
	all       []models.ScheduleRequest
	err       error
	submitted []models.NewScheduleRequest
	updates   map[string]models.ScheduleUpdate
}

func (f *fakeSchedules) List(ctx context.Context) ([]models.ScheduleRequest, error) {
	return f.all, f.err
}

func (f *fakeSchedules) Assigned(ctx context.Context) ([]models.ScheduleRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assigned, f.err
}

func (f *fakeSchedules) Mine(ctx context.Context) ([]models.ScheduleRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mine, f.err
}

func (f *fakeSchedules) Submit(ctx context.Context, req models.NewScheduleRequest) (*models.ScheduleRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	return &models.ScheduleRequest{ID: "new", Status: models.SchedulePending}, nil
}

func (f *fakeSchedules) Update(ctx context.Context, id string, update models.ScheduleUpdate) (*models.ScheduleRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[string]models.ScheduleUpdate)
	}
	f.updates[id] = update
	return &models.ScheduleRequest{ID: id, Status: update.Status}, nil
}

type fakeComplaints struct {
	mu        sync.Mutex
	mine      []models.Complaint
	pending   []models.Complaint
	err       error
	submitted []models.NewComplaint
	release   chan struct{}
}

func (f *fakeComplaints) List(ctx context.Context) ([]models.Complaint, error) {
	return f.pending, f.err
}

func (f *fakeComplaints) Mine(ctx context.Context) ([]models.Complaint, error) {
	return f.mine, f.err
}

func (f *fakeComplaints) Pending(ctx context.Context) ([]models.Complaint, error) {
	if f.release != nil {
		<-f.release
	}
	return f.pending, f.err
}

func (f *fakeComplaints) Submit(ctx context.Context, c models.NewComplaint) (*models.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, c)
	return &models.Complaint{ID: "c-new", Description: c.Description, Status: models.ComplaintPending}, nil
}

func (f *fakeComplaints) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	return &models.Complaint{ID: id, Status: status}, nil
}

type fakeUsers struct {
	active  []models.UserProfile
	drivers []models.UserProfile
	err     error
	updated map[string]gateway.UserUpdate
}

func (f *fakeUsers) Filter(ctx context.Context, role models.Role, status models.DriverStatus) ([]models.UserProfile, error) {
	return f.active, f.err
}

func (f *fakeUsers) Drivers(ctx context.Context) ([]models.UserProfile, error) {
	return f.drivers, f.err
}

func (f *fakeUsers) Update(ctx context.Context, id string, update gateway.UserUpdate) (*models.UserProfile, error) {
	if f.updated == nil {
		f.updated = make(map[string]gateway.UserUpdate)
	}
	f.updated[id] = update
	return &models.UserProfile{ID: id, Area: update.Area, Role: models.RoleDriver}, nil
}

type fakeAreas struct {
	catalog areas.Catalog
}

func (f *fakeAreas) Areas(ctx context.Context) areas.Catalog {
	if f.catalog == nil {
		return areas.FallbackCatalog()
	}
	return f.catalog
}

func (f *fakeAreas) Area(ctx context.Context, name string) areas.AreaDetail {
	return areas.AreaDetail{Area: name, Societies: f.catalog[name], Status: "Available"}
}

type fakePublisher struct {
	mu    sync.Mutex
	count map[websocket.View]int
}

func (f *fakePublisher) Publish(view websocket.View, userID string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.count == nil {
		f.count = make(map[websocket.View]int)
	}
	f.count[view]++
}

func (f *fakePublisher) published(view websocket.View) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count[view]
}

type fixture struct {
	deps       Deps
	profile    *fakeProfile
	schedules  *fakeSchedules
	complaints *fakeComplaints
	users      *fakeUsers
	areas      *fakeAreas
	publisher  *fakePublisher
}

func newFixture(user models.UserProfile) *fixture {
	sessions := session.NewStore(storage.NewMemory())
	if err := sessions.Set("tok", &user); err != nil {
		panic(err)
	}
	f := &fixture{
		profile:    &fakeProfile{profile: &user},
		schedules:  &fakeSchedules{},
		complaints: &fakeComplaints{},
		users:      &fakeUsers{},
		areas: &fakeAreas{catalog: areas.Catalog{
			"Alkapuri": {"Society 1", "Society 2", "Society 3"},
			"Wadi":     {},
		}},
		publisher: &fakePublisher{},
	}
	f.deps = Deps{
		Sessions:    sessions,
		Profile:     f.profile,
		Schedules:   f.schedules,
		Complaints:  f.complaints,
		Users:       f.users,
		Areas:       f.areas,
		Completions: tasks.NewLocalLog(storage.NewMemory()),
		Publisher:   f.publisher,
	}
	return f
}
