// Package viewmodel holds the dashboard state for drivers, citizens and
// admins. Loads never fail: a failed fetch degrades that piece of state to
// empty and adds an error notification. Explicit user actions return
// errors so the caller can show a message.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"swms-portal/internal/areas"
	"swms-portal/internal/gateway"
	"swms-portal/internal/models"
	"swms-portal/internal/refresh"
	"swms-portal/internal/session"
	"swms-portal/internal/tasks"
	"swms-portal/internal/websocket"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrMissingEmail = errors.New("driver email missing")
	ErrNotSignedIn  = errors.New("user not logged in")
)

// ValidationError reports a missing or invalid form field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Field + " is required"
}

type ProfileSource interface {
	Get(ctx context.Context) (*models.UserProfile, error)
	UpdateDriverStatus(ctx context.Context, email string, status models.DriverStatus) (models.DriverStatus, error)
}

type ScheduleSource interface {
	List(ctx context.Context) ([]models.ScheduleRequest, error)
	Assigned(ctx context.Context) ([]models.ScheduleRequest, error)
	Mine(ctx context.Context) ([]models.ScheduleRequest, error)
	Submit(ctx context.Context, req models.NewScheduleRequest) (*models.ScheduleRequest, error)
	Update(ctx context.Context, id string, update models.ScheduleUpdate) (*models.ScheduleRequest, error)
}

type ComplaintSource interface {
	List(ctx context.Context) ([]models.Complaint, error)
	Mine(ctx context.Context) ([]models.Complaint, error)
	Pending(ctx context.Context) ([]models.Complaint, error)
	Submit(ctx context.Context, complaint models.NewComplaint) (*models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error)
}

type UserSource interface {
	Filter(ctx context.Context, role models.Role, status models.DriverStatus) ([]models.UserProfile, error)
	Drivers(ctx context.Context) ([]models.UserProfile, error)
	Update(ctx context.Context, id string, update gateway.UserUpdate) (*models.UserProfile, error)
}

type AreaSource interface {
	Areas(ctx context.Context) areas.Catalog
	Area(ctx context.Context, name string) areas.AreaDetail
}

// Publisher pushes snapshots to open tabs.
type Publisher interface {
	Publish(view websocket.View, userID string, data interface{})
}

// Deps are the collaborators shared by every view.
type Deps struct {
	Sessions    *session.Store
	Profile     ProfileSource
	Schedules   ScheduleSource
	Complaints  ComplaintSource
	Users       UserSource
	Areas       AreaSource
	Completions tasks.CompletionLog
	Publisher   Publisher
}

func (d Deps) signedIn() bool {
	return d.Sessions.Get().Authenticated()
}

// cacheUser refreshes the cached profile unless the session is gone.
func (d Deps) cacheUser(user *models.UserProfile) {
	if user == nil || !d.signedIn() {
		return
	}
	if err := d.Sessions.SetUser(user); err != nil {
		log.Printf("⚠️  Failed to cache user profile: %v", err)
	}
}

func (d Deps) publish(view websocket.View, userID string, data interface{}) {
	if d.Publisher != nil {
		d.Publisher.Publish(view, userID, data)
	}
}

// lifecycle tracks whether a view is still mounted and owns its pollers.
type lifecycle struct {
	mountOnce  sync.Once
	dead       atomic.Bool
	pollMu     sync.Mutex
	refreshers []refresh.Refresher
}

func (l *lifecycle) alive() bool {
	return !l.dead.Load()
}

func (l *lifecycle) attach(r refresh.Refresher) {
	l.pollMu.Lock()
	defer l.pollMu.Unlock()
	l.refreshers = append(l.refreshers, r)
}

func (l *lifecycle) trigger() {
	l.pollMu.Lock()
	defer l.pollMu.Unlock()
	for _, r := range l.refreshers {
		r.Trigger()
	}
}

// unmount stops polling; results still in flight are dropped.
func (l *lifecycle) unmount() {
	l.dead.Store(true)
	l.pollMu.Lock()
	defer l.pollMu.Unlock()
	for _, r := range l.refreshers {
		r.Stop()
	}
	l.refreshers = nil
}

func errorNotification(id, message string) models.Notification {
	return models.Notification{ID: id, Message: message, Type: models.NotificationError, Icon: "❌"}
}
