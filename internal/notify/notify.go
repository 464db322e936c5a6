// Package notify derives a citizen's notifications from their pickup
// requests. Nothing is persisted; the only memory is the previous poll's
// status snapshot.
package notify

import (
	"fmt"
	"sync"
	"time"

	"swms-portal/internal/models"
)

const (
	StatusChangeID = "status-change"
	ErrorID        = "error"
)

// Tracker remembers the last seen status per schedule so that a poll can
// tell the user an admin changed something.
type Tracker struct {
	mu   sync.Mutex
	last map[string]models.ScheduleStatus
}

func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]models.ScheduleStatus)}
}

// Observe records the current statuses and returns the notification list.
// A status-change entry leads the list when any known schedule moved.
func (t *Tracker) Observe(schedules []models.ScheduleRequest) []models.Notification {
	t.mu.Lock()
	changed := false
	next := make(map[string]models.ScheduleStatus, len(schedules))
	for _, s := range schedules {
		if prev, ok := t.last[s.ID]; ok && prev != s.Status {
			changed = true
		}
		next[s.ID] = s.Status
	}
	t.last = next
	t.mu.Unlock()

	notifications := make([]models.Notification, 0, len(schedules)+1)
	if changed {
		notifications = append(notifications, models.Notification{
			ID:             StatusChangeID,
			Message:        "Your schedule status has been updated by the admin.",
			Type:           models.NotificationInfo,
			Icon:           "🔄",
			IsStatusChange: true,
		})
	}
	for _, s := range schedules {
		notifications = append(notifications, ForSchedule(s))
	}
	return notifications
}

// Failure is shown in place of everything else when the fetch failed.
// The snapshot is left as it was.
func Failure() []models.Notification {
	return []models.Notification{{
		ID:      ErrorID,
		Message: "Failed to fetch your schedules. Please try again later.",
		Type:    models.NotificationError,
		Icon:    "❌",
	}}
}

func ForSchedule(s models.ScheduleRequest) models.Notification {
	schedule := s
	n := models.Notification{ID: s.ID, Schedule: &schedule}

	switch s.Status {
	case models.ScheduleApproved:
		n.Type, n.Icon = models.NotificationSuccess, "✅"
		n.Message = fmt.Sprintf("Your custom pickup on %s at %s has been approved.", displayDate(s.Date), s.Time)
	case models.ScheduleRejected:
		n.Type, n.Icon = models.NotificationError, "❌"
		n.Message = "Your custom pickup request has been rejected."
	case models.ScheduleAssigned:
		n.Type, n.Icon = models.NotificationInfo, "🚛"
		n.Message = fmt.Sprintf("A driver has been assigned to your custom pickup on %s at %s.", displayDate(s.Date), s.Time)
	case models.ScheduleCompleted:
		n.Type, n.Icon = models.NotificationSuccess, "🎉"
		n.Message = fmt.Sprintf("Your custom pickup on %s has been completed.", displayDate(s.Date))
	default:
		n.Type, n.Icon = models.NotificationPending, "⏳"
		n.Message = "Your custom pickup request is being reviewed."
	}
	return n
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05.000Z", "2006-01-02"}

// displayDate renders a backend date as M/D/YYYY, or unchanged if it does
// not parse.
func displayDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("1/2/2006")
		}
	}
	return raw
}
