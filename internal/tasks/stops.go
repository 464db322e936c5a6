// Package tasks derives a driver's area stops and folds the completion
// log into them. Everything here except the logs is pure.
package tasks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"swms-portal/internal/models"
)

const (
	firstSlotHour = 8
	slotInterval  = 90 * time.Minute
)

// SlotTime is the display time of the stop at index i: 8:00 AM, 9:30 AM, ...
func SlotTime(i int) string {
	start := time.Date(2000, 1, 1, firstSlotHour, 0, 0, 0, time.UTC)
	return start.Add(time.Duration(i) * slotInterval).Format("3:04 PM")
}

// FallbackSubAreas is used when an area resolves to no sub-areas.
func FallbackSubAreas(area string) []string {
	return []string{
		area + " - Central",
		area + " - North",
		area + " - South",
		area + " - East",
	}
}

// DeriveStops turns a sub-area list into a fresh stop sequence. The first
// stop starts In Progress, the rest Pending.
func DeriveStops(subAreas []string) []models.AreaStopTask {
	stops := make([]models.AreaStopTask, 0, len(subAreas))
	for i, loc := range subAreas {
		status := models.StopPending
		if i == 0 {
			status = models.StopInProgress
		}
		stops = append(stops, models.AreaStopTask{
			Stop:     i + 1,
			Location: loc,
			Time:     SlotTime(i),
			Status:   status,
		})
	}
	return stops
}

// Reconcile marks every stop found in completions as Completed and makes
// the first remaining stop the only one In Progress. The input is not
// modified. completions must already be scoped to one driver.
func Reconcile(stops []models.AreaStopTask, area string, completions []models.CompletionRecord) []models.AreaStopTask {
	done := CompletedLocations(area, completions)

	out := make([]models.AreaStopTask, len(stops))
	promoted := false
	for i, stop := range stops {
		switch {
		case done[stop.Location]:
			stop.Status = models.StopCompleted
		case !promoted:
			stop.Status = models.StopInProgress
			promoted = true
		default:
			stop.Status = models.StopPending
		}
		out[i] = stop
	}
	return out
}

// CompletedLocations is the set of sub-areas completed in area. Records
// without an area match any area.
func CompletedLocations(area string, completions []models.CompletionRecord) map[string]bool {
	done := make(map[string]bool, len(completions))
	for _, rec := range completions {
		if rec.Area != "" && area != "" && rec.Area != area {
			continue
		}
		done[rec.Location] = true
	}
	return done
}

// AreaTitle is the task title shown for a stop.
func AreaTitle(location string) string {
	return "Garbage Collection - " + location
}

// CombineTasks builds the driver's task list: open area stops first, then
// the custom pickups a driver is allowed to see.
func CombineTasks(stops []models.AreaStopTask, schedules []models.ScheduleRequest) []models.DriverTask {
	combined := make([]models.DriverTask, 0, len(stops)+len(schedules))

	for _, stop := range stops {
		if stop.Status == models.StopCompleted {
			continue
		}
		combined = append(combined, models.DriverTask{
			ID:            fmt.Sprintf("area-%d", stop.Stop),
			Type:          models.TaskTypeArea,
			Title:         AreaTitle(stop.Location),
			Description:   "Collect garbage from " + stop.Location,
			Status:        string(stop.Status),
			Priority:      "Medium",
			EstimatedTime: "1 hour",
			Location:      stop.Location,
			Time:          stop.Time,
			Stop:          stop.Stop,
		})
	}

	for _, s := range schedules {
		if !DriverVisible(s.Status) {
			continue
		}
		location := s.Location
		if location == "" {
			location = "Custom Location"
		}
		when := s.Time
		if when == "" {
			when = "Flexible"
		}
		task := models.DriverTask{
			ID:            "custom-" + s.ID,
			Type:          models.TaskTypeCustom,
			Title:         "Custom Pickup Request",
			Description:   s.Reason,
			Status:        capitalize(string(s.Status)),
			Priority:      "High",
			EstimatedTime: "45 minutes",
			Location:      location,
			Time:          when,
			ScheduleID:    s.ID,
			UserName:      "Unknown User",
		}
		if s.User != nil {
			if s.User.FirstName != "" {
				task.UserName = strings.TrimSpace(s.User.FirstName + " " + s.User.LastName)
			}
			task.UserEmail = s.User.Email
		}
		combined = append(combined, task)
	}
	return combined
}

// DriverVisible reports whether a driver may see a custom pickup. Requests
// still under review never reach the driver.
func DriverVisible(status models.ScheduleStatus) bool {
	switch status {
	case models.ScheduleApproved, models.ScheduleAssigned, models.ScheduleCompleted:
		return true
	}
	return false
}

// History returns one driver's completion records, newest first.
func History(driverID string, completions []models.CompletionRecord) []models.CompletionRecord {
	history := make([]models.CompletionRecord, 0, len(completions))
	for _, rec := range completions {
		if rec.DriverID == driverID {
			history = append(history, rec)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CompletedAt.After(history[j].CompletedAt)
	})
	return history
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
