package models

import "time"

// StopStatus is the display status of one area stop.
type StopStatus string

const (
	StopPending    StopStatus = "Pending"
	StopInProgress StopStatus = "In Progress"
	StopCompleted  StopStatus = "Completed"
)

// AreaStopTask is one sub-area within a driver's assigned area. It is
// derived on every refresh and never stored server-side.
type AreaStopTask struct {
	Stop     int        `json:"stop"`
	Location string     `json:"location"`
	Time     string     `json:"time"`
	Status   StopStatus `json:"status"`
}

// CompletionRecord is one entry of the append-only completed-stop log.
type CompletionRecord struct {
	ID          string    `json:"id" db:"id"`
	DriverID    string    `json:"driverId" db:"driver_id"`
	Title       string    `json:"title" db:"title"`
	Area        string    `json:"area" db:"area"`
	Location    string    `json:"subarea" db:"subarea"`
	CompletedAt time.Time `json:"completedAt" db:"completed_at"`
}

type TaskType string

const (
	TaskTypeArea   TaskType = "area"
	TaskTypeCustom TaskType = "custom"
)

// DriverTask is one row of the driver's combined task list.
type DriverTask struct {
	ID            string   `json:"id"`
	Type          TaskType `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	EstimatedTime string   `json:"estimatedTime"`
	Location      string   `json:"location"`
	Time          string   `json:"time"`
	Stop          int      `json:"stop,omitempty"`
	ScheduleID    string   `json:"scheduleId,omitempty"`
	UserName      string   `json:"userName,omitempty"`
	UserEmail     string   `json:"userEmail,omitempty"`
}
