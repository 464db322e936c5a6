package models

type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	ScheduleApproved  ScheduleStatus = "approved"
	ScheduleRejected  ScheduleStatus = "rejected"
	ScheduleAssigned  ScheduleStatus = "assigned"
	ScheduleCompleted ScheduleStatus = "completed"
)

// Terminal reports whether no further transition is expected.
func (s ScheduleStatus) Terminal() bool {
	return s == ScheduleRejected || s == ScheduleCompleted
}

func (s ScheduleStatus) Valid() bool {
	switch s {
	case SchedulePending, ScheduleApproved, ScheduleRejected, ScheduleAssigned, ScheduleCompleted:
		return true
	}
	return false
}

// ScheduleRequest is a custom pickup requested by a citizen.
type ScheduleRequest struct {
	ID             string         `json:"id"`
	Date           string         `json:"date"`
	Time           string         `json:"time"`
	Reason         string         `json:"reason"`
	WasteType      string         `json:"wasteType"`
	Location       string         `json:"location"`
	Status         ScheduleStatus `json:"status"`
	AssignedDriver string         `json:"assignedDriver,omitempty"`
	User           *UserProfile   `json:"user,omitempty"`
}

// NewScheduleRequest is the body of POST /schedules.
type NewScheduleRequest struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Reason    string `json:"reason"`
	WasteType string `json:"wasteType"`
	Location  string `json:"location"`
	User      string `json:"user"`
}

// ScheduleUpdate is the body of PUT /schedules/:id. Empty fields are omitted.
type ScheduleUpdate struct {
	Status         ScheduleStatus `json:"status,omitempty"`
	AssignedDriver string         `json:"assignedDriver,omitempty"`
}
