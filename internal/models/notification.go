package models

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationPending NotificationType = "pending"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is derived from current schedule state and never persisted.
type Notification struct {
	ID             string           `json:"id"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	Icon           string           `json:"icon"`
	IsStatusChange bool             `json:"isStatusChange,omitempty"`
	Schedule       *ScheduleRequest `json:"scheduleData,omitempty"`
}
