package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"swms-portal/internal/models"
)

// The backend predates a stable schema: documents carry "_id" or "id",
// references are either an id string or an embedded document, and list
// endpoints answer with a bare array or an envelope. Every such variation
// is resolved here; nothing above the gateway sees raw shapes.

type identified struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
}

func (i identified) id() string {
	if i.ID != "" {
		return i.ID
	}
	return i.LegacyID
}

type wireUser struct {
	identified
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Photo     string `json:"photo"`
	Status    string `json:"status"`
	Area      string `json:"area"`
}

func (w wireUser) model() models.UserProfile {
	first, last := w.FirstName, w.LastName
	if first == "" && w.Name != "" {
		parts := strings.SplitN(strings.TrimSpace(w.Name), " ", 2)
		first = parts[0]
		if len(parts) == 2 {
			last = parts[1]
		}
	}
	role := models.Role(w.Role)
	if role == "" {
		role = models.RoleUser
	}
	return models.UserProfile{
		ID:        w.id(),
		FirstName: first,
		LastName:  last,
		Email:     w.Email,
		Role:      role,
		Phone:     w.Phone,
		Address:   w.Address,
		Photo:     w.Photo,
		Status:    models.DriverStatus(w.Status),
		Area:      w.Area,
	}
}

// userRef decodes a field that is either an id string or a user document.
type userRef struct {
	id   string
	user *models.UserProfile
}

func (r *userRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.id)
	}
	var w wireUser
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	u := w.model()
	r.id = u.ID
	r.user = &u
	return nil
}

type wireSchedule struct {
	identified
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Reason         string  `json:"reason"`
	WasteType      string  `json:"wasteType"`
	Location       string  `json:"location"`
	Address        string  `json:"address"`
	Status         string  `json:"status"`
	AssignedDriver userRef `json:"assignedDriver"`
	User           userRef `json:"user"`
}

func (w wireSchedule) model() models.ScheduleRequest {
	status := models.ScheduleStatus(w.Status)
	if status == "" {
		status = models.SchedulePending
	}
	location := w.Location
	if location == "" {
		location = w.Address
	}
	s := models.ScheduleRequest{
		ID:             w.id(),
		Date:           w.Date,
		Time:           w.Time,
		Reason:         w.Reason,
		WasteType:      w.WasteType,
		Location:       location,
		Status:         status,
		AssignedDriver: w.AssignedDriver.id,
		User:           w.User.user,
	}
	if s.User == nil && w.User.id != "" {
		s.User = &models.UserProfile{ID: w.User.id}
	}
	return s
}

type wireBin struct {
	identified
	BinName  string `json:"binName"`
	Location string `json:"location"`
}

type wireComplaint struct {
	identified
	Description string     `json:"description"`
	Status      string     `json:"status"`
	User        userRef    `json:"user"`
	Bin         *wireBin   `json:"bin"`
	CreatedAt   time.Time  `json:"createdAt"`
	ResolvedAt  *time.Time `json:"resolvedAt"`
}

func (w wireComplaint) model() models.Complaint {
	status := models.ComplaintStatus(w.Status)
	if status == "" {
		status = models.ComplaintPending
	}
	c := models.Complaint{
		ID:          w.id(),
		Description: w.Description,
		Status:      status,
		User:        w.User.user,
		CreatedAt:   w.CreatedAt,
		ResolvedAt:  w.ResolvedAt,
	}
	if c.User == nil && w.User.id != "" {
		c.User = &models.UserProfile{ID: w.User.id}
	}
	if w.Bin != nil {
		c.Bin = &models.Bin{ID: w.Bin.id(), Name: w.Bin.BinName, Location: w.Bin.Location}
	}
	return c
}

// decodeList accepts a bare array or {"<envelope>": [...]}.
func decodeList[T any](raw json.RawMessage, envelope string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse list: %w", err)
		}
		return items, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to parse list envelope: %w", err)
	}
	inner, ok := env[envelope]
	if !ok {
		return nil, nil
	}
	inner = bytes.TrimSpace(inner)
	if len(inner) == 0 || inner[0] != '[' {
		return nil, fmt.Errorf("unexpected %q payload", envelope)
	}
	var items []T
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", envelope, err)
	}
	return items, nil
}

// decodeOne accepts a bare document or {"<envelope>": {...}}. An empty
// body yields nil.
func decodeOne[T any](raw json.RawMessage, envelope string) (*T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err == nil {
		if inner, ok := env[envelope]; ok {
			inner = bytes.TrimSpace(inner)
			if len(inner) > 0 && inner[0] == '{' {
				trimmed = inner
			}
		}
	}

	var out T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", envelope, err)
	}
	return &out, nil
}

func usersFrom(ws []wireUser) []models.UserProfile {
	out := make([]models.UserProfile, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.model())
	}
	return out
}

func schedulesFrom(ws []wireSchedule) []models.ScheduleRequest {
	out := make([]models.ScheduleRequest, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.model())
	}
	return out
}

func complaintsFrom(ws []wireComplaint) []models.Complaint {
	out := make([]models.Complaint, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.model())
	}
	return out
}
