package models

import "strings"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleDriver Role = "driver"
)

type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverInactive DriverStatus = "inactive"
)

// UserProfile is the locally cached copy of a backend user.
type UserProfile struct {
	ID        string       `json:"id"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Email     string       `json:"email"`
	Role      Role         `json:"role"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	Photo     string       `json:"photo,omitempty"`
	Status    DriverStatus `json:"status,omitempty"`
	Area      string       `json:"area,omitempty"`
}

// DisplayName mirrors the header text: full name, first name, email, then fallback.
func (u *UserProfile) DisplayName(fallback string) string {
	if u == nil {
		return fallback
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	switch {
	case u.FirstName != "" && u.LastName != "":
		return full
	case u.FirstName != "":
		return u.FirstName
	case u.Email != "":
		return u.Email
	}
	return fallback
}

// LandingRoute is where a freshly logged in user is sent.
func (u *UserProfile) LandingRoute() string {
	if u == nil {
		return "/login"
	}
	switch u.Role {
	case RoleDriver:
		return "/driver/dashboard"
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/user/dashboard"
	}
}

// ProfileUpdate carries the self-editable profile fields.
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Photo     string `json:"photo,omitempty"`
}

// AdminProfile is the admin-only, locally edited profile that never reaches the backend.
type AdminProfile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Photo     string `json:"photo,omitempty"`
	Role      Role   `json:"role"`
}

type RegisterRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Role      Role   `json:"role"`
	DriverPin string `json:"driverPin,omitempty"`
}
