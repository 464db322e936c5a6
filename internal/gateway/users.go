package gateway

import (
	"context"
	"encoding/json"
	"net/url"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/models"
)

type Users struct {
	client *apiclient.Client
}

func NewUsers(client *apiclient.Client) *Users {
	return &Users{client: client}
}

func (u *Users) List(ctx context.Context) ([]models.UserProfile, error) {
	var raw json.RawMessage
	if err := u.client.Get(ctx, "/auth/users", &raw); err != nil {
		return nil, err
	}
	ws, err := decodeList[wireUser](raw, "users")
	if err != nil {
		return nil, err
	}
	return usersFrom(ws), nil
}

// Filter lists users by role and status; empty arguments are not sent.
func (u *Users) Filter(ctx context.Context, role models.Role, status models.DriverStatus) ([]models.UserProfile, error) {
	params := url.Values{}
	if role != "" {
		params.Set("role", string(role))
	}
	if status != "" {
		params.Set("status", string(status))
	}

	var raw json.RawMessage
	if err := u.client.Get(ctx, "/auth/users/filter?"+params.Encode(), &raw); err != nil {
		return nil, err
	}
	ws, err := decodeList[wireUser](raw, "users")
	if err != nil {
		return nil, err
	}
	return usersFrom(ws), nil
}

// Drivers is List narrowed to the driver role.
func (u *Users) Drivers(ctx context.Context) ([]models.UserProfile, error) {
	all, err := u.List(ctx)
	if err != nil {
		return nil, err
	}
	drivers := make([]models.UserProfile, 0, len(all))
	for _, user := range all {
		if user.Role == models.RoleDriver {
			drivers = append(drivers, user)
		}
	}
	return drivers, nil
}

type UserUpdate struct {
	Area   string              `json:"area,omitempty"`
	Status models.DriverStatus `json:"status,omitempty"`
}

func (u *Users) Update(ctx context.Context, id string, update UserUpdate) (*models.UserProfile, error) {
	var raw json.RawMessage
	if err := u.client.Put(ctx, "/auth/users/"+url.PathEscape(id), update, &raw); err != nil {
		return nil, err
	}
	user, err := decodeOne[wireUser](raw, "user")
	if err != nil || user == nil {
		return nil, err
	}
	profile := user.model()
	return &profile, nil
}
