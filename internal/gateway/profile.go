package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/models"
)

type Profile struct {
	client *apiclient.Client
}

func NewProfile(client *apiclient.Client) *Profile {
	return &Profile{client: client}
}

// Get fetches the caller's own profile.
func (p *Profile) Get(ctx context.Context) (*models.UserProfile, error) {
	var raw json.RawMessage
	if err := p.client.Get(ctx, "/profile", &raw); err != nil {
		return nil, err
	}
	return profileFrom(raw)
}

func (p *Profile) Update(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	var raw json.RawMessage
	if err := p.client.Put(ctx, "/profile", update, &raw); err != nil {
		return nil, err
	}
	return profileFrom(raw)
}

type driverStatusRequest struct {
	Email  string              `json:"email"`
	Status models.DriverStatus `json:"status"`
}

// UpdateDriverStatus sets a driver active or inactive and returns the
// status the backend settled on.
func (p *Profile) UpdateDriverStatus(ctx context.Context, email string, status models.DriverStatus) (models.DriverStatus, error) {
	var resp struct {
		Status models.DriverStatus `json:"status"`
	}
	if err := p.client.Put(ctx, "/driver/status", driverStatusRequest{Email: email, Status: status}, &resp); err != nil {
		return "", err
	}
	if resp.Status == "" {
		return status, nil
	}
	return resp.Status, nil
}

func profileFrom(raw json.RawMessage) (*models.UserProfile, error) {
	user, err := decodeOne[wireUser](raw, "user")
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("profile response is empty")
	}
	profile := user.model()
	return &profile, nil
}
