package gateway

import (
	"context"
	"encoding/json"
	"net/url"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/models"
)

type Schedules struct {
	client *apiclient.Client
}

func NewSchedules(client *apiclient.Client) *Schedules {
	return &Schedules{client: client}
}

// List returns all custom pickup requests (admin).
func (s *Schedules) List(ctx context.Context) ([]models.ScheduleRequest, error) {
	return s.list(ctx, "/schedules")
}

// Assigned returns the requests assigned to the calling driver.
func (s *Schedules) Assigned(ctx context.Context) ([]models.ScheduleRequest, error) {
	return s.list(ctx, "/schedules/assigned")
}

// Mine returns the calling user's own requests.
func (s *Schedules) Mine(ctx context.Context) ([]models.ScheduleRequest, error) {
	return s.list(ctx, "/schedules/my")
}

func (s *Schedules) list(ctx context.Context, path string) ([]models.ScheduleRequest, error) {
	var raw json.RawMessage
	if err := s.client.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	ws, err := decodeList[wireSchedule](raw, "schedules")
	if err != nil {
		return nil, err
	}
	return schedulesFrom(ws), nil
}

func (s *Schedules) Submit(ctx context.Context, req models.NewScheduleRequest) (*models.ScheduleRequest, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, "/schedules", req, &raw); err != nil {
		return nil, err
	}
	return scheduleFrom(raw)
}

func (s *Schedules) Update(ctx context.Context, id string, update models.ScheduleUpdate) (*models.ScheduleRequest, error) {
	var raw json.RawMessage
	if err := s.client.Put(ctx, "/schedules/"+url.PathEscape(id), update, &raw); err != nil {
		return nil, err
	}
	return scheduleFrom(raw)
}

func scheduleFrom(raw json.RawMessage) (*models.ScheduleRequest, error) {
	w, err := decodeOne[wireSchedule](raw, "schedule")
	if err != nil || w == nil {
		return nil, err
	}
	schedule := w.model()
	return &schedule, nil
}
