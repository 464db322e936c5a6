package gateway

import (
	"context"
	"encoding/json"
	"net/url"

	"swms-portal/internal/apiclient"
	"swms-portal/internal/models"
)

type Complaints struct {
	client *apiclient.Client
}

func NewComplaints(client *apiclient.Client) *Complaints {
	return &Complaints{client: client}
}

// List returns every complaint (admin).
func (c *Complaints) List(ctx context.Context) ([]models.Complaint, error) {
	return c.list(ctx, "/complaints")
}

// Mine returns the caller's own complaints.
func (c *Complaints) Mine(ctx context.Context) ([]models.Complaint, error) {
	return c.list(ctx, "/complaints/my")
}

func (c *Complaints) Pending(ctx context.Context) ([]models.Complaint, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]models.Complaint, 0, len(all))
	for _, complaint := range all {
		if complaint.Status == models.ComplaintPending {
			pending = append(pending, complaint)
		}
	}
	return pending, nil
}

func (c *Complaints) list(ctx context.Context, path string) ([]models.Complaint, error) {
	var raw json.RawMessage
	if err := c.client.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	ws, err := decodeList[wireComplaint](raw, "complaints")
	if err != nil {
		return nil, err
	}
	return complaintsFrom(ws), nil
}

func (c *Complaints) Submit(ctx context.Context, complaint models.NewComplaint) (*models.Complaint, error) {
	var raw json.RawMessage
	if err := c.client.Post(ctx, "/complaints", complaint, &raw); err != nil {
		return nil, err
	}
	return complaintFrom(raw)
}

func (c *Complaints) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	var raw json.RawMessage
	body := map[string]models.ComplaintStatus{"status": status}
	if err := c.client.Put(ctx, "/complaints/"+url.PathEscape(id), body, &raw); err != nil {
		return nil, err
	}
	return complaintFrom(raw)
}

func complaintFrom(raw json.RawMessage) (*models.Complaint, error) {
	w, err := decodeOne[wireComplaint](raw, "complaint")
	if err != nil || w == nil {
		return nil, err
	}
	complaint := w.model()
	return &complaint, nil
}
