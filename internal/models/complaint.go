package models

import (
	"regexp"
	"strings"
	"time"
)

type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in-progress"
	ComplaintCompleted  ComplaintStatus = "completed"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintPending, ComplaintInProgress, ComplaintCompleted:
		return true
	}
	return false
}

type Bin struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"binName"`
	Location string `json:"location,omitempty"`
}

type Complaint struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Status      ComplaintStatus `json:"status"`
	User        *UserProfile    `json:"user,omitempty"`
	Bin         *Bin            `json:"bin,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	ResolvedAt  *time.Time      `json:"resolvedAt,omitempty"`
}

// NewComplaint is the body of POST /complaints.
type NewComplaint struct {
	User         string `json:"user"`
	Description  string `json:"description"`
	SuggestedBin bool   `json:"suggestedBin"`
}

var locationSuffix = regexp.MustCompile(`- Location:\s*(.+)$`)

// ComposeComplaintDescription builds "[type] description - Location: X".
func ComposeComplaintDescription(wasteType, description, location string) string {
	var b strings.Builder
	if wasteType != "" {
		b.WriteString("[" + wasteType + "] ")
	}
	b.WriteString(description)
	if location != "" {
		b.WriteString(" - Location: " + location)
	}
	return b.String()
}

// SplitLocation separates the trailing "- Location: X" from a complaint
// description. Without the suffix it falls back to the bin location.
func (c *Complaint) SplitLocation() (location, description string) {
	m := locationSuffix.FindStringSubmatchIndex(c.Description)
	if m != nil {
		return strings.TrimSpace(c.Description[m[2]:m[3]]), strings.TrimSpace(c.Description[:m[0]])
	}
	if c.Bin != nil {
		loc := c.Bin.Location
		if loc == "" {
			loc = "Location not specified"
		}
		return c.Bin.Name + " - " + loc, c.Description
	}
	return "No location specified", c.Description
}
