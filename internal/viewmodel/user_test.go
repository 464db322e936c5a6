package viewmodel

import (
	"context"
	"errors"
	"testing"

	"swms-portal/internal/models"
	"swms-portal/internal/notify"
)

func citizen() models.UserProfile {
	return models.UserProfile{ID: "u1", FirstName: "Asha", Email: "a@x.com", Role: models.RoleUser}
}

func TestUserNotificationsTrackStatusChanges(t *testing.T) {
	f := newFixture(citizen())
	f.schedules.mine = []models.ScheduleRequest{{ID: "s1", Status: models.SchedulePending}}

	vm := NewUserDashboard(f.deps, "u1")
	ctx := context.Background()
	vm.Load(ctx)
	if n := vm.Snapshot().Notifications; len(n) != 1 || n[0].ID != "s1" {
		t.Fatalf("unexpected first notifications %+v", n)
	}

	f.schedules.mu.Lock()
	f.schedules.mine = []models.ScheduleRequest{{ID: "s1", Status: models.ScheduleApproved, Date: "2024-03-05", Time: "9:00 AM"}}
	f.schedules.mu.Unlock()
	vm.Load(ctx)

	n := vm.Snapshot().Notifications
	if len(n) != 2 || n[0].ID != notify.StatusChangeID {
		t.Fatalf("expected status change first, got %+v", n)
	}
}

func TestUserScheduleFailureShowsError(t *testing.T) {
	f := newFixture(citizen())
	f.schedules.mine = []models.ScheduleRequest{{ID: "s1", Status: models.SchedulePending}}
	vm := NewUserDashboard(f.deps, "u1")
	ctx := context.Background()
	vm.Load(ctx)

	f.schedules.mu.Lock()
	f.schedules.err = errBackend
	f.schedules.mu.Unlock()
	vm.Load(ctx)

	state := vm.Snapshot()
	if len(state.Notifications) != 1 || state.Notifications[0].ID != notify.ErrorID {
		t.Fatalf("expected single error notification, got %+v", state.Notifications)
	}
	if len(state.Schedules) != 1 {
		t.Fatalf("expected previous schedules kept, got %+v", state.Schedules)
	}
	if len(state.Locations) != 2 {
		t.Fatalf("expected locations from the catalog, got %v", state.Locations)
	}
}

func TestSubmitComplaintComposesDescription(t *testing.T) {
	f := newFixture(citizen())
	vm := NewUserDashboard(f.deps, "u1")

	_, err := vm.SubmitComplaint(context.Background(), ComplaintForm{Type: "Plastic", Description: "overflowing", Location: "Wadi"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	got := f.complaints.submitted[0]
	if got.User != "u1" || got.Description != "[Plastic] overflowing - Location: Wadi" || !got.SuggestedBin {
		t.Fatalf("unexpected complaint %+v", got)
	}
}

func TestSubmitComplaintValidation(t *testing.T) {
	f := newFixture(citizen())
	vm := NewUserDashboard(f.deps, "u1")

	_, err := vm.SubmitComplaint(context.Background(), ComplaintForm{Description: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "location" {
		t.Fatalf("expected location validation error, got %v", err)
	}

	f.deps.Sessions.Clear()
	if _, err := vm.SubmitComplaint(context.Background(), ComplaintForm{Description: "x", Location: "y"}); !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestSubmitScheduleMapsAddress(t *testing.T) {
	f := newFixture(citizen())
	vm := NewUserDashboard(f.deps, "u1")

	_, err := vm.SubmitSchedule(context.Background(), ScheduleForm{
		Date: "2024-03-05", Time: "9:00 AM", Reason: "furniture", WasteType: "bulky", Address: "12 MG Road",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	got := f.schedules.submitted[0]
	if got.Location != "12 MG Road" || got.User != "u1" {
		t.Fatalf("unexpected request %+v", got)
	}

	_, err = vm.SubmitSchedule(context.Background(), ScheduleForm{Date: "2024-03-05"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "time" {
		t.Fatalf("expected time validation error, got %v", err)
	}
}
