package tasks

import (
	"context"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"swms-portal/internal/models"
	"swms-portal/internal/storage"
)

func statuses(stops []models.AreaStopTask) []models.StopStatus {
	out := make([]models.StopStatus, len(stops))
	for i, s := range stops {
		out[i] = s.Status
	}
	return out
}

func TestSlotTimes(t *testing.T) {
	want := []string{"8:00 AM", "9:30 AM", "11:00 AM", "12:30 PM", "2:00 PM"}
	for i, w := range want {
		if got := SlotTime(i); got != w {
			t.Fatalf("slot %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestDeriveStops(t *testing.T) {
	stops := DeriveStops([]string{"S1", "S2", "S3"})
	want := []models.StopStatus{models.StopInProgress, models.StopPending, models.StopPending}
	if got := statuses(stops); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if stops[2].Stop != 3 || stops[2].Time != "11:00 AM" {
		t.Fatalf("unexpected third stop %+v", stops[2])
	}
}

func TestAlkapuriOutOfOrder(t *testing.T) {
	ctx := context.Background()
	log := NewLocalLog(storage.NewMemory())
	stops := DeriveStops([]string{"Society 1", "Society 2", "Society 3"})

	complete := func(loc string) []models.AreaStopTask {
		if _, _, err := log.Append(ctx, models.CompletionRecord{DriverID: "d1", Area: "Alkapuri", Location: loc}); err != nil {
			t.Fatalf("append: %v", err)
		}
		recs, err := log.ForDriver(ctx, "d1")
		if err != nil {
			t.Fatalf("for driver: %v", err)
		}
		return Reconcile(stops, "Alkapuri", recs)
	}

	got := statuses(complete("Society 1"))
	want := []models.StopStatus{models.StopCompleted, models.StopInProgress, models.StopPending}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after stop 1: expected %v, got %v", want, got)
	}

	got = statuses(complete("Society 3"))
	want = []models.StopStatus{models.StopCompleted, models.StopInProgress, models.StopCompleted}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("after stop 3: expected %v, got %v", want, got)
	}
}

func TestReconcileSingleInProgress(t *testing.T) {
	locs := []string{"A", "B", "C", "D", "E", "F"}
	stops := DeriveStops(locs)
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		var recs []models.CompletionRecord
		for _, loc := range locs {
			if rng.Intn(2) == 0 {
				recs = append(recs, models.CompletionRecord{DriverID: "d", Area: "X", Location: loc})
			}
		}

		out := Reconcile(stops, "X", recs)
		inProgress := 0
		firstOpen := -1
		for i, s := range out {
			if s.Status != models.StopCompleted && firstOpen < 0 {
				firstOpen = i
			}
			if s.Status == models.StopInProgress {
				inProgress++
				if i != firstOpen {
					t.Fatalf("round %d: In Progress at %d, first open is %d", round, i, firstOpen)
				}
			}
		}
		if (firstOpen < 0 && inProgress != 0) || (firstOpen >= 0 && inProgress != 1) {
			t.Fatalf("round %d: %d stops In Progress in %v", round, inProgress, statuses(out))
		}
	}
}

func TestReconcileIgnoresOtherAreas(t *testing.T) {
	stops := DeriveStops([]string{"Society A", "Society B"})
	recs := []models.CompletionRecord{{DriverID: "d", Area: "Manjalpur", Location: "Society A"}}

	got := statuses(Reconcile(stops, "Wadi", recs))
	want := []models.StopStatus{models.StopInProgress, models.StopPending}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestAppendIsIdempotent(t *testing.T) {
	ctx := context.Background()
	log := NewLocalLog(storage.NewMemory())
	rec := models.CompletionRecord{DriverID: "d1", Area: "Wadi", Location: "Colony 1"}

	first, added, err := log.Append(ctx, rec)
	if err != nil || !added {
		t.Fatalf("expected first append to add, got %v %v", added, err)
	}
	if first.ID == "" || first.CompletedAt.IsZero() {
		t.Fatalf("expected id and timestamp filled, got %+v", first)
	}

	second, added, err := log.Append(ctx, rec)
	if err != nil || added {
		t.Fatalf("expected duplicate to be a no-op, got %v %v", added, err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing record back, got %s", second.ID)
	}

	recs, _ := log.ForDriver(ctx, "d1")
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if other, _ := log.ForDriver(ctx, "d2"); len(other) != 0 {
		t.Fatalf("expected no records for d2, got %d", len(other))
	}
}

func TestAppendBlankAreaMatchesAnyArea(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name          string
		first, second string
	}{
		{"blank then named", "", "Wadi"},
		{"named then blank", "Wadi", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := NewLocalLog(storage.NewMemory())
			first, added, err := log.Append(ctx, models.CompletionRecord{DriverID: "d1", Area: tc.first, Location: "Colony 1"})
			if err != nil || !added {
				t.Fatalf("expected first append to add, got %v %v", added, err)
			}
			second, added, err := log.Append(ctx, models.CompletionRecord{DriverID: "d1", Area: tc.second, Location: "Colony 1"})
			if err != nil || added {
				t.Fatalf("expected second append to match the first, got %v %v", added, err)
			}
			if second.ID != first.ID {
				t.Fatalf("expected existing record back, got %s", second.ID)
			}
			if _, added, _ := log.Append(ctx, models.CompletionRecord{DriverID: "d1", Area: "Alkapuri", Location: "Colony 2"}); !added {
				t.Fatalf("expected a different sub-area to add")
			}
			if recs, _ := log.ForDriver(ctx, "d1"); len(recs) != 2 {
				t.Fatalf("expected 2 records, got %d", len(recs))
			}
		})
	}
}

func TestCorruptLogReadsEmpty(t *testing.T) {
	local := storage.NewMemory()
	local.SetItem(CompletionLogKey, "{not json")

	recs, err := NewLocalLog(local).ForDriver(context.Background(), "d1")
	if err != nil || len(recs) != 0 {
		t.Fatalf("expected empty log, got %v %v", recs, err)
	}
}

func TestCombineTasks(t *testing.T) {
	stops := []models.AreaStopTask{
		{Stop: 1, Location: "S1", Time: "8:00 AM", Status: models.StopCompleted},
		{Stop: 2, Location: "S2", Time: "9:30 AM", Status: models.StopInProgress},
	}
	schedules := []models.ScheduleRequest{
		{ID: "p", Status: models.SchedulePending},
		{ID: "r", Status: models.ScheduleRejected},
		{ID: "a", Status: models.ScheduleApproved, Reason: "sofa", User: &models.UserProfile{FirstName: "Asha", LastName: "Patel", Email: "a@x.com"}},
		{ID: "c", Status: models.ScheduleCompleted},
	}

	got := CombineTasks(stops, schedules)
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks, got %d: %+v", len(got), got)
	}
	if got[0].Type != models.TaskTypeArea || got[0].Location != "S2" {
		t.Fatalf("expected open area stop first, got %+v", got[0])
	}
	if got[1].Status != "Approved" || got[1].UserName != "Asha Patel" || got[1].Location != "Custom Location" || got[1].Time != "Flexible" {
		t.Fatalf("unexpected custom task %+v", got[1])
	}
	if got[2].Status != "Completed" || got[2].UserName != "Unknown User" {
		t.Fatalf("unexpected completed task %+v", got[2])
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	now := time.Now()
	recs := []models.CompletionRecord{
		{ID: "1", DriverID: "d", CompletedAt: now.Add(-2 * time.Hour)},
		{ID: "2", DriverID: "x", CompletedAt: now},
		{ID: "3", DriverID: "d", CompletedAt: now.Add(-time.Hour)},
	}

	got := History("d", recs)
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "1" {
		t.Fatalf("unexpected history %+v", got)
	}
}
