package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"swms-portal/internal/models"
	"swms-portal/internal/storage"
)

// CompletionLogKey is the local storage key holding the completion log.
const CompletionLogKey = "completedTasks"

// CompletionLog is the append-only record of completed area stops.
type CompletionLog interface {
	// ForDriver returns the records of one driver in append order.
	ForDriver(ctx context.Context, driverID string) ([]models.CompletionRecord, error)
	// Append stores rec unless the driver already completed that sub-area
	// of that area, in which case it returns the existing record and false.
	// A blank area on either side matches any area.
	Append(ctx context.Context, rec models.CompletionRecord) (models.CompletionRecord, bool, error)
}

// prepare fills the id and timestamp of a new record.
func prepare(rec models.CompletionRecord) models.CompletionRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	return rec
}

func sameStop(a, b models.CompletionRecord) bool {
	if a.DriverID != b.DriverID || a.Location != b.Location {
		return false
	}
	return a.Area == "" || b.Area == "" || a.Area == b.Area
}

// LocalLog keeps the completion log as a JSON array in local storage, the
// same place the session lives.
type LocalLog struct {
	local storage.Local
	mu    sync.Mutex
}

func NewLocalLog(local storage.Local) *LocalLog {
	return &LocalLog{local: local}
}

func (l *LocalLog) ForDriver(ctx context.Context, driverID string) ([]models.CompletionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := l.load()
	mine := make([]models.CompletionRecord, 0, len(all))
	for _, rec := range all {
		if rec.DriverID == driverID {
			mine = append(mine, rec)
		}
	}
	return mine, nil
}

func (l *LocalLog) Append(ctx context.Context, rec models.CompletionRecord) (models.CompletionRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all := l.load()
	for _, existing := range all {
		if sameStop(existing, rec) {
			return existing, false, nil
		}
	}

	rec = prepare(rec)
	all = append(all, rec)

	data, err := json.Marshal(all)
	if err != nil {
		return models.CompletionRecord{}, false, fmt.Errorf("failed to encode completion log: %w", err)
	}
	if err := l.local.SetItem(CompletionLogKey, string(data)); err != nil {
		return models.CompletionRecord{}, false, fmt.Errorf("failed to save completion log: %w", err)
	}

	log.Printf("✅ Stop completed: %s / %s (driver %s)", rec.Area, rec.Location, rec.DriverID)
	return rec, true, nil
}

// load reads the whole log. A corrupt log reads as empty.
func (l *LocalLog) load() []models.CompletionRecord {
	raw, ok := l.local.GetItem(CompletionLogKey)
	if !ok || raw == "" {
		return nil
	}
	var all []models.CompletionRecord
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		log.Printf("⚠️  Ignoring unreadable completion log: %v", err)
		return nil
	}
	return all
}
