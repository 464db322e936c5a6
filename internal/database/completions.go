package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"swms-portal/internal/models"
)

// CompletionLog stores completed area stops in Postgres so the history
// follows the driver across devices.
type CompletionLog struct {
	db *sqlx.DB
}

func NewCompletionLog(db *sqlx.DB) *CompletionLog {
	return &CompletionLog{db: db}
}

func (l *CompletionLog) ForDriver(ctx context.Context, driverID string) ([]models.CompletionRecord, error) {
	var records []models.CompletionRecord
	query := `SELECT id, driver_id, title, area, subarea, completed_at
	          FROM completed_area_tasks
	          WHERE driver_id = $1
	          ORDER BY completed_at ASC`

	if err := l.db.SelectContext(ctx, &records, query, driverID); err != nil {
		return nil, fmt.Errorf("failed to get completed tasks: %w", err)
	}
	return records, nil
}

// Append inserts rec unless the driver already completed that sub-area.
// Records without an area match any area, as in the local log. The stored
// record is returned with false in that case.
func (l *CompletionLog) Append(ctx context.Context, rec models.CompletionRecord) (models.CompletionRecord, bool, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.CompletionRecord{}, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, found, err := findStop(ctx, tx, rec)
	if err != nil {
		return models.CompletionRecord{}, false, err
	}
	if found {
		return existing, false, nil
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}

	query := `INSERT INTO completed_area_tasks (id, driver_id, title, area, subarea, completed_at)
	          VALUES (:id, :driver_id, :title, :area, :subarea, :completed_at)
	          ON CONFLICT (driver_id, area, subarea) DO NOTHING`

	result, err := tx.NamedExecContext(ctx, query, rec)
	if err != nil {
		return models.CompletionRecord{}, false, fmt.Errorf("failed to insert completed task: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Lost a race with another portal for the exact same stop.
		existing, found, err := findStop(ctx, tx, rec)
		if err != nil {
			return models.CompletionRecord{}, false, err
		}
		if !found {
			return models.CompletionRecord{}, false, fmt.Errorf("completed task vanished after conflict")
		}
		return existing, false, nil
	}

	if err := tx.Commit(); err != nil {
		return models.CompletionRecord{}, false, fmt.Errorf("failed to commit completed task: %w", err)
	}
	log.Printf("✅ Stop completed: %s / %s (driver %s)", rec.Area, rec.Location, rec.DriverID)
	return rec, true, nil
}

func findStop(ctx context.Context, tx *sqlx.Tx, rec models.CompletionRecord) (models.CompletionRecord, bool, error) {
	var existing models.CompletionRecord
	err := tx.GetContext(ctx, &existing,
		`SELECT id, driver_id, title, area, subarea, completed_at
		 FROM completed_area_tasks
		 WHERE driver_id = $1 AND subarea = $2 AND (area = $3 OR area = '' OR $3 = '')
		 ORDER BY completed_at ASC
		 LIMIT 1`,
		rec.DriverID, rec.Location, rec.Area)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CompletionRecord{}, false, nil
	}
	if err != nil {
		return models.CompletionRecord{}, false, fmt.Errorf("failed to load completed task: %w", err)
	}
	return existing, true, nil
}

// LogSummary counts what the completion log currently holds.
type LogSummary struct {
	Records int `db:"records"`
	Drivers int `db:"drivers"`
	Areas   int `db:"areas"`
}

func (l *CompletionLog) Summary(ctx context.Context) (LogSummary, error) {
	var summary LogSummary
	query := `SELECT COUNT(*) AS records,
	                 COUNT(DISTINCT driver_id) AS drivers,
	                 COUNT(DISTINCT area) AS areas
	          FROM completed_area_tasks`

	if err := l.db.GetContext(ctx, &summary, query); err != nil {
		return LogSummary{}, fmt.Errorf("failed to summarize completed tasks: %w", err)
	}
	return summary, nil
}
