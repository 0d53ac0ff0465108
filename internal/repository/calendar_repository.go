package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

const calendarColumns = `id, date, end_date, type, title, affects_grades, modified_start_time, modified_end_time, created_at, updated_at`

const insertCalendarEvent = `INSERT INTO school_calendar_events (id, date, end_date, type, title, affects_grades, modified_start_time, modified_end_time, created_at, updated_at)
	VALUES (:id, :date, :end_date, :type, :title, :affects_grades, :modified_start_time, :modified_end_time, :created_at, :updated_at)`

// CalendarRepository persists non-student days.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListAll returns every event ordered by start date.
func (r *CalendarRepository) ListAll(ctx context.Context) ([]models.SchoolCalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM school_calendar_events ORDER BY date, title`
	var events []models.SchoolCalendarEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// ListBetween returns events touching the inclusive window [from, to].
func (r *CalendarRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.SchoolCalendarEvent, error) {
	query := `SELECT ` + calendarColumns + ` FROM school_calendar_events
		WHERE date <= $2 AND COALESCE(end_date, date) >= $1
		ORDER BY date, title`
	var events []models.SchoolCalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, from, to); err != nil {
		return nil, fmt.Errorf("list calendar events between: %w", err)
	}
	return events, nil
}

// Create inserts one event.
func (r *CalendarRepository) Create(ctx context.Context, event *models.SchoolCalendarEvent) error {
	stampEvent(event, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertCalendarEvent, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// CreateBatch inserts events atomically.
func (r *CalendarRepository) CreateBatch(ctx context.Context, events []models.SchoolCalendarEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin calendar import tx: %w", err)
	}
	now := time.Now().UTC()
	for i := range events {
		stampEvent(&events[i], now)
		if _, err := tx.NamedExecContext(ctx, insertCalendarEvent, events[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("import calendar event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit calendar import tx: %w", err)
	}
	return nil
}

// Delete removes an event, returning sql.ErrNoRows when absent.
func (r *CalendarRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM school_calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check calendar delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func stampEvent(event *models.SchoolCalendarEvent, now time.Time) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.CreatedAt = now
	event.UpdatedAt = now
}
