package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// ErrSlotTaken is returned by Create when the group already holds a live session at that date and time.
var ErrSlotTaken = errors.New("session slot already taken")

const uniqueViolation = "23505"

const sessionColumns = `id, group_id, date, start_time, status, curriculum_position, duration_minutes, notes, created_at, updated_at`

// SessionRepository persists group sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ListByGroup returns every session of the group, cancelled ones included.
func (r *SessionRepository) ListByGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE group_id = $1 ORDER BY date, start_time`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, groupID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// MaxCurriculumPosition returns the highest position booked for the group, or 0.
func (r *SessionRepository) MaxCurriculumPosition(ctx context.Context, groupID string) (int, error) {
	const query = `SELECT COALESCE(MAX(curriculum_position), 0) FROM sessions WHERE group_id = $1 AND status <> 'cancelled'`
	var max int
	if err := r.db.GetContext(ctx, &max, query, groupID); err != nil {
		return 0, fmt.Errorf("max curriculum position: %w", err)
	}
	return max, nil
}

// Create inserts a session, assigning id and timestamps.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionPlanned
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO sessions (id, group_id, date, start_time, status, curriculum_position, duration_minutes, notes, created_at, updated_at)
		VALUES (:id, :group_id, :date, :start_time, :status, :curriculum_position, :duration_minutes, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrSlotTaken
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}
