package models

import "time"

// SessionStatus describes the lifecycle of a session.
type SessionStatus string

const (
	SessionPlanned   SessionStatus = "planned"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is one booked meeting of a group on a date at a start time.
type Session struct {
	ID                 string        `db:"id" json:"id"`
	GroupID            string        `db:"group_id" json:"group_id"`
	Date               time.Time     `db:"date" json:"date"`
	Time               string        `db:"start_time" json:"time"`
	Status             SessionStatus `db:"status" json:"status"`
	CurriculumPosition *int          `db:"curriculum_position" json:"curriculum_position,omitempty"`
	DurationMinutes    *int          `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Notes              *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// Occupies reports whether the session still holds its slot.
func (s Session) Occupies() bool {
	return s.Status != SessionCancelled
}

// Duration resolves the session length against the group default.
func (s Session) Duration(fallback int) int {
	if s.DurationMinutes != nil && *s.DurationMinutes > 0 {
		return *s.DurationMinutes
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultSessionMinutes
}
