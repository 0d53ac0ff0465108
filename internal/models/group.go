package models

import "time"

// DefaultSessionMinutes applies when neither the session nor its group carries a duration.
const DefaultSessionMinutes = 30

// InterventionGroup is a set of students pulled out together for sessions.
type InterventionGroup struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Grade             int       `db:"grade" json:"grade"`
	InterventionistID *string   `db:"interventionist_id" json:"interventionist_id,omitempty"`
	SessionDuration   *int      `db:"session_duration" json:"session_duration,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// HasInterventionist reports whether availability checks apply to the group.
func (g InterventionGroup) HasInterventionist() bool {
	return g.InterventionistID != nil && *g.InterventionistID != ""
}

// DurationOr returns the group's configured session length or fallback.
func (g InterventionGroup) DurationOr(fallback int) int {
	if g.SessionDuration != nil && *g.SessionDuration > 0 {
		return *g.SessionDuration
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultSessionMinutes
}
