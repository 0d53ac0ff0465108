package models

import "time"

// CycleStatus tracks where a cycle is in its lifecycle.
type CycleStatus string

const (
	CyclePlanning  CycleStatus = "planning"
	CycleActive    CycleStatus = "active"
	CycleCompleted CycleStatus = "completed"
)

// InterventionCycle bounds bulk scheduling to an inclusive date range.
type InterventionCycle struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	StartDate time.Time   `db:"start_date" json:"start_date"`
	EndDate   time.Time   `db:"end_date" json:"end_date"`
	Status    CycleStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}
