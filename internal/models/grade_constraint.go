package models

import "time"

// ConstraintType classifies why a grade is unavailable during a window.
type ConstraintType string

const (
	ConstraintLunch           ConstraintType = "lunch"
	ConstraintCoreInstruction ConstraintType = "core_instruction"
	ConstraintSpecials        ConstraintType = "specials"
	ConstraintTherapy         ConstraintType = "therapy"
	ConstraintOther           ConstraintType = "other"
)

// Valid reports whether the constraint type is known.
func (t ConstraintType) Valid() bool {
	switch t {
	case ConstraintLunch, ConstraintCoreInstruction, ConstraintSpecials, ConstraintTherapy, ConstraintOther:
		return true
	}
	return false
}

// GradeLevelConstraint marks a recurring window where a grade cannot be pulled out.
type GradeLevelConstraint struct {
	ID        string          `db:"id" json:"id"`
	Grade     int             `db:"grade" json:"grade"`
	Label     string          `db:"label" json:"label"`
	Type      ConstraintType  `db:"type" json:"type"`
	Schedule  WeeklyTimeBlock `db:"schedule" json:"schedule"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
