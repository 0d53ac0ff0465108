package models

// ConflictType is the closed set of reasons a candidate slot is unsuitable.
type ConflictType string

const (
	ConflictExistingSession            ConflictType = "existing_session"
	ConflictInterventionistUnavailable ConflictType = "interventionist_unavailable"
	ConflictGradeConstraint            ConflictType = "grade_constraint"
	ConflictNonStudentDay              ConflictType = "non_student_day"
)

// Blocking reports whether the conflict excludes a slot outright instead of lowering its rank.
func (t ConflictType) Blocking() bool {
	return t == ConflictNonStudentDay
}

// HardAtCommit reports whether the conflict prevents a session from being created.
func (t ConflictType) HardAtCommit() bool {
	switch t {
	case ConflictExistingSession, ConflictInterventionistUnavailable, ConflictNonStudentDay:
		return true
	}
	return false
}

// Conflict explains one reason a slot or date collides with something.
type Conflict struct {
	Type        ConflictType `json:"type"`
	Description string       `json:"description"`
}
