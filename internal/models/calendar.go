package models

import (
	"time"

	"github.com/lib/pq"
)

// NonStudentDayType enumerates calendar events that keep students out of pull-out sessions.
type NonStudentDayType string

const (
	DayHoliday          NonStudentDayType = "holiday"
	DayPD               NonStudentDayType = "pd_day"
	DayInstitute        NonStudentDayType = "institute_day"
	DayEarlyDismissal   NonStudentDayType = "early_dismissal"
	DayLateStart        NonStudentDayType = "late_start"
	DayTesting          NonStudentDayType = "testing_day"
	DayEmergencyClosure NonStudentDayType = "emergency_closure"
	DayBreak            NonStudentDayType = "break"
)

// NonStudentDayTypes lists every known event type.
var NonStudentDayTypes = []NonStudentDayType{
	DayHoliday, DayPD, DayInstitute, DayEarlyDismissal,
	DayLateStart, DayTesting, DayEmergencyClosure, DayBreak,
}

// Valid reports whether the type is known.
func (t NonStudentDayType) Valid() bool {
	for _, known := range NonStudentDayTypes {
		if known == t {
			return true
		}
	}
	return false
}

// SchoolCalendarEvent is a non-student day or an inclusive range of them.
// A nil AffectsGrades means the event applies to every grade.
type SchoolCalendarEvent struct {
	ID                string            `db:"id" json:"id"`
	Date              time.Time         `db:"date" json:"date"`
	EndDate           *time.Time        `db:"end_date" json:"end_date,omitempty"`
	Type              NonStudentDayType `db:"type" json:"type"`
	Title             string            `db:"title" json:"title"`
	AffectsGrades     pq.Int64Array     `db:"affects_grades" json:"affects_grades"`
	ModifiedStartTime *string           `db:"modified_start_time" json:"modified_start_time,omitempty"`
	ModifiedEndTime   *string           `db:"modified_end_time" json:"modified_end_time,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// Affects reports whether the event applies to the grade.
func (e SchoolCalendarEvent) Affects(grade int) bool {
	if e.AffectsGrades == nil {
		return true
	}
	for _, g := range e.AffectsGrades {
		if int(g) == grade {
			return true
		}
	}
	return false
}
