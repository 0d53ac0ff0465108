package dto

import "github.com/noah-isme/intervention-planner-api/internal/models"

// CreateCalendarEventRequest adds a non-student day or range.
type CreateCalendarEventRequest struct {
	Date              string                   `json:"date" validate:"required,datetime=2006-01-02"`
	EndDate           *string                  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Type              models.NonStudentDayType `json:"type" validate:"required"`
	Title             string                   `json:"title" validate:"required,max=200"`
	AffectsGrades     []int64                  `json:"affectsGrades" validate:"omitempty,dive,min=0,max=12"`
	ModifiedStartTime *string                  `json:"modifiedStartTime" validate:"omitempty,hhmm"`
	ModifiedEndTime   *string                  `json:"modifiedEndTime" validate:"omitempty,hhmm"`
}

// CalendarEventQuery filters listed events by an inclusive date window.
type CalendarEventQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// CalendarImportResult summarises an ICS import.
type CalendarImportResult struct {
	Imported int                          `json:"imported"`
	Skipped  int                          `json:"skipped"`
	Events   []models.SchoolCalendarEvent `json:"events"`
}
