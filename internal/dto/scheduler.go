package dto

import "github.com/noah-isme/intervention-planner-api/internal/models"

// SuggestionRequest asks for ranked weekly slots for a group.
type SuggestionRequest struct {
	SessionsPerWeek int    `json:"sessionsPerWeek" validate:"min=0,max=5"`
	SessionDuration int    `json:"sessionDuration" validate:"omitempty,min=5,max=240"`
	StartHour       *int   `json:"startHour" validate:"omitempty,min=0,max=23"`
	EndHour         *int   `json:"endHour" validate:"omitempty,min=1,max=24"`
	StepMinutes     int    `json:"stepMinutes" validate:"omitempty,min=5,max=60"`
	WeekOf          string `json:"weekOf" validate:"omitempty,datetime=2006-01-02"`
}

// SuggestedTimeSlot is a recurring weekly candidate with every conflict it carries.
type SuggestedTimeSlot struct {
	Day       models.WeekDay    `json:"day"`
	Date      string            `json:"date,omitempty"`
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Conflicts []models.Conflict `json:"conflicts"`
	Blocked   bool              `json:"blocked"`
}

// SuggestionResponse returns the ranked grid and the default pick.
type SuggestionResponse struct {
	GroupID         string              `json:"groupId"`
	WeekOf          string              `json:"weekOf"`
	SessionDuration int                 `json:"sessionDuration"`
	Slots           []SuggestedTimeSlot `json:"slots"`
	Selected        []SuggestedTimeSlot `json:"selected"`
}

// CycleScheduleRequest previews sessions for a group across a cycle.
type CycleScheduleRequest struct {
	CycleID         string           `json:"cycleId" validate:"required"`
	SessionDuration int              `json:"sessionDuration" validate:"omitempty,min=5,max=240"`
	PreferredDays   []models.WeekDay `json:"preferredDays" validate:"omitempty,dive,weekday"`
	PreferredTime   string           `json:"preferredTime" validate:"required,hhmm"`
	StartHour       *int             `json:"startHour" validate:"omitempty,min=0,max=23"`
	EndHour         *int             `json:"endHour" validate:"omitempty,min=1,max=24"`
}

// ScheduledSession is one candidate date in a cycle preview.
type ScheduledSession struct {
	Date      string            `json:"date"`
	Day       models.WeekDay    `json:"day"`
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Conflicts []models.Conflict `json:"conflicts"`
}

// CycleScheduleResult aggregates the preview; TotalSessions counts conflict-free dates.
type CycleScheduleResult struct {
	GroupID       string             `json:"groupId,omitempty"`
	CycleID       string             `json:"cycleId,omitempty"`
	Dates         []ScheduledSession `json:"dates"`
	SkippedDates  []string           `json:"skippedDates"`
	TotalSessions int                `json:"totalSessions"`
}
