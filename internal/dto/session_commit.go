package dto

import (
	"time"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// CommitCycleRequest materializes a cycle preview. AcceptedDates narrows the
// commit to the listed dates; empty means every materializable date.
type CommitCycleRequest struct {
	CycleScheduleRequest
	AcceptedDates []string `json:"acceptedDates" validate:"omitempty,dive,datetime=2006-01-02"`
}

// WeeklySlotSelection is a chosen recurring slot.
type WeeklySlotSelection struct {
	Day       models.WeekDay `json:"day" validate:"required,weekday"`
	StartTime string         `json:"startTime" validate:"required,hhmm"`
}

// CommitWeeklyRequest projects chosen weekly slots onto concrete dates.
type CommitWeeklyRequest struct {
	Slots           []WeeklySlotSelection `json:"slots" validate:"required,min=1,max=5,dive"`
	Weeks           int                   `json:"weeks" validate:"required,min=1,max=52"`
	StartDate       string                `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	SessionDuration int                   `json:"sessionDuration" validate:"omitempty,min=5,max=240"`
}

// SkippedCommit explains why a candidate date was not booked.
type SkippedCommit struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Reason    string `json:"reason"`
}

// CommitResult lists the sessions created and the dates left out.
type CommitResult struct {
	GroupID string           `json:"groupId"`
	Created []models.Session `json:"created"`
	Skipped []SkippedCommit  `json:"skipped"`
}

// CommitJobKind distinguishes cycle and weekly commits.
type CommitJobKind string

const (
	CommitKindCycle  CommitJobKind = "cycle"
	CommitKindWeekly CommitJobKind = "weekly"
)

// CommitJobStatus tracks a queued commit.
type CommitJobStatus string

const (
	CommitJobQueued    CommitJobStatus = "queued"
	CommitJobRunning   CommitJobStatus = "running"
	CommitJobSucceeded CommitJobStatus = "succeeded"
	CommitJobFailed    CommitJobStatus = "failed"
)

// CommitJob reports the state of an asynchronous commit.
type CommitJob struct {
	ID          string          `json:"id"`
	Kind        CommitJobKind   `json:"kind"`
	GroupID     string          `json:"groupId"`
	Status      CommitJobStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	Result      *CommitResult   `json:"result,omitempty"`
	SubmittedAt time.Time       `json:"submittedAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
