package dto

import "github.com/noah-isme/intervention-planner-api/internal/models"

// UpdateAvailabilityRequest replaces an interventionist's weekly availability.
type UpdateAvailabilityRequest struct {
	Availability []models.WeeklyTimeBlock `json:"availability" validate:"dive"`
}

// CreateGradeConstraintRequest adds a recurring unavailability window for a grade.
type CreateGradeConstraintRequest struct {
	Grade    int                    `json:"grade" validate:"min=0,max=12"`
	Label    string                 `json:"label" validate:"required,max=120"`
	Type     models.ConstraintType  `json:"type" validate:"required"`
	Schedule models.WeeklyTimeBlock `json:"schedule" validate:"required"`
}
