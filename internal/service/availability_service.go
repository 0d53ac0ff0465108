package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

type availabilityStore interface {
	FindByID(ctx context.Context, id string) (*models.Interventionist, error)
	UpdateAvailability(ctx context.Context, id string, blocks models.WeeklyTimeBlocks) error
}

type gradeConstraintStore interface {
	gradeConstraintRepository
	List(ctx context.Context) ([]models.GradeLevelConstraint, error)
	Create(ctx context.Context, item *models.GradeLevelConstraint) error
	Delete(ctx context.Context, id string) error
}

// AvailabilityService maintains interventionist availability and grade-level constraints.
// Blocks are validated here so the conflict detector can trust them.
type AvailabilityService struct {
	interventionists availabilityStore
	constraints      gradeConstraintStore
	validator        *validator.Validate
	logger           *zap.Logger
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(interventionists availabilityStore, constraints gradeConstraintStore, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		interventionists: interventionists,
		constraints:      constraints,
		validator:        newValidator(validate),
		logger:           logger,
	}
}

// GetAvailability returns the interventionist with their blocks.
func (s *AvailabilityService) GetAvailability(ctx context.Context, id string) (*models.Interventionist, error) {
	person, err := s.interventionists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "interventionist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interventionist")
	}
	if person.Availability == nil {
		person.Availability = models.WeeklyTimeBlocks{}
	}
	return person, nil
}

// ReplaceAvailability overwrites every block. An empty list means never available.
func (s *AvailabilityService) ReplaceAvailability(ctx context.Context, id string, req dto.UpdateAvailabilityRequest) (*models.Interventionist, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability payload")
	}
	if err := validateBlocks(req.Availability); err != nil {
		return nil, err
	}
	blocks := models.WeeklyTimeBlocks(req.Availability)
	if blocks == nil {
		blocks = models.WeeklyTimeBlocks{}
	}
	if err := s.interventionists.UpdateAvailability(ctx, id, blocks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "interventionist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability")
	}
	s.logger.Info("availability replaced", zap.String("interventionist_id", id), zap.Int("blocks", len(blocks)))
	return s.GetAvailability(ctx, id)
}

// ListConstraints returns constraints, optionally narrowed to one grade.
func (s *AvailabilityService) ListConstraints(ctx context.Context, grade *int) ([]models.GradeLevelConstraint, error) {
	var (
		items []models.GradeLevelConstraint
		err   error
	)
	if grade != nil {
		items, err = s.constraints.ListByGrade(ctx, *grade)
	} else {
		items, err = s.constraints.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grade constraints")
	}
	if items == nil {
		items = []models.GradeLevelConstraint{}
	}
	return items, nil
}

// CreateConstraint stores a recurring window where a grade cannot be pulled out.
func (s *AvailabilityService) CreateConstraint(ctx context.Context, req dto.CreateGradeConstraintRequest) (*models.GradeLevelConstraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade constraint payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown constraint type")
	}
	if err := validateBlocks([]models.WeeklyTimeBlock{req.Schedule}); err != nil {
		return nil, err
	}
	item := &models.GradeLevelConstraint{
		Grade:    req.Grade,
		Label:    req.Label,
		Type:     req.Type,
		Schedule: req.Schedule,
	}
	if err := s.constraints.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade constraint")
	}
	return item, nil
}

// DeleteConstraint removes a constraint.
func (s *AvailabilityService) DeleteConstraint(ctx context.Context, id string) error {
	if err := s.constraints.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade constraint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade constraint")
	}
	return nil
}
