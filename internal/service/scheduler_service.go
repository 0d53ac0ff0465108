package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

type groupRepository interface {
	FindByID(ctx context.Context, id string) (*models.InterventionGroup, error)
}

type sessionRepository interface {
	ListByGroup(ctx context.Context, groupID string) ([]models.Session, error)
	Create(ctx context.Context, session *models.Session) error
}

type interventionistRepository interface {
	FindForGroup(ctx context.Context, groupID string) (*models.Interventionist, error)
}

type gradeConstraintRepository interface {
	ListByGrade(ctx context.Context, grade int) ([]models.GradeLevelConstraint, error)
}

type calendarEventSource interface {
	ListAll(ctx context.Context) ([]models.SchoolCalendarEvent, error)
}

type cycleRepository interface {
	FindByID(ctx context.Context, id string) (*models.InterventionCycle, error)
}

// SchedulerConfig carries the working-day defaults applied to requests that omit them.
type SchedulerConfig struct {
	DayStartHour          int
	DayEndHour            int
	SlotStepMinutes       int
	DefaultSessionMinutes int
	MaxSuggestions        int
	Location              *time.Location
}

// SchedulerService loads a group's scheduling snapshot and runs the suggestion and cycle engines over it.
type SchedulerService struct {
	groups           groupRepository
	sessions         sessionRepository
	interventionists interventionistRepository
	constraints      gradeConstraintRepository
	calendar         calendarEventSource
	cycles           cycleRepository
	validator        *validator.Validate
	metrics          *MetricsService
	logger           *zap.Logger
	cfg              SchedulerConfig
	now              func() time.Time
}

// NewSchedulerService wires scheduler dependencies.
func NewSchedulerService(
	groups groupRepository,
	sessions sessionRepository,
	interventionists interventionistRepository,
	constraints gradeConstraintRepository,
	calendar calendarEventSource,
	cycles cycleRepository,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg SchedulerConfig,
) *SchedulerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DayStartHour == 0 && cfg.DayEndHour == 0 {
		cfg.DayStartHour, cfg.DayEndHour = scheduler.DefaultStartHour, scheduler.DefaultEndHour
	}
	if cfg.SlotStepMinutes <= 0 {
		cfg.SlotStepMinutes = scheduler.DefaultStepMinutes
	}
	if cfg.DefaultSessionMinutes <= 0 {
		cfg.DefaultSessionMinutes = models.DefaultSessionMinutes
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &SchedulerService{
		groups:           groups,
		sessions:         sessions,
		interventionists: interventionists,
		constraints:      constraints,
		calendar:         calendar,
		cycles:           cycles,
		validator:        newValidator(validate),
		metrics:          metrics,
		logger:           logger,
		cfg:              cfg,
		now:              time.Now,
	}
}

// CalculateSuggestions ranks every weekly slot for the group.
func (s *SchedulerService) CalculateSuggestions(ctx context.Context, groupID string, req dto.SuggestionRequest) (*dto.SuggestionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid suggestion payload")
	}
	startHour, endHour := s.hours(req.StartHour, req.EndHour)
	if startHour >= endHour {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startHour must be before endHour")
	}
	weekOf, err := s.referenceWeek(req.WeekOf)
	if err != nil {
		return nil, validationError(err, "invalid weekOf")
	}

	group, snapshot, err := s.loadSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	duration := req.SessionDuration
	if duration <= 0 {
		duration = group.DurationOr(s.cfg.DefaultSessionMinutes)
	}
	step := req.StepMinutes
	if step <= 0 {
		step = s.cfg.SlotStepMinutes
	}

	started := time.Now()
	slots := scheduler.SuggestSlots(*group, snapshot, scheduler.SuggestionOptions{
		SessionsPerWeek: req.SessionsPerWeek,
		SessionDuration: duration,
		StartHour:       startHour,
		EndHour:         endHour,
		StepMinutes:     step,
		WeekOf:          weekOf,
	})
	s.metrics.ObserveSuggestions(len(slots), time.Since(started))

	selected := scheduler.DefaultSelection(slots, req.SessionsPerWeek)
	if s.cfg.MaxSuggestions > 0 && len(slots) > s.cfg.MaxSuggestions {
		slots = slots[:s.cfg.MaxSuggestions]
	}
	return &dto.SuggestionResponse{
		GroupID:         group.ID,
		WeekOf:          scheduler.DateKey(weekOf),
		SessionDuration: duration,
		Slots:           slots,
		Selected:        selected,
	}, nil
}

// GenerateCycleSchedule previews the group's sessions across a cycle.
func (s *SchedulerService) GenerateCycleSchedule(ctx context.Context, groupID string, req dto.CycleScheduleRequest) (*dto.CycleScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid cycle schedule payload")
	}
	group, snapshot, err := s.loadSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	result, err := s.planCycle(ctx, *group, snapshot, req)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *SchedulerService) planCycle(ctx context.Context, group models.InterventionGroup, snapshot scheduler.Context, req dto.CycleScheduleRequest) (dto.CycleScheduleResult, error) {
	cycle, err := s.cycles.FindByID(ctx, req.CycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dto.CycleScheduleResult{}, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return dto.CycleScheduleResult{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}

	startHour, endHour := s.hours(req.StartHour, req.EndHour)
	started := time.Now()
	result, err := scheduler.GenerateCycleSchedule(group, *cycle, snapshot, scheduler.CycleOptions{
		PreferredDays:   req.PreferredDays,
		PreferredTime:   req.PreferredTime,
		SessionDuration: req.SessionDuration,
		StartHour:       &startHour,
		EndHour:         &endHour,
	})
	if err != nil {
		return result, validationError(err, err.Error())
	}
	s.metrics.ObserveCycle(len(result.SkippedDates), time.Since(started))
	s.logger.Info("cycle schedule generated",
		zap.String("group_id", group.ID),
		zap.String("cycle_id", cycle.ID),
		zap.Int("dates", len(result.Dates)),
		zap.Int("skipped", len(result.SkippedDates)),
		zap.Int("conflict_free", result.TotalSessions),
	)
	return result, nil
}

func (s *SchedulerService) findGroup(ctx context.Context, groupID string) (*models.InterventionGroup, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// loadSnapshot reads everything the detector needs for one group in a single pass.
func (s *SchedulerService) loadSnapshot(ctx context.Context, groupID string) (*models.InterventionGroup, scheduler.Context, error) {
	var snapshot scheduler.Context
	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return nil, snapshot, err
	}

	sessions, err := s.sessions.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	var person *models.Interventionist
	if group.HasInterventionist() {
		person, err = s.interventionists.FindForGroup(ctx, group.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interventionist")
		}
		if person == nil {
			s.logger.Warn("group references a missing interventionist", zap.String("group_id", group.ID), zap.String("interventionist_id", *group.InterventionistID))
		}
	}

	constraints, err := s.constraints.ListByGrade(ctx, group.Grade)
	if err != nil {
		return nil, snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade constraints")
	}

	events, err := s.calendar.ListAll(ctx)
	if err != nil {
		return nil, snapshot, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}

	snapshot = scheduler.Context{
		Sessions:         sessions,
		Interventionist:  person,
		GradeConstraints: constraints,
		Events:           scheduler.ExpandEventDates(events),
		DefaultDuration:  s.cfg.DefaultSessionMinutes,
	}
	return group, snapshot, nil
}

func (s *SchedulerService) hours(start, end *int) (int, int) {
	startHour, endHour := s.cfg.DayStartHour, s.cfg.DayEndHour
	if start != nil {
		startHour = *start
	}
	if end != nil {
		endHour = *end
	}
	return startHour, endHour
}

// referenceWeek resolves the Monday the weekly grid is anchored to.
func (s *SchedulerService) referenceWeek(weekOf string) (time.Time, error) {
	if weekOf != "" {
		parsed, err := scheduler.ParseDate(weekOf)
		if err != nil {
			return time.Time{}, err
		}
		return scheduler.WeekStart(parsed), nil
	}
	return scheduler.WeekStart(s.today()), nil
}

func (s *SchedulerService) today() time.Time {
	return scheduler.DateOnly(s.now().In(s.cfg.Location))
}
