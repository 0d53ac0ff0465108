package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

const calendarCacheKey = "calendar:events:all"

type calendarRepository interface {
	ListAll(ctx context.Context) ([]models.SchoolCalendarEvent, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.SchoolCalendarEvent, error)
	Create(ctx context.Context, event *models.SchoolCalendarEvent) error
	CreateBatch(ctx context.Context, events []models.SchoolCalendarEvent) error
	Delete(ctx context.Context, id string) error
}

// CalendarConfig tunes caching and import limits.
type CalendarConfig struct {
	CacheTTL    time.Duration
	ICSMaxBytes int64
}

// CalendarService manages non-student days.
type CalendarService struct {
	repo      calendarRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CalendarConfig
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg CalendarConfig) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ICSMaxBytes <= 0 {
		cfg.ICSMaxBytes = 2 << 20
	}
	return &CalendarService{repo: repo, cache: cache, validator: newValidator(validate), logger: logger, cfg: cfg}
}

// ListAll returns every event, served from cache when possible. It feeds the scheduler snapshot.
func (s *CalendarService) ListAll(ctx context.Context) ([]models.SchoolCalendarEvent, error) {
	events, _, err := s.listAll(ctx)
	return events, err
}

func (s *CalendarService) listAll(ctx context.Context) ([]models.SchoolCalendarEvent, bool, error) {
	var events []models.SchoolCalendarEvent
	if s.cache.Get(ctx, calendarCacheKey, &events) {
		return events, true, nil
	}
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	if events == nil {
		events = []models.SchoolCalendarEvent{}
	}
	s.cache.Set(ctx, calendarCacheKey, events, s.cfg.CacheTTL)
	return events, false, nil
}

// List returns events touching the optional window and whether they came from cache.
func (s *CalendarService) List(ctx context.Context, query dto.CalendarEventQuery) ([]models.SchoolCalendarEvent, bool, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, false, validationError(err, "invalid calendar query")
	}
	if query.From == "" && query.To == "" {
		events, hit, err := s.listAll(ctx)
		if err != nil {
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
		}
		return events, hit, nil
	}

	from := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if query.From != "" {
		from, _ = scheduler.ParseDate(query.From)
	}
	if query.To != "" {
		to, _ = scheduler.ParseDate(query.To)
	}
	if to.Before(from) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	events, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar events")
	}
	if events == nil {
		events = []models.SchoolCalendarEvent{}
	}
	return events, false, nil
}

// Create stores a non-student day or range.
func (s *CalendarService) Create(ctx context.Context, req dto.CreateCalendarEventRequest) (*models.SchoolCalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid calendar event payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown non-student day type")
	}
	date, _ := scheduler.ParseDate(req.Date)
	event := &models.SchoolCalendarEvent{
		Date:              date,
		Type:              req.Type,
		Title:             req.Title,
		ModifiedStartTime: req.ModifiedStartTime,
		ModifiedEndTime:   req.ModifiedEndTime,
	}
	if req.EndDate != nil {
		end, _ := scheduler.ParseDate(*req.EndDate)
		if end.Before(date) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before date")
		}
		event.EndDate = &end
	}
	if len(req.AffectsGrades) > 0 {
		event.AffectsGrades = req.AffectsGrades
	}
	if req.ModifiedStartTime != nil && req.ModifiedEndTime != nil && *req.ModifiedStartTime >= *req.ModifiedEndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "modifiedStartTime must be before modifiedEndTime")
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar event")
	}
	s.cache.Invalidate(ctx, calendarCacheKey)
	return event, nil
}

// Delete removes an event.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete calendar event")
	}
	s.cache.Invalidate(ctx, calendarCacheKey)
	return nil
}

// ImportICS reads an iCalendar feed and stores its all-day events as non-student days.
func (s *CalendarService) ImportICS(ctx context.Context, r io.Reader) (*dto.CalendarImportResult, error) {
	raw, err := io.ReadAll(io.LimitReader(r, s.cfg.ICSMaxBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read calendar file")
	}
	if int64(len(raw)) > s.cfg.ICSMaxBytes {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "calendar file exceeds the size limit")
	}

	events, skipped, err := parseICSEvents(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar file")
	}
	if err := s.repo.CreateBatch(ctx, events); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import calendar events")
	}
	if len(events) > 0 {
		s.cache.Invalidate(ctx, calendarCacheKey)
	}
	s.logger.Info("calendar imported", zap.Int("imported", len(events)), zap.Int("skipped", skipped))
	return &dto.CalendarImportResult{Imported: len(events), Skipped: skipped, Events: events}, nil
}
