package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/repository"
	"github.com/noah-isme/intervention-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
	"github.com/noah-isme/intervention-planner-api/pkg/jobs"
)

// Reasons reported for candidate dates left out of a commit.
const (
	SkipNonStudentDay   = "non-student day"
	SkipExistingSession = "existing session"
	SkipUnavailable     = "interventionist unavailable"
	SkipSlotTaken       = "slot no longer available"
)

type sessionWriter interface {
	sessionRepository
	MaxCurriculumPosition(ctx context.Context, groupID string) (int, error)
}

// SessionCommitConfig tunes the commit queue.
type SessionCommitConfig struct {
	Workers      int
	MaxRetries   int
	BufferSize   int
	RetryDelay   time.Duration
	JobTTL       time.Duration
	DefaultWeeks int
}

// SessionCommitService turns previews into sessions. Commits run through a
// queue and a process-wide lock, so two commits never interleave their
// read-check-create sequences.
type SessionCommitService struct {
	planner  *SchedulerService
	sessions sessionWriter
	metrics  *MetricsService
	logger   *zap.Logger
	queue    *jobs.Queue
	store    *commitJobStore
	cfg      SessionCommitConfig
	mu       sync.Mutex
}

type cyclePayload struct {
	GroupID string
	Request dto.CommitCycleRequest
}

type weeklyPayload struct {
	GroupID string
	Request dto.CommitWeeklyRequest
}

// NewSessionCommitService wires the commit queue around the scheduler.
func NewSessionCommitService(planner *SchedulerService, sessions sessionWriter, metrics *MetricsService, logger *zap.Logger, cfg SessionCommitConfig) *SessionCommitService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = time.Hour
	}
	if cfg.DefaultWeeks <= 0 {
		cfg.DefaultWeeks = 6
	}
	svc := &SessionCommitService{
		planner:  planner,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
		store:    newCommitJobStore(cfg.JobTTL),
		cfg:      cfg,
	}
	svc.queue = jobs.NewQueue("session-commit", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnExhaust:  svc.exhausted,
	})
	metrics.TrackQueueDepth(svc.queue.Depth)
	return svc
}

// Start launches the commit workers.
func (s *SessionCommitService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *SessionCommitService) Stop() {
	s.queue.Stop()
}

// SubmitCycle validates a cycle commit and queues it.
func (s *SessionCommitService) SubmitCycle(ctx context.Context, groupID string, req dto.CommitCycleRequest) (*dto.CommitJob, error) {
	if err := s.planner.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid cycle commit payload")
	}
	return s.submit(ctx, dto.CommitKindCycle, groupID, cyclePayload{GroupID: groupID, Request: req})
}

// SubmitWeekly validates a weekly commit and queues it.
func (s *SessionCommitService) SubmitWeekly(ctx context.Context, groupID string, req dto.CommitWeeklyRequest) (*dto.CommitJob, error) {
	if req.Weeks == 0 {
		req.Weeks = s.cfg.DefaultWeeks
	}
	if err := s.planner.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid weekly commit payload")
	}
	return s.submit(ctx, dto.CommitKindWeekly, groupID, weeklyPayload{GroupID: groupID, Request: req})
}

func (s *SessionCommitService) submit(ctx context.Context, kind dto.CommitJobKind, groupID string, payload interface{}) (*dto.CommitJob, error) {
	if _, err := s.planner.findGroup(ctx, groupID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := dto.CommitJob{
		ID:          uuid.NewString(),
		Kind:        kind,
		GroupID:     groupID,
		Status:      dto.CommitJobQueued,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	s.store.Save(job)
	if err := s.queue.TryEnqueue(jobs.Job{ID: job.ID, Type: string(kind), Payload: payload}); err != nil {
		s.store.Delete(job.ID)
		if errors.Is(err, jobs.ErrQueueFull) {
			return nil, appErrors.Clone(appErrors.ErrTooManyRequests, "commit queue is full, retry later")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue commit")
	}
	s.logger.Info("commit queued", zap.String("job_id", job.ID), zap.String("kind", string(kind)), zap.String("group_id", groupID))
	return &job, nil
}

// Job reports the state of a queued commit.
func (s *SessionCommitService) Job(id string) (*dto.CommitJob, error) {
	job, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "commit job not found or expired")
	}
	return &job, nil
}

func (s *SessionCommitService) handle(ctx context.Context, job jobs.Job) error {
	s.store.Update(job.ID, func(j *dto.CommitJob) {
		j.Status = dto.CommitJobRunning
	})

	var (
		result *dto.CommitResult
		err    error
	)
	switch payload := job.Payload.(type) {
	case cyclePayload:
		result, err = s.CommitCycle(ctx, payload.GroupID, payload.Request)
	case weeklyPayload:
		result, err = s.CommitWeekly(ctx, payload.GroupID, payload.Request)
	default:
		err = jobs.Permanent(errors.New("unknown commit payload"))
	}
	if err != nil {
		if result != nil && len(result.Created) > 0 {
			s.store.Update(job.ID, func(j *dto.CommitJob) {
				j.Result = carryCreated(j.Result, result)
			})
		}
		if appErr := appErrors.FromError(err); appErr.Status < 500 {
			return jobs.Permanent(err)
		}
		return err
	}

	if previous, ok := s.store.Get(job.ID); ok {
		result = mergeRetried(previous.Result, result)
	}
	s.store.Update(job.ID, func(j *dto.CommitJob) {
		j.Status = dto.CommitJobSucceeded
		j.Result = result
	})
	s.metrics.RecordCommit(job.Type, string(dto.CommitJobSucceeded), len(result.Created), skipReasons(result.Skipped))
	return nil
}

func (s *SessionCommitService) exhausted(job jobs.Job, err error) {
	s.store.Update(job.ID, func(j *dto.CommitJob) {
		j.Status = dto.CommitJobFailed
		j.Error = appErrors.FromError(err).Message
	})
	s.metrics.RecordCommit(job.Type, string(dto.CommitJobFailed), 0, nil)
}

// CommitCycle regenerates the cycle preview and books every materializable date.
// When a write fails midway the sessions created so far are returned with the error.
func (s *SessionCommitService) CommitCycle(ctx context.Context, groupID string, req dto.CommitCycleRequest) (*dto.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, snapshot, err := s.planner.loadSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	preview, err := s.planner.planCycle(ctx, *group, snapshot, req.CycleScheduleRequest)
	if err != nil {
		return nil, err
	}

	accepted := make(map[string]bool, len(req.AcceptedDates))
	for _, d := range req.AcceptedDates {
		accepted[d] = true
	}
	wanted := func(date string) bool {
		return len(accepted) == 0 || accepted[date]
	}

	result := newCommitResult(group.ID)
	for _, date := range preview.SkippedDates {
		if wanted(date) {
			result.Skipped = append(result.Skipped, dto.SkippedCommit{Date: date, StartTime: req.PreferredTime, Reason: SkipNonStudentDay})
		}
	}

	duration := req.SessionDuration
	if duration <= 0 {
		duration = group.DurationOr(s.planner.cfg.DefaultSessionMinutes)
	}
	candidates := make([]commitCandidate, 0, len(preview.Dates))
	for _, entry := range preview.Dates {
		if !wanted(entry.Date) {
			continue
		}
		candidates = append(candidates, commitCandidate{
			candidate: scheduler.Candidate{Date: entry.Date, Day: entry.Day, StartTime: entry.StartTime, EndTime: entry.EndTime},
			conflicts: entry.Conflicts,
		})
	}
	if err := s.materialize(ctx, *group, snapshot, candidates, duration, &result); err != nil {
		return &result, err
	}
	s.logCommit(dto.CommitKindCycle, result)
	return &result, nil
}

// CommitWeekly projects the chosen weekly slots over the requested number of weeks.
// Like CommitCycle it returns the partial result alongside a write failure.
func (s *SessionCommitService) CommitWeekly(ctx context.Context, groupID string, req dto.CommitWeeklyRequest) (*dto.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.planner.today()
	if req.StartDate != "" {
		parsed, err := scheduler.ParseDate(req.StartDate)
		if err != nil {
			return nil, validationError(err, "invalid startDate")
		}
		start = parsed
	}
	group, snapshot, err := s.planner.loadSnapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	duration := req.SessionDuration
	if duration <= 0 {
		duration = group.DurationOr(s.planner.cfg.DefaultSessionMinutes)
	}

	candidates := make([]commitCandidate, 0, len(req.Slots)*req.Weeks)
	for week := 0; week < req.Weeks; week++ {
		for _, slot := range req.Slots {
			end, err := scheduler.AddMinutes(slot.StartTime, duration)
			if err != nil {
				return nil, validationError(err, "invalid slot start time")
			}
			date := scheduler.DateKey(scheduler.NextOccurrence(start, slot.Day, week))
			candidate := scheduler.Candidate{Date: date, Day: slot.Day, StartTime: slot.StartTime, EndTime: end}
			candidates = append(candidates, commitCandidate{
				candidate: candidate,
				conflicts: scheduler.DetectConflicts(candidate, *group, snapshot),
			})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].candidate, candidates[j].candidate
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.StartTime < b.StartTime
	})

	result := newCommitResult(group.ID)
	if err := s.materialize(ctx, *group, snapshot, candidates, duration, &result); err != nil {
		return &result, err
	}
	s.logCommit(dto.CommitKindWeekly, result)
	return &result, nil
}

type commitCandidate struct {
	candidate scheduler.Candidate
	conflicts []models.Conflict
}

// materialize creates sessions for candidates free of hard conflicts, numbering
// them after the group's highest curriculum position. Sessions are re-read
// before every insert so a slot booked since the snapshot is reported, not doubled.
func (s *SessionCommitService) materialize(ctx context.Context, group models.InterventionGroup, snapshot scheduler.Context, candidates []commitCandidate, duration int, result *dto.CommitResult) error {
	position, err := s.sessions.MaxCurriculumPosition(ctx, group.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read curriculum position")
	}

	for _, item := range candidates {
		c := item.candidate
		if reason, blocked := hardConflict(item.conflicts); blocked {
			result.Skipped = append(result.Skipped, dto.SkippedCommit{Date: c.Date, StartTime: c.StartTime, Reason: reason})
			continue
		}

		fresh, err := s.sessions.ListByGroup(ctx, group.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload sessions")
		}
		snapshot.Sessions = fresh
		if scheduler.HasConflict(scheduler.DetectConflicts(c, group, snapshot), models.ConflictExistingSession) {
			result.Skipped = append(result.Skipped, dto.SkippedCommit{Date: c.Date, StartTime: c.StartTime, Reason: SkipSlotTaken})
			continue
		}

		date, err := scheduler.ParseDate(c.Date)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid candidate date")
		}
		next := position + 1
		minutes := duration
		session := &models.Session{
			GroupID:            group.ID,
			Date:               date,
			Time:               c.StartTime,
			Status:             models.SessionPlanned,
			CurriculumPosition: &next,
			DurationMinutes:    &minutes,
		}
		if err := s.sessions.Create(ctx, session); err != nil {
			if errors.Is(err, repository.ErrSlotTaken) {
				result.Skipped = append(result.Skipped, dto.SkippedCommit{Date: c.Date, StartTime: c.StartTime, Reason: SkipSlotTaken})
				continue
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
		}
		position = next
		result.Created = append(result.Created, *session)
	}
	return nil
}

func (s *SessionCommitService) logCommit(kind dto.CommitJobKind, result dto.CommitResult) {
	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("group_id", result.GroupID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	}
	if len(result.Skipped) > 0 {
		dates := make([]string, 0, len(result.Skipped))
		for _, skip := range result.Skipped {
			dates = append(dates, skip.Date)
		}
		fields = append(fields, zap.Strings("skipped_dates", dates))
	}
	s.logger.Info("sessions committed", fields...)
}

func hardConflict(conflicts []models.Conflict) (string, bool) {
	switch {
	case scheduler.HasConflict(conflicts, models.ConflictNonStudentDay):
		return SkipNonStudentDay, true
	case scheduler.HasConflict(conflicts, models.ConflictExistingSession):
		return SkipExistingSession, true
	case scheduler.HasConflict(conflicts, models.ConflictInterventionistUnavailable):
		return SkipUnavailable, true
	}
	return "", false
}

func newCommitResult(groupID string) dto.CommitResult {
	return dto.CommitResult{
		GroupID: groupID,
		Created: make([]models.Session, 0),
		Skipped: make([]dto.SkippedCommit, 0),
	}
}

// carryCreated accumulates the sessions booked by failed attempts of one job.
// Skips from an interrupted attempt are dropped since the retry recomputes them.
func carryCreated(previous, partial *dto.CommitResult) *dto.CommitResult {
	carried := newCommitResult(partial.GroupID)
	if previous != nil {
		carried.Created = append(carried.Created, previous.Created...)
	}
	carried.Created = append(carried.Created, partial.Created...)
	return &carried
}

// mergeRetried folds sessions booked by earlier attempts into the final result.
// The retry sees them as existing sessions, so those skips are removed.
func mergeRetried(previous, final *dto.CommitResult) *dto.CommitResult {
	if previous == nil || len(previous.Created) == 0 {
		return final
	}
	booked := make(map[string]bool, len(previous.Created))
	for _, session := range previous.Created {
		booked[scheduler.DateKey(session.Date)+" "+session.Time] = true
	}
	merged := newCommitResult(final.GroupID)
	merged.Created = append(merged.Created, previous.Created...)
	merged.Created = append(merged.Created, final.Created...)
	for _, skip := range final.Skipped {
		if (skip.Reason == SkipExistingSession || skip.Reason == SkipSlotTaken) && booked[skip.Date+" "+skip.StartTime] {
			continue
		}
		merged.Skipped = append(merged.Skipped, skip)
	}
	sort.SliceStable(merged.Created, func(i, j int) bool {
		a, b := merged.Created[i], merged.Created[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Time < b.Time
	})
	return &merged
}

func skipReasons(skipped []dto.SkippedCommit) []string {
	reasons := make([]string, 0, len(skipped))
	for _, skip := range skipped {
		reasons = append(reasons, skip.Reason)
	}
	return reasons
}

type commitJobStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]dto.CommitJob
	now   func() time.Time
}

func newCommitJobStore(ttl time.Duration) *commitJobStore {
	return &commitJobStore{
		ttl:   ttl,
		items: make(map[string]dto.CommitJob),
		now:   time.Now,
	}
}

// Save stores a job and drops finished jobs older than ttl.
func (s *commitJobStore) Save(job dto.CommitJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.items[job.ID] = job
}

// Update applies fn to a stored job and stamps UpdatedAt.
func (s *commitJobStore) Update(id string, fn func(*dto.CommitJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	job, ok := s.items[id]
	if !ok {
		return
	}
	fn(&job)
	job.UpdatedAt = s.now().UTC()
	s.items[id] = job
}

// Get returns a job; finished jobs expire ttl after their last update.
func (s *commitJobStore) Get(id string) (dto.CommitJob, bool) {
	s.mu.RLock()
	job, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return dto.CommitJob{}, false
	}
	if s.expired(job) {
		s.Delete(id)
		return dto.CommitJob{}, false
	}
	return job, true
}

func (s *commitJobStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Len counts stored jobs, expired or not.
func (s *commitJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *commitJobStore) expired(job dto.CommitJob) bool {
	finished := job.Status == dto.CommitJobSucceeded || job.Status == dto.CommitJobFailed
	return finished && s.now().Sub(job.UpdatedAt) > s.ttl
}

func (s *commitJobStore) sweepLocked() {
	for id, job := range s.items {
		if s.expired(job) {
			delete(s.items, id)
		}
	}
}
