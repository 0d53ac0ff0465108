package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/repository"
	"github.com/noah-isme/intervention-planner-api/internal/scheduler"
)

type groupStub map[string]models.InterventionGroup

func (s groupStub) FindByID(ctx context.Context, id string) (*models.InterventionGroup, error) {
	group, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &group, nil
}

type cycleStub map[string]models.InterventionCycle

func (s cycleStub) FindByID(ctx context.Context, id string) (*models.InterventionCycle, error) {
	cycle, ok := s[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &cycle, nil
}

type personStub map[string]*models.Interventionist

func (s personStub) FindForGroup(ctx context.Context, groupID string) (*models.Interventionist, error) {
	person, ok := s[groupID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return person, nil
}

type constraintStub []models.GradeLevelConstraint

func (s constraintStub) ListByGrade(ctx context.Context, grade int) ([]models.GradeLevelConstraint, error) {
	var out []models.GradeLevelConstraint
	for _, c := range s {
		if c.Grade == grade {
			out = append(out, c)
		}
	}
	return out, nil
}

type eventStub []models.SchoolCalendarEvent

func (s eventStub) ListAll(ctx context.Context) ([]models.SchoolCalendarEvent, error) {
	return s, nil
}

// sessionStore is an in-memory session table. Keys in taken simulate rows
// inserted by another writer after the snapshot was read; keys in failOnce
// make the next insert for that slot fail with a transient error.
type sessionStore struct {
	mu       sync.Mutex
	sessions []models.Session
	taken    map[string]bool
	failOnce map[string]bool
	nextID   int
}

func (s *sessionStore) ListByGroup(ctx context.Context, groupID string) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, session := range s.sessions {
		if session.GroupID == groupID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *sessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scheduler.DateKey(session.Date) + " " + session.Time
	if s.taken[key] {
		return repository.ErrSlotTaken
	}
	if s.failOnce[key] {
		delete(s.failOnce, key)
		return errors.New("connection reset by peer")
	}
	s.nextID++
	session.ID = fmt.Sprintf("new-%d", s.nextID)
	s.sessions = append(s.sessions, *session)
	return nil
}

func (s *sessionStore) MaxCurriculumPosition(ctx context.Context, groupID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, session := range s.sessions {
		if session.GroupID == groupID && session.CurriculumPosition != nil && *session.CurriculumPosition > max {
			max = *session.CurriculumPosition
		}
	}
	return max, nil
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := scheduler.ParseDate(s)
	require.NoError(t, err)
	return d
}

func intRef(v int) *int { return &v }

func stringRef(v string) *string { return &v }

// plannerFixture is a grade-3 reading group whose interventionist works
// Monday and Wednesday mornings. The cycle spans 2024-01-08..2024-01-21,
// 2024-01-15 is a holiday and 2024-01-10 09:00 is already booked.
type plannerFixture struct {
	groups      groupStub
	cycles      cycleStub
	people      personStub
	constraints constraintStub
	events      eventStub
	sessions    *sessionStore
}

func newPlannerFixture(t *testing.T) *plannerFixture {
	return &plannerFixture{
		groups: groupStub{
			"g1": {ID: "g1", Name: "Reading A", Grade: 3, InterventionistID: stringRef("i1")},
		},
		cycles: cycleStub{
			"c1": {ID: "c1", Name: "Winter", StartDate: day(t, "2024-01-08"), EndDate: day(t, "2024-01-21"), Status: models.CycleActive},
		},
		people: personStub{
			"g1": {
				ID:   "i1",
				Name: "Ms. Rivera",
				Availability: models.WeeklyTimeBlocks{
					{Days: []models.WeekDay{models.Monday, models.Wednesday}, StartTime: "08:00", EndTime: "12:00"},
				},
			},
		},
		constraints: constraintStub{
			{ID: "lunch", Grade: 3, Label: "Lunch", Type: models.ConstraintLunch,
				Schedule: models.WeeklyTimeBlock{Days: models.SchoolDays, StartTime: "11:30", EndTime: "12:00"}},
		},
		events: eventStub{
			{ID: "e1", Date: day(t, "2024-01-15"), Type: models.DayHoliday, Title: "MLK Day"},
		},
		sessions: &sessionStore{
			sessions: []models.Session{
				{ID: "s1", GroupID: "g1", Date: day(t, "2024-01-10"), Time: "09:00", Status: models.SessionPlanned, CurriculumPosition: intRef(4)},
			},
		},
	}
}

func (f *plannerFixture) planner(cfg SchedulerConfig) *SchedulerService {
	svc := NewSchedulerService(f.groups, f.sessions, f.people, f.constraints, f.events, f.cycles, nil, nil, nil, cfg)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC) }
	return svc
}
