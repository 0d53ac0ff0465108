package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// Context is the request-scoped snapshot every check reads from. Callers load
// it once per request; the detector never performs I/O or mutates it.
type Context struct {
	Sessions         []models.Session
	Interventionist  *models.Interventionist
	GradeConstraints []models.GradeLevelConstraint
	Events           EventsByDate
	// DefaultDuration sizes sessions that carry no explicit duration.
	DefaultDuration int
}

// Candidate is a slot under test. Date is a "YYYY-MM-DD" key and may be empty
// for a purely weekly slot. When RecurringFrom is set, existing sessions are
// matched by weekday on or after that date instead of by exact date.
type Candidate struct {
	Date          string
	Day           models.WeekDay
	StartTime     string
	EndTime       string
	RecurringFrom string
}

// DetectConflicts runs every check against the candidate and returns all
// conflicts found. Blocks in ctx are assumed well formed (start before end).
func DetectConflicts(candidate Candidate, group models.InterventionGroup, ctx Context) []models.Conflict {
	conflicts := detectAdvisory(candidate, group, ctx)
	if c, ok := nonStudentDayConflict(candidate, group, ctx); ok {
		conflicts = append(conflicts, c)
	}
	return conflicts
}

func detectAdvisory(candidate Candidate, group models.InterventionGroup, ctx Context) []models.Conflict {
	conflicts := make([]models.Conflict, 0)
	if c, ok := existingSessionConflict(candidate, group, ctx); ok {
		conflicts = append(conflicts, c)
	}
	if c, ok := interventionistConflict(candidate, group, ctx); ok {
		conflicts = append(conflicts, c)
	}
	conflicts = append(conflicts, gradeConstraintConflicts(candidate, group, ctx)...)
	return conflicts
}

func existingSessionConflict(candidate Candidate, group models.InterventionGroup, ctx Context) (models.Conflict, bool) {
	fallback := group.DurationOr(ctx.DefaultDuration)
	for _, session := range ctx.Sessions {
		if session.GroupID != group.ID || !session.Occupies() {
			continue
		}
		sessionDate := DateKey(session.Date)
		if candidate.RecurringFrom != "" {
			if models.WeekDayOf(session.Date) != candidate.Day || sessionDate < candidate.RecurringFrom {
				continue
			}
		} else if sessionDate != candidate.Date {
			continue
		}
		end, err := AddMinutes(session.Time, session.Duration(fallback))
		if err != nil {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, session.Time, end) {
			return models.Conflict{
				Type:        models.ConflictExistingSession,
				Description: fmt.Sprintf("group already has a session on %s at %s-%s", sessionDate, session.Time, end),
			}, true
		}
	}
	return models.Conflict{}, false
}

// interventionistConflict requires the whole candidate range to sit inside a
// single availability block. Adjacent blocks are not joined.
func interventionistConflict(candidate Candidate, group models.InterventionGroup, ctx Context) (models.Conflict, bool) {
	if !group.HasInterventionist() {
		return models.Conflict{}, false
	}
	name := "interventionist"
	if ctx.Interventionist != nil {
		name = ctx.Interventionist.Name
		for _, block := range ctx.Interventionist.Availability {
			if !block.Includes(candidate.Day) {
				continue
			}
			if block.StartTime <= candidate.StartTime && candidate.EndTime <= block.EndTime {
				return models.Conflict{}, false
			}
		}
	}
	return models.Conflict{
		Type:        models.ConflictInterventionistUnavailable,
		Description: fmt.Sprintf("%s is not available on %s %s-%s", name, candidate.Day, candidate.StartTime, candidate.EndTime),
	}, true
}

func gradeConstraintConflicts(candidate Candidate, group models.InterventionGroup, ctx Context) []models.Conflict {
	var conflicts []models.Conflict
	for _, constraint := range ctx.GradeConstraints {
		if constraint.Grade != group.Grade || !constraint.Schedule.Includes(candidate.Day) {
			continue
		}
		block := constraint.Schedule
		if Overlaps(candidate.StartTime, candidate.EndTime, block.StartTime, block.EndTime) {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictGradeConstraint,
				Description: fmt.Sprintf("grade %d %s (%s-%s)", group.Grade, constraint.Label, block.StartTime, block.EndTime),
			})
		}
	}
	return conflicts
}

func nonStudentDayConflict(candidate Candidate, group models.InterventionGroup, ctx Context) (models.Conflict, bool) {
	if candidate.Date == "" {
		return models.Conflict{}, false
	}
	grade := group.Grade
	if !IsDateInEvents(candidate.Date, ctx.Events, &grade) {
		return models.Conflict{}, false
	}
	return models.Conflict{
		Type:        models.ConflictNonStudentDay,
		Description: fmt.Sprintf("non-student day on %s: %s", candidate.Date, eventTitles(ctx.Events.On(candidate.Date), grade)),
	}, true
}

func eventTitles(events []models.SchoolCalendarEvent, grade int) string {
	titles := make([]string, 0, len(events))
	for _, event := range events {
		if event.Affects(grade) {
			titles = append(titles, event.Title)
		}
	}
	return strings.Join(titles, ", ")
}

// HasConflict reports whether any conflict in the list has the given type.
func HasConflict(conflicts []models.Conflict, kind models.ConflictType) bool {
	for _, c := range conflicts {
		if c.Type == kind {
			return true
		}
	}
	return false
}
