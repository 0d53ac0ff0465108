package scheduler

import (
	"errors"
	"fmt"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// ErrOutsideWorkingHours is returned when the preferred slot does not fit the requested bounds.
var ErrOutsideWorkingHours = errors.New("preferred time falls outside working hours")

// CycleOptions describes the recurring slot to lay across a cycle.
type CycleOptions struct {
	PreferredDays   []models.WeekDay
	PreferredTime   string
	SessionDuration int
	StartHour       *int
	EndHour         *int
}

// GenerateCycleSchedule walks every date of the cycle. Dates on preferred days
// that are non-student days for the group are skipped outright; the rest are
// returned with their advisory conflicts.
func GenerateCycleSchedule(group models.InterventionGroup, cycle models.InterventionCycle, ctx Context, opts CycleOptions) (dto.CycleScheduleResult, error) {
	result := dto.CycleScheduleResult{
		GroupID:      group.ID,
		CycleID:      cycle.ID,
		Dates:        make([]dto.ScheduledSession, 0),
		SkippedDates: make([]string, 0),
	}
	if len(opts.PreferredDays) == 0 {
		return result, nil
	}

	duration := opts.SessionDuration
	if duration <= 0 {
		duration = group.DurationOr(ctx.DefaultDuration)
	}
	endTime, err := AddMinutes(opts.PreferredTime, duration)
	if err != nil {
		return result, err
	}
	if err := checkWorkingHours(opts.PreferredTime, endTime, opts.StartHour, opts.EndHour); err != nil {
		return result, err
	}

	preferred := make(map[models.WeekDay]bool, len(opts.PreferredDays))
	for _, d := range opts.PreferredDays {
		preferred[d] = true
	}
	grade := group.Grade

	for _, date := range EachDate(cycle.StartDate, cycle.EndDate) {
		day := models.WeekDayOf(date)
		if !preferred[day] {
			continue
		}
		key := DateKey(date)
		if IsDateInEvents(key, ctx.Events, &grade) {
			result.SkippedDates = append(result.SkippedDates, key)
			continue
		}
		conflicts := detectAdvisory(Candidate{
			Date:      key,
			Day:       day,
			StartTime: opts.PreferredTime,
			EndTime:   endTime,
		}, group, ctx)
		result.Dates = append(result.Dates, dto.ScheduledSession{
			Date:      key,
			Day:       day,
			StartTime: opts.PreferredTime,
			EndTime:   endTime,
			Conflicts: conflicts,
		})
		if len(conflicts) == 0 {
			result.TotalSessions++
		}
	}
	return result, nil
}

func checkWorkingHours(start, end string, startHour, endHour *int) error {
	if startHour != nil && start < FormatTime(*startHour*60) {
		return fmt.Errorf("%w: %s starts before %02d:00", ErrOutsideWorkingHours, start, *startHour)
	}
	if endHour != nil && end > FormatTime(*endHour*60) {
		return fmt.Errorf("%w: %s ends after %02d:00", ErrOutsideWorkingHours, end, *endHour)
	}
	return nil
}

// Materializable reports whether a preview entry may become a session:
// existing sessions and interventionist unavailability block creation.
func Materializable(entry dto.ScheduledSession) bool {
	return !HasConflict(entry.Conflicts, models.ConflictExistingSession) &&
		!HasConflict(entry.Conflicts, models.ConflictInterventionistUnavailable)
}
