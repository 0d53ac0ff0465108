package scheduler

import (
	"sort"
	"time"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
)

const (
	DefaultStartHour   = 7
	DefaultEndHour     = 17
	DefaultStepMinutes = 15
)

// SuggestionOptions tunes the weekly grid scan.
type SuggestionOptions struct {
	SessionsPerWeek int
	SessionDuration int
	StartHour       int
	EndHour         int
	StepMinutes     int
	// WeekOf anchors the grid to a concrete week so calendar events and
	// upcoming sessions can be matched. Zero leaves slots undated.
	WeekOf time.Time
}

func (o SuggestionOptions) normalized() SuggestionOptions {
	if o.SessionDuration <= 0 {
		o.SessionDuration = models.DefaultSessionMinutes
	}
	if o.StartHour == 0 && o.EndHour == 0 {
		o.StartHour, o.EndHour = DefaultStartHour, DefaultEndHour
	}
	if o.StepMinutes <= 0 {
		o.StepMinutes = DefaultStepMinutes
	}
	return o
}

// SuggestSlots scans Monday-Friday within the working window and returns every
// slot ranked by conflict severity. Zero sessions per week yields no slots.
func SuggestSlots(group models.InterventionGroup, ctx Context, opts SuggestionOptions) []dto.SuggestedTimeSlot {
	slots := make([]dto.SuggestedTimeSlot, 0)
	if opts.SessionsPerWeek <= 0 {
		return slots
	}
	opts = opts.normalized()
	closing := FormatTime(opts.EndHour * 60)

	var weekStart time.Time
	recurringFrom := ""
	if !opts.WeekOf.IsZero() {
		weekStart = WeekStart(opts.WeekOf)
		recurringFrom = DateKey(weekStart)
	}

	for _, day := range models.SchoolDays {
		date := ""
		if recurringFrom != "" {
			date = DateKey(NextOccurrence(weekStart, day, 0))
		}
		for _, start := range GenerateTimeOptions(opts.StartHour, opts.EndHour, opts.StepMinutes) {
			end, err := AddMinutes(start, opts.SessionDuration)
			if err != nil || end > closing {
				continue
			}
			candidate := Candidate{
				Date:          date,
				Day:           day,
				StartTime:     start,
				EndTime:       end,
				RecurringFrom: recurringFrom,
			}
			conflicts := DetectConflicts(candidate, group, ctx)
			slots = append(slots, dto.SuggestedTimeSlot{
				Day:       day,
				Date:      date,
				StartTime: start,
				EndTime:   end,
				Conflicts: conflicts,
				Blocked:   HasConflict(conflicts, models.ConflictNonStudentDay),
			})
		}
	}
	RankSlots(slots)
	return slots
}

// RankSlots orders slots in place: conflict-free first, then advisory by
// ascending conflict count, then blocked slots. Ties keep their grid order.
func RankSlots(slots []dto.SuggestedTimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Blocked != slots[j].Blocked {
			return !slots[i].Blocked
		}
		return len(slots[i].Conflicts) < len(slots[j].Conflicts)
	})
}

// DefaultSelection picks up to n conflict-free slots that never overlap one
// another. The first pass takes at most one slot per day so sessions spread
// across the week; a second pass fills the rest from days already used. The
// result is ordered by day, then start time.
func DefaultSelection(slots []dto.SuggestedTimeSlot, n int) []dto.SuggestedTimeSlot {
	selected := make([]dto.SuggestedTimeSlot, 0, n)
	if n <= 0 {
		return selected
	}
	used := make(map[models.WeekDay]bool)
	taken := make([]bool, len(slots))

	pick := func(onePerDay bool) {
		for i, slot := range slots {
			if len(selected) >= n {
				return
			}
			if taken[i] || len(slot.Conflicts) > 0 || (onePerDay && used[slot.Day]) {
				continue
			}
			if overlapsSelection(slot, selected) {
				continue
			}
			selected = append(selected, slot)
			used[slot.Day] = true
			taken[i] = true
		}
	}
	pick(true)
	pick(false)

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Day != selected[j].Day {
			return selected[i].Day.Index() < selected[j].Day.Index()
		}
		return selected[i].StartTime < selected[j].StartTime
	})
	return selected
}

func overlapsSelection(slot dto.SuggestedTimeSlot, selected []dto.SuggestedTimeSlot) bool {
	for _, s := range selected {
		if s.Day == slot.Day && s.Date == slot.Date && Overlaps(s.StartTime, s.EndTime, slot.StartTime, slot.EndTime) {
			return true
		}
	}
	return false
}
