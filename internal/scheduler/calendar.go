package scheduler

import "github.com/noah-isme/intervention-planner-api/internal/models"

// EventsByDate indexes calendar events by every date they cover.
type EventsByDate map[string][]models.SchoolCalendarEvent

// ExpandEventDates builds the per-date index. Ranged events appear once per
// date in [Date, EndDate]; events sharing a date are kept side by side.
func ExpandEventDates(events []models.SchoolCalendarEvent) EventsByDate {
	index := make(EventsByDate)
	for _, event := range events {
		end := event.Date
		if event.EndDate != nil && !event.EndDate.Before(event.Date) {
			end = *event.EndDate
		}
		for _, d := range EachDate(event.Date, end) {
			key := DateKey(d)
			index[key] = append(index[key], event)
		}
	}
	return index
}

// On returns the events covering the date key.
func (e EventsByDate) On(date string) []models.SchoolCalendarEvent {
	return e[date]
}

// IsDateInEvents reports whether date is a non-student day. With a grade, only
// events covering every grade or listing that grade count; without one, any event does.
func IsDateInEvents(date string, eventsByDate EventsByDate, grade *int) bool {
	for _, event := range eventsByDate[date] {
		if grade == nil || event.Affects(*grade) {
			return true
		}
	}
	return false
}
