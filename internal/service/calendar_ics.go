package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

const icsDateLayout = "20060102"

// parseICSEvents converts all-day VEVENTs into calendar events. Timed events
// and events without a start date are counted as skipped.
func parseICSEvents(raw []byte) ([]models.SchoolCalendarEvent, int, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]models.SchoolCalendarEvent, 0)
	skipped := 0
	for _, evt := range cal.Events() {
		event, ok := icsEvent(evt)
		if !ok {
			skipped++
			continue
		}
		events = append(events, event)
	}
	return events, skipped, nil
}

func icsEvent(evt *ics.VEvent) (models.SchoolCalendarEvent, bool) {
	start, ok := icsDate(evt.GetProperty(ics.ComponentPropertyDtStart))
	if !ok {
		return models.SchoolCalendarEvent{}, false
	}
	event := models.SchoolCalendarEvent{
		Date:  start,
		Type:  icsType(evt.GetProperty(ics.ComponentProperty("CATEGORIES"))),
		Title: string(models.DayHoliday),
	}
	if summary := evt.GetProperty(ics.ComponentPropertySummary); summary != nil && strings.TrimSpace(summary.Value) != "" {
		event.Title = strings.TrimSpace(summary.Value)
	}
	// DTEND is exclusive for all-day events.
	if end, ok := icsDate(evt.GetProperty(ics.ComponentPropertyDtEnd)); ok {
		last := end.AddDate(0, 0, -1)
		if last.After(start) {
			event.EndDate = &last
		}
	}
	return event, true
}

func icsDate(prop *ics.IANAProperty) (time.Time, bool) {
	if prop == nil {
		return time.Time{}, false
	}
	value := strings.TrimSpace(prop.Value)
	if len(value) != len(icsDateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(icsDateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func icsType(prop *ics.IANAProperty) models.NonStudentDayType {
	if prop == nil {
		return models.DayHoliday
	}
	for _, category := range strings.Split(prop.Value, ",") {
		candidate := strings.ToLower(strings.TrimSpace(category))
		candidate = strings.NewReplacer("-", "_", " ", "_").Replace(candidate)
		if t := models.NonStudentDayType(candidate); t.Valid() {
			return t
		}
	}
	return models.DayHoliday
}
