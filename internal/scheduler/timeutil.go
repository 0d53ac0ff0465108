package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// DateLayout is the ISO date format used for every date key.
const DateLayout = "2006-01-02"

// GenerateTimeOptions returns "HH:MM" values from startHour:00 in steps of
// stepMinutes, never passing endHour:00. Each call builds a fresh slice.
func GenerateTimeOptions(startHour, endHour, stepMinutes int) []string {
	if stepMinutes <= 0 || startHour > endHour || startHour < 0 {
		return []string{}
	}
	limit := endHour * 60
	options := make([]string, 0, (limit-startHour*60)/stepMinutes+1)
	for m := startHour * 60; m <= limit; m += stepMinutes {
		options = append(options, FormatTime(m))
	}
	return options
}

// ParseTime converts "HH:MM" to minutes after midnight. "24:00" is accepted as an end boundary.
func ParseTime(clock string) (int, error) {
	if len(clock) != 5 || clock[2] != ':' || !isDigits(clock[:2]) || !isDigits(clock[3:]) {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	h, errH := strconv.Atoi(clock[:2])
	m, errM := strconv.Atoi(clock[3:])
	if errH != nil || errM != nil || h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q", clock)
	}
	return h*60 + m, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatTime renders minutes after midnight as zero-padded "HH:MM".
func FormatTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts a clock value forward.
func AddMinutes(clock string, minutes int) (string, error) {
	base, err := ParseTime(clock)
	if err != nil {
		return "", err
	}
	return FormatTime(base + minutes), nil
}

// CompareTimes orders two clock values; zero-padding makes byte order correct.
func CompareTimes(a, b string) int {
	return strings.Compare(a, b)
}

// FormatTimeDisplay renders "13:05" as "1:05 PM". Invalid input is returned unchanged.
func FormatTimeDisplay(clock string) string {
	minutes, err := ParseTime(clock)
	if err != nil {
		return clock
	}
	h, m := (minutes/60)%24, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}

// Overlaps reports whether [a0,a1) and [b0,b1) intersect.
func Overlaps(a0, a1, b0, b1 string) bool {
	return a0 < b1 && b0 < a1
}

// ParseDate reads a "YYYY-MM-DD" key as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DateKey formats the calendar date of t, ignoring its clock and zone offset.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly truncates t to UTC midnight of its calendar date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EachDate lists every calendar date in [start, end]. It is empty when end precedes start.
func EachDate(start, end time.Time) []time.Time {
	from, to := DateOnly(start), DateOnly(end)
	if to.Before(from) {
		return nil
	}
	dates := make([]time.Time, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// WeekStart returns the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	d := DateOnly(t)
	return d.AddDate(0, 0, -models.WeekDayOf(d).Index())
}

// NextOccurrence returns the first date on or after from that falls on day,
// moved forward by weekOffset whole weeks.
func NextOccurrence(from time.Time, day models.WeekDay, weekOffset int) time.Time {
	d := DateOnly(from)
	delta := (day.Index() - models.WeekDayOf(d).Index() + 7) % 7
	return d.AddDate(0, 0, delta+7*weekOffset)
}
