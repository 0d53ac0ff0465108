package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// WeekDay is the canonical day key used in stored data and payloads.
type WeekDay string

const (
	Monday    WeekDay = "monday"
	Tuesday   WeekDay = "tuesday"
	Wednesday WeekDay = "wednesday"
	Thursday  WeekDay = "thursday"
	Friday    WeekDay = "friday"
	Saturday  WeekDay = "saturday"
	Sunday    WeekDay = "sunday"
)

// WeekDays lists every day in Monday-first order.
var WeekDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// SchoolDays lists the days the suggestion grid scans.
var SchoolDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday}

// Valid reports whether the day is one of the seven known keys.
func (d WeekDay) Valid() bool {
	return d.Index() >= 0
}

// Index returns the Monday-based position of the day, or -1 when unknown.
func (d WeekDay) Index() int {
	for i, day := range WeekDays {
		if day == d {
			return i
		}
	}
	return -1
}

// WeekDayOf maps a calendar date to its day key.
func WeekDayOf(t time.Time) WeekDay {
	// time.Weekday is Sunday=0.
	return WeekDays[(int(t.Weekday())+6)%7]
}

// WeeklyTimeBlock is a same-day time window repeated on each listed weekday.
type WeeklyTimeBlock struct {
	Days      []WeekDay `json:"days" validate:"required,min=1,dive,weekday"`
	StartTime string    `json:"start_time" validate:"required,hhmm"`
	EndTime   string    `json:"end_time" validate:"required,hhmm"`
}

// Includes reports whether the block repeats on the given day.
func (b WeeklyTimeBlock) Includes(day WeekDay) bool {
	for _, d := range b.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Validate checks the block invariants: known days, well-formed clock values and start before end.
func (b WeeklyTimeBlock) Validate() error {
	if len(b.Days) == 0 {
		return errors.New("block must list at least one day")
	}
	for _, d := range b.Days {
		if !d.Valid() {
			return fmt.Errorf("unknown weekday %q", d)
		}
	}
	if !ValidClock(b.StartTime) || !ValidClock(b.EndTime) {
		return fmt.Errorf("block times must be HH:MM, got %q-%q", b.StartTime, b.EndTime)
	}
	if b.StartTime >= b.EndTime {
		return fmt.Errorf("block start %s must be before end %s", b.StartTime, b.EndTime)
	}
	return nil
}

// Scan implements sql.Scanner for JSONB columns.
func (b *WeeklyTimeBlock) Scan(src interface{}) error {
	return scanJSON(src, b)
}

// Value implements driver.Valuer for JSONB columns.
func (b WeeklyTimeBlock) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// WeeklyTimeBlocks is a union of blocks, stored as a JSONB array.
type WeeklyTimeBlocks []WeeklyTimeBlock

// Scan implements sql.Scanner.
func (bs *WeeklyTimeBlocks) Scan(src interface{}) error {
	if src == nil {
		*bs = WeeklyTimeBlocks{}
		return nil
	}
	return scanJSON(src, bs)
}

// Value implements driver.Valuer.
func (bs WeeklyTimeBlocks) Value() (driver.Value, error) {
	if bs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(bs)
}

// ValidClock reports whether s is a zero-padded 24h "HH:MM" value. "24:00"
// is accepted as an end-of-day boundary.
func ValidClock(s string) bool {
	if s == "24:00" {
		return true
	}
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

func scanJSON(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported JSON source %T", src)
	}
}
