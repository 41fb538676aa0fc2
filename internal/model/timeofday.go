package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date, e.g. opening hours.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time format: %s", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q: %w", s, err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time out of range: %s", s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// On combines the time-of-day with a calendar date. The instant is built from
// wall-clock components in the date's location rather than by epoch arithmetic,
// so the result never drifts across a midnight boundary.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// MinutesFromMidnight returns the offset in minutes since 00:00.
func (t TimeOfDay) MinutesFromMidnight() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// BusinessHours holds the nominal daily opening window. It is re-read from the
// settings store on every request rather than cached in the process.
type BusinessHours struct {
	OpensAt  TimeOfDay
	ClosesAt TimeOfDay
}
