package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInterval is returned when an interval would have start >= end.
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// TimeInterval is a half-open interval [Start, End). End is exclusive, so a
// booking ending at 11:00 does not conflict with one starting at 11:00.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeInterval validates and builds an interval.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("%w: start=%s end=%s", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeInterval{Start: start, End: end}, nil
}

// Overlaps reports whether two half-open intervals share any instant.
// [A, B) and [C, D) overlap iff A < D && C < B.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Duration returns the interval length.
func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Minutes returns the interval length in whole minutes.
func (i TimeInterval) Minutes() int {
	return int(i.End.Sub(i.Start) / time.Minute)
}
