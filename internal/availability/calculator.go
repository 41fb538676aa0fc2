// Package availability computes bookable start times for a calendar date.
package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"washbay/internal/calendar"
	"washbay/internal/model"
)

const (
	// GridStepMinutes is the cadence of the implicit candidate grid.
	GridStepMinutes = 30

	// lastStartHour hard-caps candidate starts at 16:00 local time,
	// independent of any end-of-day extension.
	lastStartHour = 16

	// Jobs longer than longJobMinutes extend the nominal closing hour by up
	// to extensionMinutes, never past extendedCloseCapMinutes (20:00).
	longJobMinutes          = 360
	extensionMinutes        = 120
	extendedCloseCapMinutes = 20 * 60
)

// Request carries everything one availability calculation needs. Reservations
// are expected to be pre-filtered to the requested calendar day.
type Request struct {
	Date            time.Time
	DurationMinutes int
	Reservations    []model.ActiveReservation
	Hours           model.BusinessHours
	ExplicitSlots   []model.ExplicitSlot
	MinAdvanceHours int
}

// Result distinguishes three normal outcomes: a closed day, a duration that
// cannot fit the service window at all, and an open day whose Times may simply
// be empty.
type Result struct {
	Times        []string `json:"times"`
	Closed       bool     `json:"closed"`
	Reason       string   `json:"reason,omitempty"`
	Rejected     bool     `json:"rejected"`
	RejectReason string   `json:"reject_reason,omitempty"`
}

// Calculator produces ordered bookable start times. It is advisory: the write
// path must re-validate with the same overlap predicate before committing,
// since no lock is held between reading reservations and deciding.
type Calculator struct {
	policy *calendar.Policy
	loc    *time.Location
	now    func() time.Time
}

// NewCalculator builds a calculator with an injected business time zone and
// clock. now may be nil, defaulting to time.Now.
func NewCalculator(policy *calendar.Policy, loc *time.Location, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{policy: policy, loc: loc, now: now}
}

// ComputeAvailableStarts applies the calendar policy, window and lead-time
// rules, then filters the candidate grid against existing reservations.
func (c *Calculator) ComputeAvailableStarts(ctx context.Context, req Request) (Result, error) {
	day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, c.loc)

	closed, reason, err := c.policy.IsClosed(ctx, day)
	if err != nil {
		return Result{}, err
	}
	if closed {
		return Result{Times: []string{}, Closed: true, Reason: reason}, nil
	}

	openMin := req.Hours.OpensAt.MinutesFromMidnight()
	closeMin := req.Hours.ClosesAt.MinutesFromMidnight()
	if req.DurationMinutes > longJobMinutes {
		extended := closeMin + extensionMinutes
		if extended > extendedCloseCapMinutes {
			extended = extendedCloseCapMinutes
		}
		if extended > closeMin {
			closeMin = extended
		}
	}

	window := closeMin - openMin
	if req.DurationMinutes > window {
		return Result{
			Times:    []string{},
			Rejected: true,
			RejectReason: fmt.Sprintf("service requires %d minutes but only %d minutes are available between %s and %s",
				req.DurationMinutes, window, req.Hours.OpensAt, clockString(closeMin)),
		}, nil
	}

	earliest := c.now().Add(time.Duration(req.MinAdvanceHours) * time.Hour)
	closeAt := onDay(day, closeMin)
	lastStart := time.Date(day.Year(), day.Month(), day.Day(), lastStartHour, 0, 0, 0, c.loc)

	starts := c.candidateStarts(day, req.ExplicitSlots, openMin)

	duration := time.Duration(req.DurationMinutes) * time.Minute
	times := make([]string, 0, len(starts))
	for _, start := range starts {
		if start.After(lastStart) {
			continue
		}
		end := start.Add(duration)
		if end.After(closeAt) {
			continue
		}
		if start.Before(earliest) {
			continue
		}

		candidate, err := model.NewTimeInterval(start, end)
		if err != nil {
			// fatal to this candidate only
			continue
		}
		if conflicts(candidate, req.Reservations) {
			continue
		}
		times = append(times, start.Format("15:04"))
	}

	return Result{Times: times}, nil
}

// candidateStarts returns potential start instants in ascending order: the
// explicit slots for the date when any exist, otherwise the implicit
// half-hour grid from opening time up to the 16:00 start cap.
func (c *Calculator) candidateStarts(day time.Time, slots []model.ExplicitSlot, openMin int) []time.Time {
	if len(slots) > 0 {
		usable := make([]model.ExplicitSlot, 0, len(slots))
		for _, s := range slots {
			if s.IsAvailable && !s.IsHoliday {
				usable = append(usable, s)
			}
		}
		sort.Slice(usable, func(i, j int) bool {
			return usable[i].Start.MinutesFromMidnight() < usable[j].Start.MinutesFromMidnight()
		})
		starts := make([]time.Time, 0, len(usable))
		for _, s := range usable {
			starts = append(starts, s.Start.On(day))
		}
		return starts
	}

	var starts []time.Time
	for m := openMin; m <= lastStartHour*60; m += GridStepMinutes {
		starts = append(starts, onDay(day, m))
	}
	return starts
}

func conflicts(candidate model.TimeInterval, reservations []model.ActiveReservation) bool {
	for _, r := range reservations {
		if candidate.Overlaps(r.Interval) {
			return true
		}
	}
	return false
}

// onDay builds an instant from wall-clock components so the date never shifts
// across timezone offsets.
func onDay(day time.Time, minutesFromMidnight int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		minutesFromMidnight/60, minutesFromMidnight%60, 0, 0, day.Location())
}

func clockString(minutesFromMidnight int) string {
	return fmt.Sprintf("%02d:%02d", minutesFromMidnight/60, minutesFromMidnight%60)
}
