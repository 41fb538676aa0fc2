package calendar

import (
	"context"
	"fmt"
	"time"

	"washbay/internal/model"
)

// ClosureSource looks up a manual closure record for a date. A nil record
// means the date has no manual closure.
type ClosureSource interface {
	ManualClosure(ctx context.Context, date time.Time) (*model.ClosureRecord, error)
}

// Policy decides whether a calendar date is closed for business: weekends
// (fixed rule), public holidays, or an explicit manual closure.
type Policy struct {
	holidays HolidayFunc
	closures ClosureSource
}

// NewPolicy builds a calendar policy. closures may be nil when no manual
// closure store is wired (tests, pure calculations).
func NewPolicy(holidays HolidayFunc, closures ClosureSource) *Policy {
	return &Policy{holidays: holidays, closures: closures}
}

// IsClosed reports whether the date is closed and a human-readable reason.
// An open date is the normal case and carries no error.
func (p *Policy) IsClosed(ctx context.Context, date time.Time) (bool, string, error) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return true, "closed on weekends", nil
	}

	if p.holidays != nil {
		if name, ok := p.holidays(date); ok {
			return true, fmt.Sprintf("public holiday: %s", name), nil
		}
	}

	if p.closures != nil {
		rec, err := p.closures.ManualClosure(ctx, date)
		if err != nil {
			return false, "", fmt.Errorf("lookup manual closure: %w", err)
		}
		if rec != nil {
			return true, rec.Reason, nil
		}
	}

	return false, "", nil
}
