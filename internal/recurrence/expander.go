// Package recurrence expands recurring contract templates into concrete
// reservations over a rolling horizon.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"washbay/internal/calendar"
	"washbay/internal/events"
	"washbay/internal/metrics"
	"washbay/internal/model"
	"washbay/internal/pricing"
)

var (
	// ErrTemplateInactive is reported to the caller; expansion is not retried.
	ErrTemplateInactive = errors.New("template is inactive")

	// ErrExpansionInProgress means another run holds the per-template lock.
	ErrExpansionInProgress = errors.New("expansion already running for this template")
)

// Coarse skip codes, used as metric labels.
const (
	skipClosed       = "closed_day"
	skipLeadTime     = "lead_time"
	skipAlreadyDone  = "already_generated"
	skipConflict     = "conflict"
	skipInvalidDate  = "invalid_date"
	skipCreateFailed = "create_failed"
)

// SkippedCandidate records one candidate date that was not materialized.
// Skips are normal outcomes; they never abort the batch.
type SkippedCandidate struct {
	Date   time.Time `json:"date"`
	Reason string    `json:"reason"`
}

// Run summarizes one expansion of a single template.
type Run struct {
	ID         string
	TemplateID int64
	Created    []model.GeneratedReservation
	Skipped    []SkippedCandidate
	StartedAt  time.Time
	FinishedAt time.Time
}

// TemplateStore persists the expansion watermark.
type TemplateStore interface {
	UpdateLastGenerated(ctx context.Context, templateID int64, generatedAt time.Time) error
}

// ReservationSource supplies the read-only reservation snapshots the expander
// validates against.
type ReservationSource interface {
	ActiveForCustomer(ctx context.Context, customerID int64, since time.Time) ([]model.ActiveReservation, error)
	ActiveForDate(ctx context.Context, date time.Time) ([]model.ActiveReservation, error)
}

// BookingCreator is the external booking-creation collaborator. It owns the
// authoritative atomic conflict check on the write path.
type BookingCreator interface {
	CreateReservation(ctx context.Context, res *model.GeneratedReservation) error
}

// SettingsSource supplies a fresh schedule-settings snapshot per run.
type SettingsSource interface {
	GetScheduleSettings(ctx context.Context) (model.ScheduleSettings, error)
}

// Expander walks a template's recurrence rule across the horizon and
// materializes valid candidates as reservations.
type Expander struct {
	templates       TemplateStore
	reservations    ReservationSource
	creator         BookingCreator
	settings        SettingsSource
	policy          *calendar.Policy
	locker          Locker
	bus             *events.EventBus
	logger          *zerolog.Logger
	loc             *time.Location
	now             func() time.Time
	minAdvanceHours int
}

// Options groups the Expander dependencies. MinAdvanceHours is a fallback
// used only when no Settings source is wired.
type Options struct {
	Templates       TemplateStore
	Reservations    ReservationSource
	Creator         BookingCreator
	Settings        SettingsSource
	Policy          *calendar.Policy
	Locker          Locker
	Bus             *events.EventBus
	Logger          *zerolog.Logger
	Location        *time.Location
	Now             func() time.Time
	MinAdvanceHours int
}

// NewExpander builds an expander. Locker, Bus and Now may be left unset.
func NewExpander(opts Options) *Expander {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Locker == nil {
		opts.Locker = NoopLocker{}
	}
	return &Expander{
		templates:       opts.Templates,
		reservations:    opts.Reservations,
		creator:         opts.Creator,
		settings:        opts.Settings,
		policy:          opts.Policy,
		locker:          opts.Locker,
		bus:             opts.Bus,
		logger:          opts.Logger,
		loc:             opts.Location,
		now:             opts.Now,
		minAdvanceHours: opts.MinAdvanceHours,
	}
}

// Expand generates reservations for the template up to
// today + max(horizonOverrideDays, template horizon, default 30). Candidates
// failing validation are collected as skips and the loop continues; after the
// loop the template's LastGeneratedAt watermark moves to now. Two concurrent
// runs for the same template are rejected via the per-template lock.
func (e *Expander) Expand(ctx context.Context, tpl *model.Template, horizonOverrideDays int) (*Run, error) {
	if !tpl.Active {
		return nil, fmt.Errorf("template %d: %w", tpl.ID, ErrTemplateInactive)
	}

	release, ok, err := e.locker.Acquire(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("acquire expansion lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("template %d: %w", tpl.ID, ErrExpansionInProgress)
	}
	defer release()

	now := e.now().In(e.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
	endDate := today.AddDate(0, 0, horizonDays(horizonOverrideDays, tpl.HorizonDays))

	// Snapshot of the customer's upcoming reservations, fetched once. This is
	// the idempotency guard against re-running expansion for the template.
	existing, err := e.reservations.ActiveForCustomer(ctx, tpl.CustomerID, now)
	if err != nil {
		return nil, fmt.Errorf("load customer reservations: %w", err)
	}

	run := &Run{
		ID:         uuid.NewString(),
		TemplateID: tpl.ID,
		StartedAt:  now,
	}
	metrics.IncExpansionRun()

	minAdvance := e.minAdvanceHours
	if e.settings != nil {
		// Fresh snapshot per run, never cached across calls.
		st, err := e.settings.GetScheduleSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load schedule settings: %w", err)
		}
		minAdvance = st.MinAdvanceHours
	}

	earliest := now.Add(time.Duration(minAdvance) * time.Hour)
	discount := clampDiscount(tpl.DiscountPercent)
	totalMinutes := tpl.TotalDurationMinutes()

	cursor := today
	for {
		candidate, valid, next := nextCandidate(tpl, cursor, today, e.loc)
		if candidate.After(endDate) {
			break
		}
		cursor = next

		if !valid {
			e.skip(run, candidate, skipInvalidDate,
				fmt.Sprintf("no day %d in %s %d", tpl.DayOfMonth, candidate.Month(), candidate.Year()))
			continue
		}

		if err := e.processCandidate(ctx, run, tpl, candidate, earliest, existing, discount, totalMinutes); err != nil {
			return nil, err
		}
	}

	if err := e.templates.UpdateLastGenerated(ctx, tpl.ID, now); err != nil {
		return nil, fmt.Errorf("update template watermark: %w", err)
	}
	tpl.LastGeneratedAt = &now

	run.FinishedAt = e.now().In(e.loc)
	if e.bus != nil {
		e.bus.Publish(events.Event{Type: events.TypeExpansionCompleted, Payload: run})
	}
	if e.logger != nil {
		e.logger.Info().
			Str("run_id", run.ID).
			Int64("template_id", tpl.ID).
			Int("created", len(run.Created)).
			Int("skipped", len(run.Skipped)).
			Msg("template expansion completed")
	}
	return run, nil
}

func (e *Expander) processCandidate(ctx context.Context, run *Run, tpl *model.Template,
	candidate, earliest time.Time, existing []model.ActiveReservation, discount float64, totalMinutes int) error {

	closed, reason, err := e.policy.IsClosed(ctx, candidate)
	if err != nil {
		return err
	}
	if closed {
		e.skip(run, candidate, skipClosed, reason)
		return nil
	}

	startAt := tpl.TimeOfDay.On(candidate)
	interval, err := model.NewTimeInterval(startAt, startAt.Add(time.Duration(totalMinutes)*time.Minute))
	if err != nil {
		e.skip(run, candidate, skipInvalidDate, err.Error())
		return nil
	}

	if startAt.Before(earliest) {
		e.skip(run, candidate, skipLeadTime, "within lead-time window")
		return nil
	}

	for _, r := range existing {
		if r.Interval.Start.Equal(startAt) {
			e.skip(run, candidate, skipAlreadyDone, "already generated")
			return nil
		}
	}

	dayReservations, err := e.reservations.ActiveForDate(ctx, candidate)
	if err != nil {
		return fmt.Errorf("load reservations for %s: %w", candidate.Format("2006-01-02"), err)
	}
	for _, r := range dayReservations {
		if interval.Overlaps(r.Interval) {
			e.skip(run, candidate, skipConflict,
				fmt.Sprintf("conflicts with reservation %d", r.ID))
			return nil
		}
	}

	res := &model.GeneratedReservation{
		ID:            uuid.NewString(),
		TemplateID:    tpl.ID,
		CustomerID:    tpl.CustomerID,
		Date:          candidate,
		Interval:      interval,
		VehicleLines:  tpl.Vehicles,
		TotalDuration: totalMinutes,
		TotalPrice:    templatePrice(tpl, discount),
	}

	if err := e.creator.CreateReservation(ctx, res); err != nil {
		if e.logger != nil {
			e.logger.Error().Err(err).
				Int64("template_id", tpl.ID).
				Time("date", candidate).
				Msg("failed to create reservation for candidate")
		}
		e.skip(run, candidate, skipCreateFailed, fmt.Sprintf("create reservation: %v", err))
		return nil
	}

	run.Created = append(run.Created, *res)
	metrics.AddExpansionCreated(1)
	if e.bus != nil {
		e.bus.Publish(events.Event{Type: events.TypeReservationGenerated, Payload: res})
	}
	return nil
}

func (e *Expander) skip(run *Run, date time.Time, code, reason string) {
	run.Skipped = append(run.Skipped, SkippedCandidate{Date: date, Reason: reason})
	metrics.IncExpansionSkipped(code)
	if e.logger != nil {
		e.logger.Debug().Time("date", date).Str("reason", reason).Msg("skipped expansion candidate")
	}
}

// nextCandidate advances the recurrence cursor one step. For monthly rules in
// months that do not contain the target day, valid is false and the returned
// candidate is the last day of that month (used for horizon termination and
// skip reporting); the month is skipped rather than clamped.
func nextCandidate(tpl *model.Template, cursor, today time.Time, loc *time.Location) (candidate time.Time, valid bool, next time.Time) {
	switch tpl.Frequency {
	case model.FrequencyMonthly:
		candidate, valid = monthlyDate(cursor.Year(), cursor.Month(), tpl.DayOfMonth, loc)
		if candidate.Before(today) {
			candidate, valid = monthlyDate(cursor.Year(), cursor.Month()+1, tpl.DayOfMonth, loc)
		}
		next = time.Date(candidate.Year(), candidate.Month()+1, 1, 0, 0, 0, 0, loc)
		return candidate, valid, next

	default: // weekly
		daysUntil := (int(tpl.DayOfWeek) - int(cursor.Weekday()) + 7) % 7
		candidate = cursor.AddDate(0, 0, daysUntil)
		if candidate.Before(today) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate, true, candidate.AddDate(0, 0, 7)
	}
}

// monthlyDate builds (year, month, day) when the month contains that day.
// Otherwise it returns the last day of the month with valid=false.
func monthlyDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	lastDay := time.Date(year, month+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	if day > lastDay.Day() {
		return lastDay, false
	}
	return time.Date(lastDay.Year(), lastDay.Month(), day, 0, 0, 0, 0, loc), true
}

// templatePrice accumulates discounted line totals across all vehicles.
func templatePrice(tpl *model.Template, discount float64) float64 {
	total := 0.0
	for _, v := range tpl.Vehicles {
		for _, s := range v.Services {
			total += pricing.LineTotal(s.UnitPrice, discount, s.Quantity)
		}
	}
	return total
}

func horizonDays(override, templateDays int) int {
	days := model.DefaultHorizonDays
	if templateDays > days {
		days = templateDays
	}
	if override > days {
		days = override
	}
	return days
}

func clampDiscount(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
