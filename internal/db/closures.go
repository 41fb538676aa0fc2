package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"washbay/internal/model"
)

// ManualClosure returns the manual closure record for a date, or nil when the
// date is open. Implements calendar.ClosureSource.
func (db *DB) ManualClosure(ctx context.Context, date time.Time) (*model.ClosureRecord, error) {
	var reason string
	err := db.QueryRowContext(ctx,
		"SELECT reason FROM manual_closures WHERE date = ?", dateKey(date)).Scan(&reason)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manual closure: %w", err)
	}
	return &model.ClosureRecord{Date: date, Reason: reason, Kind: model.ClosureManual}, nil
}

// AddManualClosure marks a date closed with a reason.
func (db *DB) AddManualClosure(ctx context.Context, date time.Time, reason string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO manual_closures (date, reason) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET reason = excluded.reason",
		dateKey(date), reason)
	return err
}

// RemoveManualClosure reopens a manually closed date.
func (db *DB) RemoveManualClosure(ctx context.Context, date time.Time) error {
	_, err := db.ExecContext(ctx, "DELETE FROM manual_closures WHERE date = ?", dateKey(date))
	return err
}

// SlotsForDate returns the explicit slots configured for a date, if any.
// When present they override the implicit half-hour grid.
func (db *DB) SlotsForDate(ctx context.Context, date time.Time) ([]model.ExplicitSlot, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT start_time, end_time, is_available, is_holiday FROM explicit_slots WHERE date = ? ORDER BY start_time",
		dateKey(date))
	if err != nil {
		return nil, fmt.Errorf("read explicit slots: %w", err)
	}
	defer rows.Close()

	var slots []model.ExplicitSlot
	for rows.Next() {
		var startStr, endStr string
		var available, holiday bool
		if err := rows.Scan(&startStr, &endStr, &available, &holiday); err != nil {
			return nil, fmt.Errorf("scan explicit slot: %w", err)
		}
		start, err := model.ParseTimeOfDay(startStr)
		if err != nil {
			return nil, fmt.Errorf("explicit slot start: %w", err)
		}
		end, err := model.ParseTimeOfDay(endStr)
		if err != nil {
			return nil, fmt.Errorf("explicit slot end: %w", err)
		}
		slots = append(slots, model.ExplicitSlot{
			Date:        date,
			Start:       start,
			End:         end,
			IsAvailable: available,
			IsHoliday:   holiday,
		})
	}
	return slots, rows.Err()
}

// AddExplicitSlot configures one explicit slot for a date.
func (db *DB) AddExplicitSlot(ctx context.Context, slot model.ExplicitSlot) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO explicit_slots (date, start_time, end_time, is_available, is_holiday) VALUES (?, ?, ?, ?, ?)",
		dateKey(slot.Date), slot.Start.String(), slot.End.String(), slot.IsAvailable, slot.IsHoliday)
	return err
}
