package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"washbay/internal/model"
)

func activeStatusPlaceholders() (string, []any) {
	args := make([]any, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		args[i] = s
	}
	return strings.TrimRight(strings.Repeat("?,", len(args)), ","), args
}

// ActiveForDate returns the active reservations whose interval starts on the
// given calendar day, ordered by start time.
func (db *DB) ActiveForDate(ctx context.Context, date time.Time) ([]model.ActiveReservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, db.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	placeholders, args := activeStatusPlaceholders()
	query := fmt.Sprintf(
		"SELECT id, customer_id, start_time, end_time FROM reservations WHERE status IN (%s) AND start_time >= ? AND start_time < ? ORDER BY start_time",
		placeholders)
	args = append(args, db.encodeTime(dayStart), db.encodeTime(dayEnd))

	return db.queryReservations(ctx, query, args...)
}

// ActiveForCustomer returns a customer's active reservations ending after
// since.
func (db *DB) ActiveForCustomer(ctx context.Context, customerID int64, since time.Time) ([]model.ActiveReservation, error) {
	placeholders, args := activeStatusPlaceholders()
	query := fmt.Sprintf(
		"SELECT id, customer_id, start_time, end_time FROM reservations WHERE status IN (%s) AND customer_id = ? AND end_time > ? ORDER BY start_time",
		placeholders)
	args = append(args, customerID, db.encodeTime(since))

	return db.queryReservations(ctx, query, args...)
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...any) ([]model.ActiveReservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var result []model.ActiveReservation
	for rows.Next() {
		var r model.ActiveReservation
		var startStr, endStr string
		if err := rows.Scan(&r.ID, &r.CustomerID, &startStr, &endStr); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		if r.Interval.Start, err = db.decodeTime(startStr); err != nil {
			return nil, err
		}
		if r.Interval.End, err = db.decodeTime(endStr); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// CreateReservation persists a generated reservation and its line items.
// The overlap predicate is re-checked inside the transaction: the availability
// calculation is advisory only, so the write path is the authoritative guard
// against double-booking the bay. Implements recurrence.BookingCreator.
func (db *DB) CreateReservation(ctx context.Context, res *model.GeneratedReservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	placeholders, args := activeStatusPlaceholders()
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM reservations WHERE status IN (%s) AND start_time < ? AND end_time > ?",
		placeholders)
	args = append(args, db.encodeTime(res.Interval.End), db.encodeTime(res.Interval.Start))

	var conflicting int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&conflicting); err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if conflicting > 0 {
		return fmt.Errorf("reservation %s: %w", res.Interval.Start.Format("2006-01-02 15:04"), ErrTimeConflict)
	}

	now := db.encodeTime(time.Now())
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (external_id, customer_id, template_id, start_time, end_time, status, total_price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.CustomerID, res.TemplateID,
		db.encodeTime(res.Interval.Start), db.encodeTime(res.Interval.End),
		model.StatusPending, res.TotalPrice, now, now)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	reservationID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reservation id: %w", err)
	}

	for _, v := range res.VehicleLines {
		for _, s := range v.Services {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO reservation_lines (reservation_id, vehicle_registration, service_name, duration_minutes, unit_price, quantity)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				reservationID, v.Registration, s.Name, s.DurationMinutes, s.UnitPrice, s.Quantity)
			if err != nil {
				return fmt.Errorf("insert reservation line: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}

	db.logger.Info().
		Int64("reservation_id", reservationID).
		Int64("customer_id", res.CustomerID).
		Time("start", res.Interval.Start).
		Msg("reservation created")
	return nil
}

// InsertReservation stores a booking that arrived outside template expansion
// (manual bookings created by staff through the external flows).
func (db *DB) InsertReservation(ctx context.Context, customerID int64, interval model.TimeInterval, status string) (int64, error) {
	now := db.encodeTime(time.Now())
	result, err := db.ExecContext(ctx,
		`INSERT INTO reservations (customer_id, start_time, end_time, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		customerID, db.encodeTime(interval.Start), db.encodeTime(interval.End), status, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert reservation: %w", err)
	}
	return result.LastInsertId()
}
