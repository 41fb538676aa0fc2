package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"washbay/internal/model"
)

// GetTemplate loads a template with its vehicle and service lines.
func (db *DB) GetTemplate(ctx context.Context, id int64) (*model.Template, error) {
	var (
		tpl           model.Template
		active        bool
		frequency     string
		dayOfWeek     int
		timeOfDay     string
		lastGenerated sql.NullString
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, customer_id, customer_name, active, frequency, day_of_week, day_of_month,
		        time_of_day, horizon_days, discount_percent, last_generated_at
		 FROM templates WHERE id = ?`, id).
		Scan(&tpl.ID, &tpl.CustomerID, &tpl.CustomerName, &active, &frequency, &dayOfWeek,
			&tpl.DayOfMonth, &timeOfDay, &tpl.HorizonDays, &tpl.DiscountPercent, &lastGenerated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}

	tpl.Active = active
	tpl.Frequency = model.Frequency(frequency)
	tpl.DayOfWeek = time.Weekday(dayOfWeek)
	if tpl.TimeOfDay, err = model.ParseTimeOfDay(timeOfDay); err != nil {
		return nil, fmt.Errorf("template time_of_day: %w", err)
	}
	if lastGenerated.Valid {
		t, err := db.decodeTime(lastGenerated.String)
		if err != nil {
			return nil, err
		}
		tpl.LastGeneratedAt = &t
	}

	if tpl.Vehicles, err = db.templateLines(ctx, id); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (db *DB) templateLines(ctx context.Context, templateID int64) ([]model.VehicleLine, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT vehicle_id, vehicle_registration, service_id, service_name, duration_minutes, unit_price, quantity
		 FROM template_lines WHERE template_id = ? ORDER BY vehicle_id, id`, templateID)
	if err != nil {
		return nil, fmt.Errorf("query template lines: %w", err)
	}
	defer rows.Close()

	var vehicles []model.VehicleLine
	index := map[int64]int{}
	for rows.Next() {
		var (
			vehicleID    int64
			registration string
			svc          model.ServiceLine
		)
		if err := rows.Scan(&vehicleID, &registration, &svc.ServiceID, &svc.Name,
			&svc.DurationMinutes, &svc.UnitPrice, &svc.Quantity); err != nil {
			return nil, fmt.Errorf("scan template line: %w", err)
		}

		i, ok := index[vehicleID]
		if !ok {
			vehicles = append(vehicles, model.VehicleLine{VehicleID: vehicleID, Registration: registration})
			i = len(vehicles) - 1
			index[vehicleID] = i
		}
		vehicles[i].Services = append(vehicles[i].Services, svc)
	}
	return vehicles, rows.Err()
}

// UpdateLastGenerated moves the expansion watermark forward.
// Implements recurrence.TemplateStore.
func (db *DB) UpdateLastGenerated(ctx context.Context, templateID int64, generatedAt time.Time) error {
	result, err := db.ExecContext(ctx,
		"UPDATE templates SET last_generated_at = ? WHERE id = ?",
		db.encodeTime(generatedAt), templateID)
	if err != nil {
		return fmt.Errorf("update template watermark: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("template %d: %w", templateID, ErrNotFound)
	}
	return nil
}

// CreateTemplate stores a template with its lines. Used by seeding and tests;
// contract management itself lives in the external CRM flows.
func (db *DB) CreateTemplate(ctx context.Context, tpl *model.Template) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO templates (customer_id, customer_name, active, frequency, day_of_week, day_of_month,
		                        time_of_day, horizon_days, discount_percent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.CustomerID, tpl.CustomerName, tpl.Active, string(tpl.Frequency), int(tpl.DayOfWeek),
		tpl.DayOfMonth, tpl.TimeOfDay.String(), tpl.HorizonDays, tpl.DiscountPercent)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	if tpl.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("template id: %w", err)
	}

	for _, v := range tpl.Vehicles {
		for _, s := range v.Services {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO template_lines (template_id, vehicle_id, vehicle_registration, service_id,
				                             service_name, duration_minutes, unit_price, quantity)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				tpl.ID, v.VehicleID, v.Registration, s.ServiceID, s.Name, s.DurationMinutes, s.UnitPrice, s.Quantity)
			if err != nil {
				return fmt.Errorf("insert template line: %w", err)
			}
		}
	}

	return tx.Commit()
}
