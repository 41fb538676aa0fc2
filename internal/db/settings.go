package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"washbay/internal/model"
)

// Settings keys read by the engine on every request.
const (
	SettingOpeningTime     = "opening_time"
	SettingClosingTime     = "closing_time"
	SettingMinAdvanceHours = "min_advance_booking_hours"
)

// DefaultSettings seed the store on first run.
var DefaultSettings = map[string]string{
	SettingOpeningTime:     "08:00",
	SettingClosingTime:     "16:00",
	SettingMinAdvanceHours: "24",
}

// EnsureDefaultSettings inserts any missing settings keys.
func (db *DB) EnsureDefaultSettings(ctx context.Context) error {
	for key, value := range DefaultSettings {
		_, err := db.ExecContext(ctx,
			"INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)", key, value)
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}

// SetSetting updates or inserts one settings value.
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

func (db *DB) getSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		if def, ok := DefaultSettings[key]; ok {
			return def, nil
		}
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", key, err)
	}
	return value, nil
}

// GetScheduleSettings reads a fresh snapshot of the schedule configuration.
// It is called per request; values are never cached across requests.
func (db *DB) GetScheduleSettings(ctx context.Context) (model.ScheduleSettings, error) {
	var settings model.ScheduleSettings

	opening, err := db.getSetting(ctx, SettingOpeningTime)
	if err != nil {
		return settings, err
	}
	settings.Hours.OpensAt, err = model.ParseTimeOfDay(opening)
	if err != nil {
		return settings, fmt.Errorf("setting %s: %w", SettingOpeningTime, err)
	}

	closing, err := db.getSetting(ctx, SettingClosingTime)
	if err != nil {
		return settings, err
	}
	settings.Hours.ClosesAt, err = model.ParseTimeOfDay(closing)
	if err != nil {
		return settings, fmt.Errorf("setting %s: %w", SettingClosingTime, err)
	}

	advance, err := db.getSetting(ctx, SettingMinAdvanceHours)
	if err != nil {
		return settings, err
	}
	settings.MinAdvanceHours, err = strconv.Atoi(advance)
	if err != nil {
		return settings, fmt.Errorf("setting %s: %w", SettingMinAdvanceHours, err)
	}

	return settings, nil
}
