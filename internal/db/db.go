// Package db implements the sqlite-backed stores consumed by the scheduling
// engine: settings, manual closures, reservations and recurring templates.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection pool.
type DB struct {
	*sql.DB
	loc    *time.Location
	logger *zerolog.Logger
}

var (
	ErrNotFound     = errors.New("not found")
	ErrTimeConflict = errors.New("time conflict with existing reservation")
)

// NewDB opens (and if needed creates) the database at path.
func NewDB(path string, loc *time.Location, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	instance := &DB{DB: sqlDB, loc: loc, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS manual_closures (
			date   TEXT PRIMARY KEY,
			reason TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT NOT NULL DEFAULT '',
			customer_id INTEGER NOT NULL,
			template_id INTEGER,
			start_time  TEXT NOT NULL,
			end_time    TEXT NOT NULL,
			status      TEXT NOT NULL,
			total_price REAL NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_start ON reservations(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_customer ON reservations(customer_id)`,
		`CREATE TABLE IF NOT EXISTS reservation_lines (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			reservation_id       INTEGER NOT NULL REFERENCES reservations(id),
			vehicle_registration TEXT NOT NULL,
			service_name         TEXT NOT NULL,
			duration_minutes     INTEGER NOT NULL,
			unit_price           REAL NOT NULL,
			quantity             INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS templates (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id       INTEGER NOT NULL,
			customer_name     TEXT NOT NULL DEFAULT '',
			active            INTEGER NOT NULL DEFAULT 1,
			frequency         TEXT NOT NULL,
			day_of_week       INTEGER NOT NULL DEFAULT 0,
			day_of_month      INTEGER NOT NULL DEFAULT 0,
			time_of_day       TEXT NOT NULL,
			horizon_days      INTEGER NOT NULL DEFAULT 30,
			discount_percent  REAL NOT NULL DEFAULT 0,
			last_generated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS template_lines (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id          INTEGER NOT NULL REFERENCES templates(id),
			vehicle_id           INTEGER NOT NULL DEFAULT 0,
			vehicle_registration TEXT NOT NULL,
			service_id           INTEGER NOT NULL DEFAULT 0,
			service_name         TEXT NOT NULL,
			duration_minutes     INTEGER NOT NULL,
			unit_price           REAL NOT NULL,
			quantity             INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS explicit_slots (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			date         TEXT NOT NULL,
			start_time   TEXT NOT NULL,
			end_time     TEXT NOT NULL,
			is_available INTEGER NOT NULL DEFAULT 1,
			is_holiday   INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_explicit_slots_date ON explicit_slots(date)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

// Timestamps are stored as UTC RFC3339 so that lexicographic comparison in
// SQL matches chronological order across DST changes.
func (db *DB) encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func (db *DB) decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.In(db.loc), nil
}

func dateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
