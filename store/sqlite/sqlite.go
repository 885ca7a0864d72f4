/*
Package sqlite provides a SQLite-backed implementation of source.Source.

PURPOSE:
  Persists the already-fetched records the engine consumes - resources,
  time-off entries, holiday windows, scheduling slots, and work logs - and
  serves them per reporting window. This is the collaborator-owned record
  store, NOT a client of the external resource-planning system; syncing
  records into it is someone else's job.

KEY TABLES:
  resources:        Staff members with calendar label and holiday group
  time_off:         Per-day excused hours, pre-filtered to the time-off category
  holiday_windows:  UTC instants; the engine applies the local shift
  scheduling_slots: Planned allocations, possibly spanning outside any window
  work_logs:        Actually-logged hours per day

WINDOW FILTERING:
  time_off and work_logs filter by date containment. holiday_windows and
  scheduling_slots filter by interval OVERLAP - both record kinds may extend
  outside the reporting window, and the engine needs their full extent.
  Holiday bounds are shifted by engine.LocalOffset so windows observed on
  the window's first or last local day are not lost to the UTC gap.

ENCODING:
  Timestamps are stored as RFC 3339 UTC strings, dates as "2006-01-02",
  hours as decimal text to avoid floating-point drift.

WAL MODE:
  Opened with WAL for concurrent readers; a sync.RWMutex serializes writes.

USAGE:
  store, err := sqlite.New("./data/utilization.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
  records, err := store.Fetch(ctx, window)

SEE ALSO:
  - source/records.go: The interface this implements
  - source/memory.go: In-memory counterpart for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/AxtonH/UtilizationDashboard-sub000/engine"
	"github.com/AxtonH/UtilizationDashboard-sub000/reporting"
	"github.com/AxtonH/UtilizationDashboard-sub000/source"
)

// Store implements source.Source over SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) a SQLite record store. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		calendar_label TEXT NOT NULL DEFAULT '',
		org_key INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS time_off (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		resource_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_time_off_resource_date
		ON time_off(resource_id, date);

	CREATE TABLE IF NOT EXISTS holiday_windows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		org_key INTEGER NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		label TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_holiday_windows_org
		ON holiday_windows(org_key, start_at);

	CREATE TABLE IF NOT EXISTS scheduling_slots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		resource_id INTEGER NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		allocated_hours TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_slots_resource_range
		ON scheduling_slots(resource_id, start_at, end_at);

	CREATE TABLE IF NOT EXISTS work_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		resource_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		hours TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_work_logs_resource_date
		ON work_logs(resource_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SOURCE IMPLEMENTATION
// =============================================================================

// Fetch returns the records relevant to the window: time-off and work logs
// contained in it, holiday windows and slots overlapping it.
func (s *Store) Fetch(ctx context.Context, window engine.Window) (source.Records, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records source.Records
	var err error

	if records.Resources, err = s.fetchResources(ctx); err != nil {
		return source.Records{}, fmt.Errorf("fetch resources: %w", err)
	}
	if records.TimeOff, err = s.fetchTimeOff(ctx, window); err != nil {
		return source.Records{}, fmt.Errorf("fetch time off: %w", err)
	}
	if records.Holidays, err = s.fetchHolidays(ctx, window); err != nil {
		return source.Records{}, fmt.Errorf("fetch holiday windows: %w", err)
	}
	if records.Slots, err = s.fetchSlots(ctx, window); err != nil {
		return source.Records{}, fmt.Errorf("fetch scheduling slots: %w", err)
	}
	if records.WorkLogs, err = s.fetchWorkLogs(ctx, window); err != nil {
		return source.Records{}, fmt.Errorf("fetch work logs: %w", err)
	}
	return records, nil
}

// Resources returns the full resource set, independent of any window.
func (s *Store) Resources(ctx context.Context) ([]engine.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchResources(ctx)
}

func (s *Store) fetchResources(ctx context.Context) ([]engine.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, calendar_label, org_key FROM resources ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []engine.Resource
	for rows.Next() {
		var r engine.Resource
		if err := rows.Scan(&r.ID, &r.Name, &r.CalendarLabel, &r.OrgKey); err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func (s *Store) fetchTimeOff(ctx context.Context, window engine.Window) ([]engine.TimeOffRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resource_id, date, hours FROM time_off
		 WHERE date >= ? AND date <= ? ORDER BY date`,
		window.Start.String(), window.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.TimeOffRecord
	for rows.Next() {
		var rec engine.TimeOffRecord
		var date, hours string
		if err := rows.Scan(&rec.ResourceID, &date, &hours); err != nil {
			return nil, err
		}
		if rec.Date, err = engine.ParseDate(date); err != nil {
			return nil, fmt.Errorf("time_off row: %w", err)
		}
		if rec.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("time_off row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) fetchHolidays(ctx context.Context, window engine.Window) ([]engine.HolidayWindow, error) {
	windowStart, windowEnd := holidayBounds(window)
	rows, err := s.db.QueryContext(ctx,
		`SELECT org_key, start_at, end_at, label FROM holiday_windows
		 WHERE start_at < ? AND end_at > ? ORDER BY start_at`,
		windowEnd, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []engine.HolidayWindow
	for rows.Next() {
		var w engine.HolidayWindow
		var start, end string
		if err := rows.Scan(&w.OrgKey, &start, &end, &w.Label); err != nil {
			return nil, err
		}
		if w.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("holiday_windows row: %w", err)
		}
		if w.End, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("holiday_windows row: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (s *Store) fetchSlots(ctx context.Context, window engine.Window) ([]engine.SchedulingSlot, error) {
	windowStart, windowEnd := windowBounds(window)
	rows, err := s.db.QueryContext(ctx,
		`SELECT resource_id, start_at, end_at, allocated_hours FROM scheduling_slots
		 WHERE start_at < ? AND end_at > ? ORDER BY start_at`,
		windowEnd, windowStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []engine.SchedulingSlot
	for rows.Next() {
		var slot engine.SchedulingSlot
		var start, end, hours string
		if err := rows.Scan(&slot.ResourceID, &start, &end, &hours); err != nil {
			return nil, err
		}
		if slot.Start, err = time.Parse(time.RFC3339, start); err != nil {
			return nil, fmt.Errorf("scheduling_slots row: %w", err)
		}
		if slot.End, err = time.Parse(time.RFC3339, end); err != nil {
			return nil, fmt.Errorf("scheduling_slots row: %w", err)
		}
		if slot.AllocatedHours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("scheduling_slots row: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *Store) fetchWorkLogs(ctx context.Context, window engine.Window) ([]reporting.WorkLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT resource_id, date, hours FROM work_logs
		 WHERE date >= ? AND date <= ? ORDER BY date`,
		window.Start.String(), window.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []reporting.WorkLog
	for rows.Next() {
		var l reporting.WorkLog
		var date, hours string
		if err := rows.Scan(&l.ResourceID, &date, &hours); err != nil {
			return nil, err
		}
		if l.Date, err = engine.ParseDate(date); err != nil {
			return nil, fmt.Errorf("work_logs row: %w", err)
		}
		if l.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("work_logs row: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// windowBounds returns the window as RFC 3339 interval endpoints:
// [start 00:00, end+1d 00:00).
func windowBounds(window engine.Window) (string, string) {
	return window.Start.Time().Format(time.RFC3339),
		window.End.AddDays(1).Time().Format(time.RFC3339)
}

// holidayBounds returns the window endpoints translated to the UTC instants
// stored holiday rows use. The engine observes holidays at engine.LocalOffset,
// so a window's local midnights sit LocalOffset EARLIER on the UTC axis; an
// unshifted query would miss windows that fall entirely in that gap (e.g. one
// ending 23:00 UTC on the eve of the window's first day, which is still local
// morning of that day).
func holidayBounds(window engine.Window) (string, string) {
	return window.Start.Time().Add(-engine.LocalOffset).Format(time.RFC3339),
		window.End.AddDays(1).Time().Add(-engine.LocalOffset).Format(time.RFC3339)
}

// =============================================================================
// SEEDING
// =============================================================================

// Seed loads a bundle of records atomically. Intended for fixtures, demos,
// and the sync job that owns record ingestion.
func (s *Store) Seed(ctx context.Context, records source.Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records.Resources {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO resources (id, name, calendar_label, org_key) VALUES (?, ?, ?, ?)`,
			r.ID, r.Name, r.CalendarLabel, r.OrgKey); err != nil {
			return fmt.Errorf("seed resource %d: %w", r.ID, err)
		}
	}
	for _, rec := range records.TimeOff {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO time_off (resource_id, date, hours) VALUES (?, ?, ?)`,
			rec.ResourceID, rec.Date.String(), rec.Hours.String()); err != nil {
			return fmt.Errorf("seed time off: %w", err)
		}
	}
	for _, w := range records.Holidays {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO holiday_windows (org_key, start_at, end_at, label) VALUES (?, ?, ?, ?)`,
			w.OrgKey, w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339), w.Label); err != nil {
			return fmt.Errorf("seed holiday window: %w", err)
		}
	}
	for _, slot := range records.Slots {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scheduling_slots (resource_id, start_at, end_at, allocated_hours) VALUES (?, ?, ?, ?)`,
			slot.ResourceID, slot.Start.UTC().Format(time.RFC3339), slot.End.UTC().Format(time.RFC3339),
			slot.AllocatedHours.String()); err != nil {
			return fmt.Errorf("seed scheduling slot: %w", err)
		}
	}
	for _, l := range records.WorkLogs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO work_logs (resource_id, date, hours) VALUES (?, ?, ?)`,
			l.ResourceID, l.Date.String(), l.Hours.String()); err != nil {
			return fmt.Errorf("seed work log: %w", err)
		}
	}

	return tx.Commit()
}
