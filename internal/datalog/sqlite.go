package datalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sweeney/grow-controller/internal/logic"
)

const sqliteDriverName = "sqlite"

const schemaReadings = `
CREATE TABLE IF NOT EXISTS readings (
    id TEXT PRIMARY KEY,
    recorded_at TIMESTAMP NOT NULL,
    temperature_c REAL NOT NULL,
    humidity_pct REAL NOT NULL
);
`

const schemaEvents = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    reason TEXT,
    until TEXT,
    message TEXT NOT NULL
);
`

// InitDB opens or creates the history database and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// One writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{schemaReadings, schemaEvents} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

// SQLite stores readings and every controller event.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an initialised database.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// Write inserts the event, and the reading for READING events.
func (s *SQLite) Write(ctx context.Context, ev logic.Event) error {
	ts := ev.Timestamp.Format(TimestampLayout)

	if ev.Type == logic.EventReading && ev.Reading != nil {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO readings (id, recorded_at, temperature_c, humidity_pct)
			VALUES (?, ?, ?, ?)
		`, uuid.NewString(), ts, ev.Reading.Temperature, ev.Reading.Humidity)
		if err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
	}

	var reason, until *string
	if ev.Reason != "" {
		r := string(ev.Reason)
		reason = &r
	}
	if ev.Until != nil {
		u := ev.Until.String()
		until = &u
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, occurred_at, type, reason, until, message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), ts, string(ev.Type), reason, until, strings.Join(ev.Lines(), "; "))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// StoredReading is a row of the readings table.
type StoredReading struct {
	ID         string
	RecordedAt string
	logic.Reading
}

// Recent returns up to limit readings, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]StoredReading, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_at, temperature_c, humidity_pct
		FROM readings
		ORDER BY recorded_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var out []StoredReading
	for rows.Next() {
		var r StoredReading
		if err := rows.Scan(&r.ID, &r.RecordedAt, &r.Temperature, &r.Humidity); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
