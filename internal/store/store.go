// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tomato/internal/kv"
	"github.com/verte-zerg/tomato/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout sorts lexicographically in the same order as the instants it encodes.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for the local key-value table and session journal.
type Store struct {
	db *sql.DB
}

var _ kv.Store = (*Store)(nil)

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			planned_minutes INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get implements kv.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := kv.ValidateKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set implements kv.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Delete implements kv.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := kv.ValidateKey(key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// InsertSession journals a finished work session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (kind, outcome, ended_at, planned_minutes) VALUES (?, ?, ?, ?)`,
		string(rec.Kind),
		string(rec.Outcome),
		rec.EndedAt.UTC().Format(timeLayout),
		rec.PlannedMinutes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns journal entries ended at or after since, oldest first.
// A zero since returns everything.
func (s *Store) ListSessions(ctx context.Context, since time.Time) ([]model.SessionRecord, error) {
	query := `SELECT id, kind, outcome, ended_at, planned_minutes FROM sessions`
	var args []any
	if !since.IsZero() {
		query += ` WHERE ended_at >= ?`
		args = append(args, since.UTC().Format(timeLayout))
	}
	query += ` ORDER BY ended_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var kind, outcome, endedAt string
		if err := rows.Scan(&rec.ID, &kind, &outcome, &endedAt, &rec.PlannedMinutes); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", rec.ID, err)
		}
		rec.Kind = model.SessionKind(kind)
		rec.Outcome = model.Outcome(outcome)
		rec.EndedAt = parsed
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// DailyTotals buckets journal entries into the local calendar days from
// since's day through until's day, including empty days, oldest first.
func (s *Store) DailyTotals(ctx context.Context, since, until time.Time) ([]model.DailyTotal, error) {
	records, err := s.ListSessions(ctx, startOfDay(since))
	if err != nil {
		return nil, err
	}
	return BucketByDay(records, since, until), nil
}

// BucketByDay groups records into calendar days of since's location.
func BucketByDay(records []model.SessionRecord, since, until time.Time) []model.DailyTotal {
	loc := since.Location()
	start := startOfDay(since)
	end := startOfDay(until.In(loc))
	if end.Before(start) {
		return nil
	}
	var days []model.DailyTotal
	index := map[string]int{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[model.DayKey(d)] = len(days)
		days = append(days, model.DailyTotal{Day: d})
	}
	for _, rec := range records {
		i, ok := index[model.DayKey(rec.EndedAt.In(loc))]
		if !ok {
			continue
		}
		switch rec.Outcome {
		case model.OutcomeCompleted:
			days[i].Completed++
			days[i].Minutes += rec.PlannedMinutes
		case model.OutcomeInterrupted:
			days[i].Interrupted++
		}
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
