// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/gullyscore/internal/engine"
	"github.com/verte-zerg/gullyscore/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SnapshotKey identifies the current match snapshot. Bump the version when
// the snapshot shape changes incompatibly.
const SnapshotKey = "gully-score-state-v1"

// timestampLayout keeps stored times fixed-width so they sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrCorruptSnapshot is returned alongside the default match when the stored
// snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt match snapshot")

// Store wraps SQLite access for the current match and the match archive.
type Store struct {
	db *sql.DB
}

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
		`CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			team_a TEXT NOT NULL,
			team_b TEXT NOT NULL,
			overs_limit INTEGER NOT NULL,
			first_runs INTEGER NOT NULL,
			first_wickets INTEGER NOT NULL,
			first_balls INTEGER NOT NULL,
			second_runs INTEGER NOT NULL,
			second_wickets INTEGER NOT NULL,
			second_balls INTEGER NOT NULL,
			innings INTEGER NOT NULL,
			result TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_ended_at ON matches(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// LoadMatch returns the current match snapshot. A missing snapshot yields the
// not-started match; an undecodable one yields the not-started match and an
// error wrapping ErrCorruptSnapshot.
func (s *Store) LoadMatch(ctx context.Context) (model.Match, error) {
	return loadMatch(ctx, s.db)
}

// SaveMatch replaces the current match snapshot.
func (s *Store) SaveMatch(ctx context.Context, m model.Match) error {
	return saveMatch(ctx, s.db, m, time.Now())
}

// ResetMatch discards the current match.
func (s *Store) ResetMatch(ctx context.Context) error {
	return s.SaveMatch(ctx, engine.DefaultMatch())
}

// Transition loads the current match, applies fn, and stores the result in a
// single transaction. When fn ends the match, its summary is archived.
//
// A corrupt snapshot is handed to fn as the not-started match and reported
// by an error wrapping ErrCorruptSnapshot next to the valid before and after
// snapshots. The corrupt row is only replaced when fn changes the match.
func (s *Store) Transition(ctx context.Context, fn func(model.Match) model.Match) (before, after model.Match, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Match{}, model.Match{}, err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
	}()

	before, loadErr := loadMatch(ctx, tx)
	if loadErr != nil && !errors.Is(loadErr, ErrCorruptSnapshot) {
		return model.Match{}, model.Match{}, loadErr
	}
	after = fn(before)
	if loadErr != nil && after.Equal(before) {
		return before, after, loadErr
	}

	now := time.Now()
	if err := saveMatch(ctx, tx, after, now); err != nil {
		return model.Match{}, model.Match{}, err
	}
	if after.Ended && !before.Ended {
		if rec, ok := engine.Record(after); ok {
			rec.EndedAt = now
			if err := archiveMatch(ctx, tx, rec); err != nil {
				return model.Match{}, model.Match{}, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Match{}, model.Match{}, err
	}
	committed = true
	return before, after, loadErr
}

// ArchiveMatch stores the summary of a finished match. Archiving the same
// match again replaces the earlier summary.
func (s *Store) ArchiveMatch(ctx context.Context, rec model.MatchRecord) error {
	return archiveMatch(ctx, s.db, rec)
}

// ListMatches returns archived matches, most recent first. A limit of zero
// or less returns every match.
func (s *Store) ListMatches(ctx context.Context, limit int) ([]model.MatchRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, team_a, team_b, overs_limit, first_runs, first_wickets, first_balls,
			second_runs, second_wickets, second_balls, innings, result, ended_at
		FROM matches
		ORDER BY ended_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.MatchRecord
	for rows.Next() {
		var rec model.MatchRecord
		var endedAt string
		if err := rows.Scan(&rec.ID, &rec.TeamA, &rec.TeamB, &rec.OversLimit,
			&rec.FirstRuns, &rec.FirstWkts, &rec.FirstBalls,
			&rec.SecondRuns, &rec.SecondWkts, &rec.SecondBalls,
			&rec.Innings, &rec.Result, &endedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		rec.EndedAt = parsed
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func loadMatch(ctx context.Context, q querier) (model.Match, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE key = ?`, SnapshotKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.DefaultMatch(), nil
	}
	if err != nil {
		return model.Match{}, err
	}
	var m model.Match
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return engine.DefaultMatch(), fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := checkSnapshot(m); err != nil {
		return engine.DefaultMatch(), fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return m, nil
}

func saveMatch(ctx context.Context, q querier, m model.Match, now time.Time) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		SnapshotKey, string(data), now.UTC().Format(timestampLayout))
	return err
}

func archiveMatch(ctx context.Context, q querier, rec model.MatchRecord) error {
	endedAt := rec.EndedAt
	if endedAt.IsZero() {
		endedAt = time.Now()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := q.ExecContext(ctx,
		`INSERT OR REPLACE INTO matches (id, team_a, team_b, overs_limit, first_runs, first_wickets, first_balls,
			second_runs, second_wickets, second_balls, innings, result, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TeamA, rec.TeamB, rec.OversLimit,
		rec.FirstRuns, rec.FirstWkts, rec.FirstBalls,
		rec.SecondRuns, rec.SecondWkts, rec.SecondBalls,
		rec.Innings, rec.Result, endedAt.UTC().Format(timestampLayout),
	)
	return err
}

// checkSnapshot rejects decoded snapshots the engine could not work with.
func checkSnapshot(m model.Match) error {
	if len(m.Innings) > 2 {
		return fmt.Errorf("%d innings", len(m.Innings))
	}
	if m.CurrentInnings < 0 || m.CurrentInnings > 1 {
		return fmt.Errorf("current innings %d", m.CurrentInnings)
	}
	if m.Started && m.OversLimit < 1 {
		return fmt.Errorf("overs limit %d", m.OversLimit)
	}
	if m.Started && !m.Ended {
		if _, ok := m.Current(); !ok {
			return fmt.Errorf("no innings %d", m.CurrentInnings)
		}
	}
	for i, inn := range m.Innings {
		if inn.Cursor < 0 || inn.Cursor > len(inn.Timeline) {
			return fmt.Errorf("innings %d cursor %d out of range", i, inn.Cursor)
		}
		for j, entry := range inn.Applied() {
			if entry.OverIndex < 0 || entry.OverIndex >= len(inn.Overs) {
				return fmt.Errorf("innings %d delivery %d over %d out of range", i, j, entry.OverIndex)
			}
		}
	}
	return nil
}
