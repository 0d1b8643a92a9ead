// Package sqlite provides a SQLite-backed race storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/racesim/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/racesim/internal/services/race/storage"
	"github.com/louisbranch/racesim/internal/services/race/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists races in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite race store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRace inserts a race and its results in one transaction.
func (s *Store) SaveRace(ctx context.Context, race storage.Race) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	race.ID = strings.TrimSpace(race.ID)
	if race.ID == "" {
		return fmt.Errorf("race id is required")
	}
	if race.CardFormat == "" {
		return fmt.Errorf("card format is required")
	}
	if race.CreatedAt.IsZero() {
		race.CreatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save race: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO races (
		   id, name, card_name, card_format, card_source,
		   seed, variance, step, distance, course,
		   ticks, elapsed, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		race.ID,
		race.Name,
		race.CardName,
		race.CardFormat,
		race.CardSource,
		race.Seed,
		boolToInt(race.Variance),
		race.Step,
		race.Distance,
		race.Course,
		race.Ticks,
		race.Elapsed,
		toMillis(race.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("save race: %w", err)
	}

	for _, r := range race.Results {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO race_results (
			   race_id, place, participant_id, name, gate,
			   finished, finish_time, dnf, dnf_reason,
			   distance, top_speed, closing
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			race.ID,
			r.Rank,
			r.ParticipantID,
			r.Name,
			r.Gate,
			boolToInt(r.Finished),
			r.FinishTime,
			boolToInt(r.DNF),
			r.DNFReason,
			r.Distance,
			r.TopSpeed,
			r.Closing,
		)
		if err != nil {
			return fmt.Errorf("save result %d: %w", r.Rank, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save race: %w", err)
	}
	return nil
}

const raceColumns = `id, name, card_name, card_format, card_source,
		        seed, variance, step, distance, course,
		        ticks, elapsed, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRace(row scanner) (storage.Race, error) {
	var (
		race      storage.Race
		variance  int
		createdAt int64
	)
	err := row.Scan(
		&race.ID,
		&race.Name,
		&race.CardName,
		&race.CardFormat,
		&race.CardSource,
		&race.Seed,
		&variance,
		&race.Step,
		&race.Distance,
		&race.Course,
		&race.Ticks,
		&race.Elapsed,
		&createdAt,
	)
	race.Variance = variance != 0
	race.CreatedAt = fromMillis(createdAt)
	return race, err
}

// GetRace returns one race with its results.
func (s *Store) GetRace(ctx context.Context, id string) (storage.Race, error) {
	if err := ctx.Err(); err != nil {
		return storage.Race{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Race{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Race{}, fmt.Errorf("race id is required")
	}

	race, err := scanRace(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+raceColumns+`
		   FROM races
		  WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Race{}, storage.ErrNotFound
		}
		return storage.Race{}, fmt.Errorf("get race: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT place, participant_id, name, gate, finished, finish_time,
		        dnf, dnf_reason, distance, top_speed, closing
		   FROM race_results
		  WHERE race_id = ?
		  ORDER BY place ASC`,
		id,
	)
	if err != nil {
		return storage.Race{}, fmt.Errorf("get race results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r             storage.Result
			finished, dnf int
		)
		if err := rows.Scan(
			&r.Rank,
			&r.ParticipantID,
			&r.Name,
			&r.Gate,
			&finished,
			&r.FinishTime,
			&dnf,
			&r.DNFReason,
			&r.Distance,
			&r.TopSpeed,
			&r.Closing,
		); err != nil {
			return storage.Race{}, fmt.Errorf("get race results: %w", err)
		}
		r.Finished = finished != 0
		r.DNF = dnf != 0
		race.Results = append(race.Results, r)
	}
	if err := rows.Err(); err != nil {
		return storage.Race{}, fmt.Errorf("get race results: %w", err)
	}
	return race, nil
}

// ListRaces returns up to limit races, newest first.
func (s *Store) ListRaces(ctx context.Context, limit int) ([]storage.Race, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+raceColumns+`
		   FROM races
		  ORDER BY created_at DESC, id ASC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}
	defer rows.Close()

	races := make([]storage.Race, 0, limit)
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf("list races: %w", err)
		}
		races = append(races, race)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list races: %w", err)
	}
	return races, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.RaceStore = (*Store)(nil)
