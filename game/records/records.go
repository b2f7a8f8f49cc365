// Package records keeps the history of finished rounds in a local SQLite database.
package records

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/millennium-run/game/stage"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Run is one finished round.
type Run struct {
	ID       int64
	Actor    stage.Actor
	Percent  int
	Stars    int
	Hearts   int
	Duration time.Duration
	Cleared  bool // at least one star
	PlayedAt time.Time
}

// Store is the play history. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens or creates the database at path and applies pending migrations.
//
// Parameters:
//   - ctx: bounds the migration
//   - path: the database file; parent directories are created
//   - opts: functional options
//
// Returns:
//   - *Store: the open store
//   - error: an error if the file cannot be opened or migrated
func Open(ctx context.Context, path string, opts ...StoreBuilderOption) (*Store, error) {
	s := &Store{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("records: create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("records: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("records: connect: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	s.db = db
	s.log.Info("play records ready", zap.String("path", path))
	return s, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("records: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("records: run migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a finished round. A zero PlayedAt is stamped with the current time.
//
// Parameters:
//   - ctx: bounds the insert
//   - r: the round; ID is ignored
//
// Returns:
//   - int64: the new row id
//   - error: an error if the insert fails
func (s *Store) Record(ctx context.Context, r Run) (int64, error) {
	if r.PlayedAt.IsZero() {
		r.PlayedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (actor, percent, stars, hearts, duration_ms, cleared, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Actor.String(), r.Percent, r.Stars, r.Hearts, r.Duration.Milliseconds(), r.Cleared,
		r.PlayedAt.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("records: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("records: insert id: %w", err)
	}
	s.log.Debug("run recorded", zap.Int64("id", id), zap.Stringer("actor", r.Actor),
		zap.Int("percent", r.Percent), zap.Int("stars", r.Stars))
	return id, nil
}

const selectRuns = `SELECT id, actor, percent, stars, hearts, duration_ms, cleared, played_at FROM runs`

// Best returns the highest-percent round of actor; ties go to the earliest.
//
// Returns:
//   - Run: the best round
//   - bool: false if actor has no rounds
//   - error: an error if the query fails
func (s *Store) Best(ctx context.Context, actor stage.Actor) (Run, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		selectRuns+` WHERE actor = ? ORDER BY percent DESC, id ASC LIMIT 1`, actor.String())
	if err != nil {
		return Run{}, false, fmt.Errorf("records: best: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil || len(runs) == 0 {
		return Run{}, false, err
	}
	return runs[0], true, nil
}

// Recent returns up to limit rounds, newest first. A non-positive limit means 10.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("records: recent: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			r        Run
			actor    string
			duration int64
			played   int64
		)
		if err := rows.Scan(&r.ID, &actor, &r.Percent, &r.Stars, &r.Hearts, &duration, &r.Cleared, &played); err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		a, ok := stage.ParseActor(actor)
		if !ok {
			return nil, fmt.Errorf("records: row %d: unknown actor %q", r.ID, actor)
		}
		r.Actor = a
		r.Duration = time.Duration(duration) * time.Millisecond
		r.PlayedAt = time.UnixMilli(played)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: rows: %w", err)
	}
	return out, nil
}
