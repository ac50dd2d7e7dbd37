// Package store persists assembled summary rows in SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/gyaneshwarpardhi/scrimstats/internal/summary"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no summary has the requested id.
var ErrNotFound = errors.New("summary not found")

// Summary is a stored row with its provenance.
type Summary struct {
	ID        uuid.UUID    `json:"id"`
	MatchDir  string       `json:"match_dir"`
	Variant   string       `json:"variant"`
	CreatedAt time.Time    `json:"created_at"`
	Row       *summary.Row `json:"row"`
}

// Store is a SQLite-backed summary store.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("summary store ready", "path", path)
	return &Store{db: db, logger: logger}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.Up(db, "migrations")
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save stores row under a new id.
func (s *Store) Save(ctx context.Context, matchDir, variant string, row *summary.Row) (*Summary, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	sum := &Summary{
		ID:        uuid.New(),
		MatchDir:  matchDir,
		Variant:   variant,
		CreatedAt: time.Now().UTC(),
		Row:       row,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, match_dir, variant, match_date, team, row_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sum.ID.String(), matchDir, variant, row.Date, row.Team, string(raw), sum.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}
	return sum, nil
}

// Get returns the summary with id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Summary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, match_dir, variant, row_json, created_at FROM summaries WHERE id = ?`, id.String())
	sum, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sum, err
}

// List returns up to limit summaries, newest first. A non-empty variant
// restricts the list to rows of that variant.
func (s *Store) List(ctx context.Context, variant string, limit int) ([]*Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, match_dir, variant, row_json, created_at FROM summaries
		 WHERE (? = '' OR variant = ?)
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, variant, variant, limit)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []*Summary
	for rows.Next() {
		sum, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (*Summary, error) {
	var (
		id, created, raw string
		sum              Summary
	)
	if err := sc.Scan(&id, &sum.MatchDir, &sum.Variant, &raw, &created); err != nil {
		return nil, err
	}
	var err error
	if sum.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("summary id %q: %w", id, err)
	}
	if sum.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
		return nil, fmt.Errorf("summary %s created_at: %w", id, err)
	}
	sum.Row = new(summary.Row)
	if err := json.Unmarshal([]byte(raw), sum.Row); err != nil {
		return nil, fmt.Errorf("summary %s row: %w", id, err)
	}
	return &sum, nil
}
