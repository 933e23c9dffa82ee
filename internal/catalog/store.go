// File path: internal/catalog/store.go

// Package catalog persists finished scan runs to a SQLite database so
// the API can list and replay past reports.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/veyra/billscope/internal/common"
	"github.com/veyra/billscope/internal/report"
)

// Run is the stored summary of one scan.
type Run struct {
	ID         string    `db:"id" json:"id"`
	Source     string    `db:"source" json:"source,omitempty"`
	RowCount   int       `db:"row_count" json:"rows"`
	Flagged    int       `db:"flagged" json:"flagged"`
	Lenient    bool      `db:"lenient" json:"lenient"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CategoryCount is one category total of a stored run.
type CategoryCount struct {
	RunID    string `db:"run_id" json:"-"`
	Category string `db:"category" json:"category"`
	Flagged  int    `db:"flagged" json:"flagged"`
}

// Store wraps a pooled sqlx.DB connection to the scan catalog.
type Store struct {
	db *sqlx.DB
}

// ErrRunNotFound is returned when a run id has no stored report.
var ErrRunNotFound = errors.New("run not found")

// Open constructs a Store backed by the SQLite database at the given
// path, overriding any configured path. The schema is migrated on open.
func Open(path string) (*Store, error) {
	cfg := LoadConfig()
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		cfg.Path = trimmed
	}
	return OpenWithConfig(cfg)
}

// OpenWithConfig constructs a Store using the provided configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("catalog path required")
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	busy := int(cfg.BusyTimeout / time.Millisecond)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", abs, busy)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.BusyTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	common.Logger().Info("catalog: opened", "path", abs)
	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("catalog store not initialised")
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute schema statement %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
                id TEXT PRIMARY KEY,
                source TEXT,
                row_count INTEGER NOT NULL DEFAULT 0,
                flagged INTEGER NOT NULL DEFAULT 0,
                lenient INTEGER NOT NULL DEFAULT 0,
                duration_ms INTEGER NOT NULL DEFAULT 0,
                report TEXT NOT NULL,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS run_categories (
                run_id TEXT NOT NULL,
                category TEXT NOT NULL,
                flagged INTEGER NOT NULL DEFAULT 0,
                PRIMARY KEY (run_id, category),
                FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
        );`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
}

// RecordRun stores a finished report and returns the generated run id.
func (s *Store) RecordRun(ctx context.Context, doc *report.Document, lenient bool, duration time.Duration) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("catalog store not initialised")
	}
	if doc == nil {
		return "", errors.New("nil report document")
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	id := uuid.NewString()
	flagged := doc.Anomalies.Total()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("begin run insert: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, source, row_count, flagged, lenient, duration_ms, report, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Source, doc.Rows, flagged, lenient, duration.Milliseconds(), string(payload), time.Now().UTC())
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("insert run: %w", err)
	}
	for category, count := range doc.Counts() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_categories (run_id, category, flagged) VALUES (?, ?, ?)`,
			id, category, count); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("insert category count: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run insert: %w", err)
	}
	common.Logger().Info("catalog: run recorded", "run", id, "flagged", flagged)
	return id, nil
}

// ListRuns returns recent run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	err := s.db.SelectContext(ctx, &runs,
		`SELECT id, source, row_count, flagged, lenient, duration_ms, created_at
                 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// CategoryCounts returns the per-category totals of a stored run.
func (s *Store) CategoryCounts(ctx context.Context, runID string) ([]CategoryCount, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("catalog store not initialised")
	}
	var counts []CategoryCount
	err := s.db.SelectContext(ctx, &counts,
		`SELECT run_id, category, flagged FROM run_categories WHERE run_id = ? ORDER BY category`, runID)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	return counts, nil
}

// GetRun loads a stored run and its full report document.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, *report.Document, error) {
	if s == nil || s.db == nil {
		return nil, nil, errors.New("catalog store not initialised")
	}
	row := struct {
		Run
		Report string `db:"report"`
	}{}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, source, row_count, flagged, lenient, duration_ms, report, created_at
                 FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrRunNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get run: %w", err)
	}
	var doc report.Document
	if err := json.Unmarshal([]byte(row.Report), &doc); err != nil {
		return nil, nil, fmt.Errorf("decode stored report: %w", err)
	}
	run := row.Run
	return &run, &doc, nil
}
