package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one stored row: the JSON body of a record of some kind.
type Record struct {
	Kind      string
	ID        string
	Position  int64
	Body      []byte
	UpdatedAt time.Time
}

// SQLiteRepository stores records of every kind in a single table keyed by
// (kind, id). Position preserves insertion order across restarts.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY between
	// concurrent saves.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Path() string {
	return r.path
}

// SaveRecord inserts a new row at the end of its kind or replaces the body
// of an existing row in place. A numeric id also raises the kind's sequence
// so the id is never handed out again.
func (r *SQLiteRepository) SaveRecord(ctx context.Context, kind, id string, body []byte) (err error) {
	const upsert = `
INSERT INTO records (kind, id, position, body, updated_at)
VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM records WHERE kind = ?), ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	const bump = `
INSERT INTO sequences (kind, last_id) VALUES (?, ?)
ON CONFLICT (kind) DO UPDATE SET last_id = MAX(last_id, excluded.last_id)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s %s: begin: %w", kind, id, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, upsert, kind, id, kind, string(body), time.Now().UTC()); err != nil {
		return fmt.Errorf("save %s %s: %w", kind, id, err)
	}
	if n, convErr := strconv.ParseInt(id, 10, 64); convErr == nil {
		if _, err = tx.ExecContext(ctx, bump, kind, n); err != nil {
			return fmt.Errorf("save %s %s: sequence: %w", kind, id, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("save %s %s: commit: %w", kind, id, err)
	}
	slog.DebugContext(ctx, "Record saved to SQLite", "kind", kind, "id", id)
	return nil
}

// LastID returns the highest numeric id ever saved for kind, including ids
// whose rows were deleted since.
func (r *SQLiteRepository) LastID(ctx context.Context, kind string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT last_id FROM sequences WHERE kind = ?`, kind).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("last id %s: %w", kind, err)
	}
	return n, nil
}

// Seeded reports whether fixtures were already applied to kind.
func (r *SQLiteRepository) Seeded(ctx context.Context, kind string) (bool, error) {
	var seeded bool
	err := r.db.QueryRowContext(ctx, `SELECT seeded FROM sequences WHERE kind = ?`, kind).Scan(&seeded)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seeded %s: %w", kind, err)
	}
	return seeded, nil
}

func (r *SQLiteRepository) MarkSeeded(ctx context.Context, kind string) error {
	const q = `
INSERT INTO sequences (kind, seeded) VALUES (?, 1)
ON CONFLICT (kind) DO UPDATE SET seeded = 1`
	if _, err := r.db.ExecContext(ctx, q, kind); err != nil {
		return fmt.Errorf("mark %s seeded: %w", kind, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecord(ctx context.Context, kind, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	slog.DebugContext(ctx, "Record deleted from SQLite", "kind", kind, "id", id)
	return nil
}

// LoadRecords returns every row of kind in insertion order.
func (r *SQLiteRepository) LoadRecords(ctx context.Context, kind string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, id, position, body, updated_at FROM records WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", kind, err)
	}
	return out, nil
}

func (r *SQLiteRepository) CountRecords(ctx context.Context, kind string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE kind = ?`, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var body string
	if err := s.Scan(&rec.Kind, &rec.ID, &rec.Position, &body, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.Body = []byte(body)
	return rec, nil
}
