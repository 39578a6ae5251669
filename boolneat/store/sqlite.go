package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/baldhumanity/boolneat-go/boolneat"
)

// timeFormat is RFC 3339 with fixed-width nanoseconds. time.RFC3339Nano drops
// trailing zeros, which breaks the lexicographic ORDER BY on created_at.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is a Store backed by a SQLite database file, using the pure Go
// driver so builds stay cgo-free. Genomes are stored as their JSON wire form,
// which keeps the archive readable with plain sqlite3 tooling.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens, creating if needed, a SQLite archive at the given
// path. The path ":memory:" yields a throwaway in-process database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store '%s': %w", path, err)
	}
	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS genomes (
	id         TEXT PRIMARY KEY,
	label      TEXT NOT NULL DEFAULT '',
	generation INTEGER NOT NULL DEFAULT 0,
	fitness    REAL NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	genome     BLOB NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("failed to create genomes table: %w", err)
	}
	return nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, rec *Record) error {
	if rec == nil || rec.Genome == nil {
		return fmt.Errorf("%w: record needs a genome", boolneat.ErrInvalidArgument)
	}
	stamp(rec)

	blob, err := json.Marshal(rec.Genome)
	if err != nil {
		return fmt.Errorf("failed to encode genome %s: %w", rec.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO genomes (id, label, generation, fitness, created_at, genome)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	label      = excluded.label,
	generation = excluded.generation,
	fitness    = excluded.fitness,
	created_at = excluded.created_at,
	genome     = excluded.genome`,
		rec.ID, rec.Label, rec.Generation, rec.Fitness,
		rec.CreatedAt.UTC().Format(timeFormat), blob)
	if err != nil {
		return fmt.Errorf("failed to store genome %s: %w", rec.ID, err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, label, generation, fitness, created_at, genome FROM genomes WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, generation, fitness, created_at, genome FROM genomes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genomes: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list genomes: %w", err)
	}
	return out, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM genomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete genome %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete genome %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var createdAt string
	var blob []byte
	if err := row.Scan(&rec.ID, &rec.Label, &rec.Generation, &rec.Fitness, &createdAt, &blob); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for %s: %w", rec.ID, err)
	}
	rec.CreatedAt = ts

	g := new(boolneat.Genome)
	if err := json.Unmarshal(blob, g); err != nil {
		return nil, fmt.Errorf("failed to decode genome %s: %w", rec.ID, err)
	}
	rec.Genome = g
	return &rec, nil
}
