// Package store archives circuit genomes with run metadata. Two backends
// implement the same interface: an in-process map for tests and short-lived
// tooling, and a SQLite file for durable archives.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baldhumanity/boolneat-go/boolneat"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("record not found")

// Record is an archived genome plus the metadata of the run that produced it.
type Record struct {
	ID         string
	Label      string
	Generation int
	Fitness    float64
	CreatedAt  time.Time
	Genome     *boolneat.Genome
}

// Store archives genome records.
type Store interface {
	// Put inserts or replaces a record. An empty ID is assigned a fresh UUID
	// and a zero CreatedAt is set to the current time; both are written back
	// onto the passed record.
	Put(ctx context.Context, rec *Record) error

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns every record ordered by creation time.
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a record. Deleting an unknown id is ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases the backend.
	Close() error
}

// stamp fills the generated fields of a record before writing.
func stamp(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

// copyRecord detaches a record from the caller, cloning the genome.
func copyRecord(rec *Record) *Record {
	out := *rec
	if rec.Genome != nil {
		out.Genome = rec.Genome.Clone()
	}
	return &out
}

// ---------------------------------------------------------------------------

// MemoryStore is a Store backed by an in-process map. It is safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil || rec.Genome == nil {
		return fmt.Errorf("%w: record needs a genome", boolneat.ErrInvalidArgument)
	}
	stamp(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = copyRecord(rec)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return copyRecord(rec), nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.records, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
