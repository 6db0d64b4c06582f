package snapshot

import (
	"context"
	"sync/atomic"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
)

// Source loads snapshot data from somewhere: a JSON file, PostgreSQL, an
// object store, Neo4j or the built-in sample set.
type Source interface {
	Load(ctx context.Context) (*Data, error)
}

// Store holds the active snapshot behind an atomic pointer.  Readers call
// Current and keep using the returned snapshot for the whole request;
// reloads build a complete replacement and swap it in, so no reader ever
// sees a partially rebuilt index.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding the given initial snapshot.
func NewStore(initial *Snapshot) *Store {
	s := &Store{}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Current returns the active snapshot, or nil when none has been loaded yet.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap installs next as the active snapshot and returns the previous one.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	return s.current.Swap(next)
}

// Reload loads fresh data from source, builds a new snapshot and swaps it in.
// On any failure the active snapshot is left untouched.
func (s *Store) Reload(ctx context.Context, source Source) error {
	data, err := source.Load(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSnapshotLoadFailed, "snapshot source load failed")
	}

	snap, err := Build(data)
	if err != nil {
		return err
	}

	s.Swap(snap)
	return nil
}
