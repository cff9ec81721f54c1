package cachedstore

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/discochess/chessinsight/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with a cache. Concurrent misses for the same key
// share a single read of the underlying store.
type Store struct {
	underlying store.Store
	backend    Backend
	group      singleflight.Group
}

// New creates a cached store wrapping underlying.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Read returns the object under key, consulting the cache first.
// Errors, including store.ErrNotFound, are not cached.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if data, ok := s.backend.Get(key); ok {
		return data, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		data, err := s.underlying.Read(ctx, key)
		if err != nil {
			return nil, err
		}
		s.backend.Set(key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
