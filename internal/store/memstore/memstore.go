// Package memstore provides an in-memory store, mainly for tests and for
// serving embedded data.
package memstore

import (
	"context"
	"sync"

	"github.com/discochess/chessinsight/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Writer.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Writer = (*Store)(nil)
)

// Store keeps uncompressed objects in memory.
// A Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
	}
}

// Put stores a copy of data under key.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
}

// Write stores a copy of data under key.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Put(key, data)
	return nil
}

// Read returns the object stored under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
