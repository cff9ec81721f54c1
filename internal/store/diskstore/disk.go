// Package diskstore implements a filesystem storage backend.
package diskstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store reads objects from files below a root directory.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec handles decompression.
func New(root string, c codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: c,
	}, nil
}

// Read reads and decompresses the object stored under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	return codec.Decode(s.codec, compressed)
}

// Path returns the file holding the object stored under key.
func (s *Store) Path(key string) (string, error) {
	cleaned, err := store.CleanKey(key)
	if err != nil {
		return "", err
	}
	name := store.ObjectName(cleaned, s.codec.Extension())
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}
