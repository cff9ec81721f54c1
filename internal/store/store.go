// Package store defines the storage backend interface for reading keyed
// objects such as evaluation shards and opening indexes.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when an object does not exist in the store.
	ErrNotFound = errors.New("store: object not found")

	// ErrInvalidKey is returned for empty keys and keys escaping the store root.
	ErrInvalidKey = errors.New("store: invalid key")
)

// Store defines the interface for storage backends.
// Keys are slash-separated paths without a compression extension; backends
// that compress append their codec's extension and decompress on read.
type Store interface {
	// Read returns the decoded content stored under key.
	Read(ctx context.Context, key string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// Writer is implemented by stores that accept new objects.
type Writer interface {
	// Write stores data under key, replacing any existing object.
	Write(ctx context.Context, key string, data []byte) error
}

// ObjectName appends the codec extension ext to key.
func ObjectName(key, ext string) string {
	if ext == "" {
		return key
	}
	return key + "." + ext
}

// CleanKey validates key and returns it in canonical slash-separated form.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
