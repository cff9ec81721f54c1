// Package redisstore implements a Redis storage backend.
//
// Objects are kept as string values, compressed with the store's codec.
// Redis suits small hot objects such as opening indexes and frequently
// read evaluation shards shared between processes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/store"
)

// Compile-time checks that Store implements store.Store and store.Writer.
var (
	_ store.Store  = (*Store)(nil)
	_ store.Writer = (*Store)(nil)
)

// Store reads and writes objects in Redis.
type Store struct {
	rdb    *redis.Client
	owned  bool
	prefix string
	ttl    time.Duration
	codec  codec.Codec
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix namespaces every key, e.g. "chessinsight:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires written objects after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New wraps an existing client. Close leaves the client open.
func New(rdb *redis.Client, c codec.Codec, opts ...Option) *Store {
	s := &Store{rdb: rdb, codec: c}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the Redis server at url (redis://host:port/db) and
// checks connectivity. Close closes the connection.
func Open(ctx context.Context, url string, c codec.Codec, opts ...Option) (*Store, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	s := New(rdb, c, opts...)
	s.owned = true
	return s, nil
}

// Read fetches and decompresses the object stored under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	redisKey, err := s.redisKey(key)
	if err != nil {
		return nil, err
	}

	raw, err := s.rdb.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", redisKey, err)
	}

	return codec.Decode(s.codec, raw)
}

// Write compresses data and stores it under key.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	redisKey, err := s.redisKey(key)
	if err != nil {
		return err
	}

	raw, err := codec.Encode(s.codec, data)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("setting %s: %w", redisKey, err)
	}
	return nil
}

// Close closes the client when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.rdb.Close()
}

func (s *Store) redisKey(key string) (string, error) {
	cleaned, err := store.CleanKey(key)
	if err != nil {
		return "", err
	}
	return s.prefix + store.ObjectName(cleaned, s.codec.Extension()), nil
}
