// Package evaldb looks up pre-computed engine evaluations in a sharded
// database built from the lichess evaluation export.
//
// Example usage:
//
//	opt, err := evaldb.WithDataDir("/path/to/data")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := evaldb.New(opt, evaldb.WithCache(256))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	eval, err := client.Lookup(ctx, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Evaluation: %s\n", eval.Score())
package evaldb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/discochess/chessinsight/internal/search"
	"github.com/discochess/chessinsight/internal/shard"
	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/internal/store"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates the position is not in the database.
	ErrNotFound = errors.New("evaldb: position not found")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("evaldb: client closed")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("evaldb: no store provided")

	// ErrInvalidShards indicates a non-positive shard count.
	ErrInvalidShards = errors.New("evaldb: invalid shard count")
)

// Client reads evaluations from a sharded database.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	store         store.Store
	shardStrategy shard.Strategy
	totalShards   int
	stats         stats.Collector
	logger        *zap.Logger
	closed        atomic.Bool
}

// New creates a Client with the given options. A store is required,
// either through WithStore or WithDataDir.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.store == nil {
		return nil, ErrNoStore
	}
	if cfg.totalShards < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShards, cfg.totalShards)
	}

	st := cfg.store
	if cfg.cache != nil {
		st = cfg.cache(st, cfg.stats)
	}

	c := &Client{
		store:         st,
		shardStrategy: cfg.shardStrategy,
		totalShards:   cfg.totalShards,
		stats:         cfg.stats,
		logger:        cfg.logger,
	}

	c.logger.Debug("evaluation database opened",
		zap.Int("totalShards", c.totalShards),
		zap.String("shardStrategy", c.shardStrategy.Name()),
	)

	return c, nil
}

// Lookup returns the evaluation of a FEN position. Move counters are
// ignored. It returns ErrNotFound when the position is not in the database,
// including when its shard does not exist.
func (c *Client) Lookup(ctx context.Context, fen string) (*Eval, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	c.stats.IncCounter(stats.MetricLookups, 1)

	shardID := c.shardStrategy.ShardID(fen, c.totalShards)
	data, err := c.fetchShard(ctx, shardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.stats.IncCounter(stats.MetricMisses, 1)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching shard %d: %w", shardID, err)
	}

	record, err := search.Search(data, fen)
	if err != nil {
		if errors.Is(err, search.ErrNotFound) {
			c.stats.IncCounter(stats.MetricMisses, 1)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("searching shard %d: %w", shardID, err)
	}

	c.stats.IncCounter(stats.MetricHits, 1)
	return newEval(record), nil
}

// Close releases the client and its store.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// ShardStrategy returns the sharding strategy used by this client.
func (c *Client) ShardStrategy() shard.Strategy {
	return c.shardStrategy
}

// TotalShards returns the number of shards positions are spread over.
func (c *Client) TotalShards() int {
	return c.totalShards
}

// Store returns the storage backend used by this client, including the
// cache layer when one is configured.
func (c *Client) Store() store.Store {
	return c.store
}

func (c *Client) fetchShard(ctx context.Context, shardID int) ([]byte, error) {
	c.stats.IncCounter(stats.MetricShardFetches, 1)
	return c.store.Read(ctx, shard.Key(shardID))
}
