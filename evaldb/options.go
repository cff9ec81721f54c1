package evaldb

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/discochess/chessinsight/internal/builder"
	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/codec/gzipcodec"
	"github.com/discochess/chessinsight/internal/codec/noopcodec"
	"github.com/discochess/chessinsight/internal/codec/zstdcodec"
	"github.com/discochess/chessinsight/internal/shard"
	"github.com/discochess/chessinsight/internal/shard/fnvshard"
	"github.com/discochess/chessinsight/internal/shard/materialshard"
	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/internal/store"
	"github.com/discochess/chessinsight/internal/store/cachedstore"
	"github.com/discochess/chessinsight/internal/store/cachedstore/cachestrategy/lru"
	"github.com/discochess/chessinsight/internal/store/cachedstore/memory"
	"github.com/discochess/chessinsight/internal/store/diskstore"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store         store.Store
	shardStrategy shard.Strategy
	totalShards   int
	cache         func(store.Store, stats.Collector) store.Store
	stats         stats.Collector
	logger        *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		shardStrategy: materialshard.New(),
		totalShards:   shard.DefaultTotalShards,
		stats:         stats.NewNoop(),
		logger:        zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the storage backend to use.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithShardStrategy sets the sharding strategy to use.
// If not set, material-based sharding is used.
func WithShardStrategy(s shard.Strategy) Option {
	return optionFunc(func(o *options) {
		o.shardStrategy = s
	})
}

// WithTotalShards sets the total number of shards.
// Default is shard.DefaultTotalShards.
func WithTotalShards(n int) Option {
	return optionFunc(func(o *options) {
		o.totalShards = n
	})
}

// WithCache keeps up to capacity decoded shards in memory, evicting the
// least recently used. A non-positive capacity disables the cache.
func WithCache(capacity int) Option {
	return optionFunc(func(o *options) {
		if capacity <= 0 {
			o.cache = nil
			return
		}
		o.cache = func(st store.Store, collector stats.Collector) store.Store {
			strategy, err := lru.New(capacity)
			if err != nil {
				return st
			}
			return cachedstore.New(st, memory.New(strategy, collector))
		}
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithDataDir configures the client from a directory written by the
// builder. The manifest supplies the shard count, strategy and codec.
func WithDataDir(dir string) (Option, error) {
	manifest, err := builder.ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	strategy, err := StrategyByName(manifest.Strategy)
	if err != nil {
		return nil, err
	}

	c, err := CodecByName(manifest.Codec)
	if err != nil {
		return nil, err
	}

	st, err := diskstore.New(filepath.Clean(dir), c)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	return optionFunc(func(o *options) {
		o.store = st
		o.totalShards = manifest.TotalShards
		o.shardStrategy = strategy
	}), nil
}

// StrategyByName returns the sharding strategy recorded under name in a
// manifest.
func StrategyByName(name string) (shard.Strategy, error) {
	switch name {
	case materialshard.Name:
		return materialshard.New(), nil
	case fnvshard.Name:
		return fnvshard.New(), nil
	default:
		return nil, fmt.Errorf("evaldb: unknown shard strategy %q", name)
	}
}

// CodecByName returns the codec recorded under name in a manifest: "zst",
// "gz", or empty for uncompressed shards.
func CodecByName(name string) (codec.Codec, error) {
	if name == "" {
		return noopcodec.New(), nil
	}
	c, ok := codec.ForExtension("shard."+name, zstdcodec.New(), gzipcodec.New())
	if !ok {
		return nil, fmt.Errorf("evaldb: unknown codec %q", name)
	}
	return c, nil
}
