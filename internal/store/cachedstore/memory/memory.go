// Package memory implements an in-process cache backend.
package memory

import (
	"sync"
	"sync/atomic"

	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/internal/store/cachedstore"
	"github.com/discochess/chessinsight/internal/store/cachedstore/cachestrategy"
)

// Compile-time check that Backend implements cachedstore.Backend.
var _ cachedstore.Backend = (*Backend)(nil)

// Backend is a thread-safe in-memory cache backend. Eviction is delegated to
// the strategy; hits, misses and size are reported to the collector.
type Backend struct {
	mu        sync.Mutex
	strategy  cachestrategy.Strategy
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a memory backend with the given eviction strategy.
// A nil collector discards metrics.
func New(strategy cachestrategy.Strategy, collector stats.Collector) *Backend {
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Backend{
		strategy:  strategy,
		collector: collector,
	}
}

// Get retrieves an object from the cache.
func (b *Backend) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	val, ok := b.strategy.Get(key)
	b.mu.Unlock()

	if ok {
		b.hits.Add(1)
		b.collector.IncCounter(stats.MetricCacheHits, 1)
		return val, true
	}
	b.misses.Add(1)
	b.collector.IncCounter(stats.MetricCacheMisses, 1)
	return nil, false
}

// Set stores an object in the cache.
func (b *Backend) Set(key string, data []byte) {
	b.mu.Lock()
	evicted := b.strategy.Add(key, data)
	size := b.strategy.Len()
	b.mu.Unlock()

	if evicted {
		b.collector.IncCounter(stats.MetricCacheEvictions, 1)
	}
	b.collector.SetGauge(stats.MetricCacheSize, int64(size))
}

// Stats returns current cache statistics.
func (b *Backend) Stats() cachedstore.Stats {
	return cachedstore.Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Size:   b.Len(),
	}
}

// Len returns the number of items in the cache.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.strategy.Len()
}
