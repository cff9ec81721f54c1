// Package cachedstore provides a read-through cache in front of a Store.
package cachedstore

// Backend holds cached objects and decides what to evict.
type Backend interface {
	// Get returns the cached object for key, or nil, false.
	Get(key string) ([]byte, bool)

	// Set caches data under key.
	Set(key string, data []byte)

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // entries currently cached
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
