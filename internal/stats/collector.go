// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the module.
const (
	// Analysis metrics.
	MetricGamesAnalyzed       = "chessinsight_games_analyzed_total"
	MetricAnalysisFailures    = "chessinsight_analysis_failures_total"
	MetricOpeningMisses       = "chessinsight_opening_misses_total"
	MetricDegradedEvaluations = "chessinsight_degraded_evaluations_total"
	MetricAnalysisSeconds     = "chessinsight_analysis_seconds"
	MetricGamePlies           = "chessinsight_game_plies"

	// Evaluation database metrics.
	MetricLookups      = "chessinsight_evaldb_lookups_total"
	MetricHits         = "chessinsight_evaldb_hits_total"
	MetricMisses       = "chessinsight_evaldb_misses_total"
	MetricShardFetches = "chessinsight_evaldb_shard_fetches_total"

	// Cache metrics.
	MetricCacheHits      = "chessinsight_cache_hits_total"
	MetricCacheMisses    = "chessinsight_cache_misses_total"
	MetricCacheEvictions = "chessinsight_cache_evictions_total"
	MetricCacheSize      = "chessinsight_cache_size"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

// Multi fans every metric out to each collector.
type Multi []Collector

// Compile-time check that Multi implements Collector.
var _ Collector = Multi(nil)

func (m Multi) IncCounter(name string, delta int64) {
	for _, c := range m {
		c.IncCounter(name, delta)
	}
}

func (m Multi) SetGauge(name string, value int64) {
	for _, c := range m {
		c.SetGauge(name, value)
	}
}

func (m Multi) ObserveHistogram(name string, value float64) {
	for _, c := range m {
		c.ObserveHistogram(name, value)
	}
}
