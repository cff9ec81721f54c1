package chessinsight

import (
	"go.uber.org/zap"

	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/opening"
)

// Option configures an Analyzer.
type Option interface {
	apply(*options)
}

// options holds the analyzer configuration.
type options struct {
	openings *opening.Index
	provider EvaluationProvider
	policy   Policy
	stats    stats.Collector
	logger   *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		policy: DefaultPolicy(),
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithOpeningIndex sets the index openings are classified against.
// Without one no opening is ever recognized.
func WithOpeningIndex(idx *opening.Index) Option {
	return optionFunc(func(o *options) {
		o.openings = idx
	})
}

// WithEvaluationProvider sets the engine positions are scored with.
// Without one every score is neutral.
func WithEvaluationProvider(p EvaluationProvider) Option {
	return optionFunc(func(o *options) {
		o.provider = p
	})
}

// WithPolicy replaces the default analysis constants.
func WithPolicy(p Policy) Option {
	return optionFunc(func(o *options) {
		o.policy = p
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
