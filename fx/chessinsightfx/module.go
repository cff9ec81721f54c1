// Package chessinsightfx provides fx modules for a configured analyzer.
package chessinsightfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/chessinsight"
	"github.com/discochess/chessinsight/evaldb"
	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/internal/stats/logger"
	"github.com/discochess/chessinsight/opening"
)

// Config holds configuration for the analyzer.
type Config struct {
	// Openings is an opening index file. Empty selects the bundled index.
	Openings string

	// EvalDB locates the evaluation database. An empty URL leaves the
	// analyzer without engine scores.
	EvalDB evaldb.Source

	// Policy replaces the default analysis constants when not zero.
	Policy chessinsight.Policy
}

// Module provides a *chessinsight.Analyzer and, when configured, the
// *evaldb.Client feeding it. Requires a Config and a *zap.Logger.
var Module = fx.Module("chessinsight",
	fx.Provide(
		newStatsCollector,
		newOpeningIndex,
		newEvalDB,
		newAnalyzer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("chessinsight.stats"))
}

func newOpeningIndex(cfg Config) (*opening.Index, error) {
	if cfg.Openings == "" {
		return opening.Default()
	}
	return opening.LoadFile(cfg.Openings)
}

// EvalDBParams holds dependencies for opening the evaluation database.
type EvalDBParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// newEvalDB returns a nil client when no database is configured.
func newEvalDB(p EvalDBParams) (*evaldb.Client, error) {
	if p.Config.EvalDB.URL == "" {
		return nil, nil
	}

	client, err := evaldb.Open(context.Background(), p.Config.EvalDB,
		evaldb.WithStats(p.Collector),
		evaldb.WithLogger(p.Logger.Named("evaldb")),
	)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

// AnalyzerParams holds dependencies for creating the analyzer.
type AnalyzerParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Openings  *opening.Index
	EvalDB    *evaldb.Client `optional:"true"`
	Lifecycle fx.Lifecycle
}

func newAnalyzer(p AnalyzerParams) (*chessinsight.Analyzer, error) {
	policy := p.Config.Policy
	if policy == (chessinsight.Policy{}) {
		policy = chessinsight.DefaultPolicy()
	}

	opts := []chessinsight.Option{
		chessinsight.WithOpeningIndex(p.Openings),
		chessinsight.WithPolicy(policy),
		chessinsight.WithStats(p.Collector),
		chessinsight.WithLogger(p.Logger.Named("chessinsight")),
	}
	if p.EvalDB != nil {
		opts = append(opts, chessinsight.WithEvaluationProvider(evaldb.NewProvider(p.EvalDB)))
	}

	analyzer, err := chessinsight.New(opts...)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return analyzer.Close()
		},
	})
	return analyzer, nil
}
