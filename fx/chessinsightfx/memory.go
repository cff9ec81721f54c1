package chessinsightfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/chessinsight/evaldb"
	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/internal/store/memstore"
)

// MemoryModule provides an analyzer backed by an in-memory evaluation
// database. The *memstore.Store is exposed so tests can load shards.
// Requires a Config and a *zap.Logger; Config.EvalDB.URL is ignored.
var MemoryModule = fx.Module("chessinsight.memory",
	fx.Provide(
		newStatsCollector,
		newOpeningIndex,
		newMemStore,
		newMemoryEvalDB,
		newAnalyzer,
	),
)

func newMemStore() *memstore.Store {
	return memstore.New()
}

// MemoryParams holds dependencies for the in-memory database.
type MemoryParams struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

func newMemoryEvalDB(p MemoryParams) (*evaldb.Client, error) {
	opts := []evaldb.Option{
		evaldb.WithStore(p.Store),
		evaldb.WithTotalShards(max(p.Config.EvalDB.Shards, 1)),
		evaldb.WithStats(p.Collector),
		evaldb.WithLogger(p.Logger.Named("evaldb")),
	}
	if p.Config.EvalDB.Strategy != "" {
		strategy, err := evaldb.StrategyByName(p.Config.EvalDB.Strategy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, evaldb.WithShardStrategy(strategy))
	}

	client, err := evaldb.New(opts...)
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
