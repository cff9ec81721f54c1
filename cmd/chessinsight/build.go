package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/chessinsight/evaldb"
	"github.com/discochess/chessinsight/internal/builder"
	"github.com/discochess/chessinsight/internal/shard"
	"github.com/discochess/chessinsight/internal/shard/materialshard"
	"github.com/discochess/chessinsight/internal/store/redisstore"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the evaluation database from a Lichess export",
	Long: `Build the evaluation database from the Lichess evaluation export
(https://database.lichess.org/lichess_db_eval.jsonl.zst, downloaded first).

This command will:
1. Read the export, decompressing .zst or .gz files
2. Distribute positions to shards using the configured strategy
3. Sort positions within each shard by FEN
4. Compress shards and write a manifest describing the layout

With --redis every shard is also written to a Redis server, which
"--evaldb redis://..." can then read without a local copy.

Examples:
  # Build into ./data
  chessinsight build --source ./lichess_db_eval.jsonl.zst --output ./data

  # Specify number of shards and strategy
  chessinsight build --source evals.jsonl --shards 32768 --strategy fnv32

  # Mirror to redis
  chessinsight build --source evals.jsonl.zst --redis redis://localhost:6379/0`,
	RunE: runBuild,
}

var (
	sourcePath   string
	outputDir    string
	totalShards  int
	strategyName string
	codecName    string
	maxMemoryMB  int
	redisURL     string
	redisPrefix  string
	redisTTL     time.Duration
)

func init() {
	buildCmd.Flags().StringVar(&sourcePath, "source", "", "Lichess evaluation export (.jsonl, .jsonl.zst or .jsonl.gz)")
	buildCmd.Flags().StringVarP(&outputDir, "output", "o", "./data", "output directory for shards")
	buildCmd.Flags().IntVar(&totalShards, "shards", shard.DefaultTotalShards, "number of shards to create")
	buildCmd.Flags().StringVar(&strategyName, "strategy", materialshard.Name, "sharding strategy: material, fnv32")
	buildCmd.Flags().StringVar(&codecName, "codec", "zst", "shard compression: zst, gz, or empty for none")
	buildCmd.Flags().IntVar(&maxMemoryMB, "max-memory", 1024, "max memory in MB before spilling to disk (lower = less RAM usage)")
	buildCmd.Flags().StringVar(&redisURL, "redis", "", "also write shards to this redis server (redis://host:port/db)")
	buildCmd.Flags().StringVar(&redisPrefix, "redis-prefix", "", "key prefix for mirrored shards")
	buildCmd.Flags().DurationVar(&redisTTL, "redis-ttl", 0, "expiry of mirrored shards (0 keeps them)")
	_ = buildCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	strategy, err := evaldb.StrategyByName(strategyName)
	if err != nil {
		return err
	}
	c, err := evaldb.CodecByName(codecName)
	if err != nil {
		return err
	}

	// Cancel on interrupt; the builder removes its temporary files.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []builder.Option{
		builder.WithOutputDir(outputDir),
		builder.WithTotalShards(totalShards),
		builder.WithStrategy(strategy),
		builder.WithCodec(c),
		builder.WithWorkers(cfg.Workers),
		builder.WithMaxMemoryMB(maxMemoryMB),
		builder.WithProgress(builder.LogProgress(logger)),
		builder.WithLogger(logger),
	}

	if redisURL != "" {
		mirror, err := redisstore.Open(ctx, redisURL, c,
			redisstore.WithPrefix(redisPrefix),
			redisstore.WithTTL(redisTTL),
		)
		if err != nil {
			return fmt.Errorf("connecting to redis mirror: %w", err)
		}
		defer mirror.Close()
		opts = append(opts, builder.WithMirror(mirror))
	}

	logger.Info("building evaluation database",
		zap.String("source", sourcePath),
		zap.String("output", outputDir),
		zap.Int("shards", totalShards),
		zap.String("strategy", strategy.Name()),
		zap.String("codec", codecName),
		zap.Int("workers", cfg.Workers),
		zap.Int("max_memory_mb", maxMemoryMB),
		zap.Bool("redis", redisURL != ""),
	)

	m, err := builder.New(opts...).BuildFromFile(ctx, sourcePath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Records:  %d\n", m.RecordCount)
	fmt.Fprintf(out, "Skipped:  %d\n", m.Skipped)
	fmt.Fprintf(out, "Shards:   %d of %d non-empty\n", m.ShardCount, m.TotalShards)
	fmt.Fprintf(out, "Strategy: %s\n", m.Strategy)
	return nil
}
