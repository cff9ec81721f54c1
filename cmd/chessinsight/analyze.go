package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/discochess/chessinsight"
	"github.com/discochess/chessinsight/internal/builder"
	promstats "github.com/discochess/chessinsight/internal/stats/prometheus"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [PGN files]",
	Short: "Analyze games and export one row per game",
	Long: `Analyze every game of the given PGN files ("-" reads standard input).

Each game becomes one row of flattened keys such as
"white.accuracy.middle_game.blunder" or "black.avg_move_time.end_game".
With --player the row is written from that player's point of view under
"player" and "opponent" keys, and games the player did not take part in
are skipped.

Games that cannot be analyzed are logged and skipped.

Examples:
  # CSV to standard output
  chessinsight analyze games.pgn

  # Spreadsheet with engine scores from a local database
  chessinsight analyze games.pgn.zst --evaldb ./data -o games.xlsx

  # One player's games as JSON, with metrics
  chessinsight analyze games.pgn --player hikaru -o hikaru.json --metrics`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	outputPath     string
	analyzePlayer  string
	analyzeMetrics bool
	gameLimit      int
)

func init() {
	analyzeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file; the extension selects the format (default standard output)")
	analyzeCmd.Flags().StringVar(&analyzePlayer, "player", "", "write rows from this player's point of view")
	analyzeCmd.Flags().BoolVar(&analyzeMetrics, "metrics", false, "print analysis metrics to standard error when done")
	analyzeCmd.Flags().IntVar(&gameLimit, "limit", 0, "read at most this many games (0 reads all)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	analyzer, cleanup, err := newAnalyzer(ctx, promstats.New(registry))
	if err != nil {
		return err
	}
	defer cleanup()

	games, err := readGames(args, cmd.InOrStdin(), gameLimit)
	if err != nil {
		return err
	}

	start := time.Now()
	rows, failed, err := analyzeGames(ctx, analyzer, games)
	if err != nil {
		return err
	}

	logger.Info("analysis complete",
		zap.Int("games", len(games)),
		zap.Int("rows", len(rows)),
		zap.Int64("skipped", failed),
		zap.String("elapsed", builder.FormatDuration(time.Since(start))),
	)

	if err := writeRows(cmd.OutOrStdout(), outputPath, rows); err != nil {
		return err
	}

	if analyzeMetrics {
		return writeMetrics(cmd.ErrOrStderr(), registry)
	}
	return nil
}

// analyzeGames analyzes games on cfg.Workers goroutines. Rows keep the
// input order. Games that fail are logged and counted but do not stop the
// run; only cancellation does.
func analyzeGames(ctx context.Context, analyzer *chessinsight.Analyzer, games []inputGame) ([]map[string]any, int64, error) {
	rows := make([]map[string]any, len(games))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, game := range games {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			row, err := analyzeRow(gctx, analyzer, game.Text)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				logger.Warn("skipping game",
					zap.String("file", game.File),
					zap.Int("game", game.Index+1),
					zap.Error(err),
				)
				return nil
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	rows = slices.DeleteFunc(rows, func(r map[string]any) bool { return r == nil })
	return rows, failed.Load(), nil
}

func analyzeRow(ctx context.Context, analyzer *chessinsight.Analyzer, pgn string) (map[string]any, error) {
	game, err := analyzer.AnalyzePGN(ctx, pgn)
	if err != nil {
		return nil, err
	}
	if analyzePlayer == "" {
		return chessinsight.Flatten(game, cfg.Separator), nil
	}

	view, err := game.PerspectiveOf(analyzePlayer)
	if err != nil {
		return nil, fmt.Errorf("%s vs %s: %w", game.White().Name(), game.Black().Name(), err)
	}
	return chessinsight.Flatten(view, cfg.Separator), nil
}
