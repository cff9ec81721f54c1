package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/chessinsight/internal/config"
	"github.com/discochess/chessinsight/internal/obslog"
)

var (
	// Global flags.
	configFile string

	cfg    = config.Default()
	logger = zap.NewNop()
)

// flagKeys maps configuration keys to the flags that override them.
var flagKeys = map[string]string{
	"log_level":       "log-level",
	"log_format":      "log-format",
	"openings":        "openings",
	"evaldb.url":      "evaldb",
	"evaldb.cache":    "evaldb-cache",
	"evaldb.shards":   "evaldb-shards",
	"evaldb.strategy": "evaldb-strategy",
	"evaldb.codec":    "evaldb-codec",
	"workers":         "workers",
	"separator":       "separator",
	"format":          "format",
}

var rootCmd = &cobra.Command{
	Use:   "chessinsight",
	Short: "Opening, phase, timing and mistake analysis for chess games",
	Long: `Chessinsight analyzes chess games recorded in PGN.

For every game it recognizes the opening, splits the game into opening,
middlegame and endgame by material, normalizes engine evaluations from the
evaluation database and counts each player's inaccuracies, mistakes and
blunders together with their average time per move in every phase.

Examples:
  # Analyze a PGN export to CSV
  chessinsight analyze games.pgn -o games.csv

  # Analyze from one player's point of view with engine scores
  chessinsight analyze games.pgn --player magnus --evaldb ./data -o games.xlsx

  # Build the evaluation database
  chessinsight build --source lichess_db_eval.jsonl.zst --output ./data

  # Look up a position
  chessinsight lookup --evaldb ./data "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() {
	d := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
	pf.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
	pf.String("log-format", d.LogFormat, "log format: console, json")
	pf.String("openings", d.Openings, "opening index file (.tsv or .json, optionally compressed); empty uses the bundled index")
	pf.String("evaldb", d.EvalDB.URL, "evaluation database: a directory or s3://, gs://, redis:// URL")
	pf.Int("evaldb-cache", d.EvalDB.Cache, "number of evaluation shards cached in memory")
	pf.Int("evaldb-shards", d.EvalDB.Shards, "shard count of a remote evaluation database")
	pf.String("evaldb-strategy", d.EvalDB.Strategy, "sharding strategy of a remote evaluation database")
	pf.String("evaldb-codec", d.EvalDB.Codec, "shard compression of a remote evaluation database: zst, gz or none")
	pf.IntP("workers", "w", d.Workers, "number of parallel workers")
	pf.String("separator", d.Separator, "separator joining nested keys in exported rows")
	pf.StringP("format", "f", d.Format, "output format when the output path does not name one: csv, json, yaml, xlsx")
}

// loadConfig merges flags, environment and the config file into cfg and
// builds the logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	v, err := config.New(configFile)
	if err != nil {
		return err
	}
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	c, err := config.Load(v)
	if err != nil {
		return err
	}
	l, err := obslog.New(c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}

	cfg, logger = c, l
	logger.Debug("configuration loaded",
		zap.String("config", v.ConfigFileUsed()),
		zap.String("evaldb", cfg.EvalDB.URL),
		zap.Int("workers", cfg.Workers),
	)
	return nil
}
