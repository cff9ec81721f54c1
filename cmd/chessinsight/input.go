package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/discochess/chessinsight"
	"github.com/discochess/chessinsight/evaldb"
	"github.com/discochess/chessinsight/internal/codec"
	"github.com/discochess/chessinsight/internal/codec/gzipcodec"
	"github.com/discochess/chessinsight/internal/codec/zstdcodec"
	"github.com/discochess/chessinsight/internal/export"
	"github.com/discochess/chessinsight/internal/pgnstream"
	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/opening"
)

// inputGame is one game of an input file.
type inputGame struct {
	File string
	pgnstream.Game
}

// readGames splits every file into games. "-" reads standard input.
// Files ending in .zst or .gz are decompressed. A positive limit stops
// reading after that many games.
func readGames(paths []string, stdin io.Reader, limit int) ([]inputGame, error) {
	var games []inputGame
	for _, path := range paths {
		if limit > 0 && len(games) >= limit {
			break
		}
		err := withInput(path, stdin, func(r io.Reader) error {
			return pgnstream.Split(r, func(g pgnstream.Game) error {
				games = append(games, inputGame{File: path, Game: g})
				if limit > 0 && len(games) >= limit {
					return pgnstream.ErrStop
				}
				return nil
			})
		})
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return games, nil
}

func withInput(path string, stdin io.Reader, fn func(io.Reader) error) error {
	if path == "-" {
		return fn(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if c, ok := codec.ForExtension(path, zstdcodec.New(), gzipcodec.New()); ok {
		rc, err := c.Reader(f)
		if err != nil {
			return fmt.Errorf("creating %s decompressor: %w", c.Extension(), err)
		}
		defer rc.Close()
		r = rc
	}
	return fn(r)
}

// loadOpenings returns the configured opening index.
func loadOpenings() (*opening.Index, error) {
	if cfg.Openings == "" {
		return opening.Default()
	}
	return opening.LoadFile(cfg.Openings)
}

// newAnalyzer builds an analyzer from the configuration. The returned
// function releases the analyzer and its evaluation database.
func newAnalyzer(ctx context.Context, collector stats.Collector) (*chessinsight.Analyzer, func(), error) {
	idx, err := loadOpenings()
	if err != nil {
		return nil, nil, fmt.Errorf("loading openings: %w", err)
	}

	opts := []chessinsight.Option{
		chessinsight.WithOpeningIndex(idx),
		chessinsight.WithPolicy(cfg.Policy),
		chessinsight.WithStats(collector),
		chessinsight.WithLogger(logger),
	}

	var db *evaldb.Client
	if cfg.EvalDB.URL != "" {
		db, err = evaldb.Open(ctx, cfg.EvalDB,
			evaldb.WithStats(collector),
			evaldb.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("opening evaluation database: %w", err)
		}
		opts = append(opts, chessinsight.WithEvaluationProvider(evaldb.NewProvider(db)))
	}

	analyzer, err := chessinsight.New(opts...)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		analyzer.Close()
		if db != nil {
			if err := db.Close(); err != nil {
				logger.Warn("closing evaluation database", zap.Error(err))
			}
		}
	}
	return analyzer, cleanup, nil
}

// writeRows writes rows to path, or to w in the configured format when
// path is empty.
func writeRows(w io.Writer, path string, rows []map[string]any) error {
	if path != "" {
		return export.WriteFile(path, rows)
	}
	f, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	return export.Write(w, f, rows)
}
