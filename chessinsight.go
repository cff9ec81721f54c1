// Package chessinsight analyzes single chess games: it recognizes the
// opening, splits the game into phases by material, normalizes engine
// evaluations and derives per-player timing and mistake statistics.
//
// Example usage:
//
//	idx, err := opening.Default()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	analyzer, err := chessinsight.New(
//	    chessinsight.WithOpeningIndex(idx),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer analyzer.Close()
//
//	game, err := analyzer.AnalyzePGN(ctx, pgnText)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(game.White().Accuracy())
package chessinsight

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/chessinsight/internal/stats"
	"github.com/discochess/chessinsight/opening"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrInvalidRecord indicates the moves or positions of a record are
	// inconsistent.
	ErrInvalidRecord = errors.New("chessinsight: invalid game record")

	// ErrInvalidMetadata indicates a missing or malformed header.
	ErrInvalidMetadata = errors.New("chessinsight: invalid game metadata")

	// ErrUnknownPlayer indicates no player of the game matches a name.
	ErrUnknownPlayer = errors.New("chessinsight: unknown player")

	// ErrInvalidPolicy indicates unusable analysis constants.
	ErrInvalidPolicy = errors.New("chessinsight: invalid policy")

	// ErrClosed indicates the analyzer has been closed.
	ErrClosed = errors.New("chessinsight: analyzer closed")
)

// Analyzer turns game records into analyzed Games.
// An Analyzer is safe for concurrent use by multiple goroutines.
type Analyzer struct {
	openings *opening.Index
	provider EvaluationProvider
	policy   Policy
	stats    stats.Collector
	logger   *zap.Logger
	closed   atomic.Bool
}

// New creates an Analyzer with the given options.
func New(opts ...Option) (*Analyzer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if err := cfg.policy.Validate(); err != nil {
		return nil, err
	}

	a := &Analyzer{
		openings: cfg.openings,
		provider: cfg.provider,
		policy:   cfg.policy,
		stats:    cfg.stats,
		logger:   cfg.logger,
	}

	a.logger.Debug("analyzer initialized",
		zap.Int("openings", a.openings.Len()),
		zap.Bool("evaluations", a.provider != nil),
	)

	return a, nil
}

// AnalyzePGN parses the first game of a PGN text and analyzes it.
func (a *Analyzer) AnalyzePGN(ctx context.Context, pgn string) (*Game, error) {
	rec, err := ParsePGN(pgn)
	if err != nil {
		a.stats.IncCounter(stats.MetricAnalysisFailures, 1)
		return nil, err
	}
	return a.Analyze(ctx, rec)
}

// Analyze validates rec and derives its analysis. Malformed metadata or
// inconsistent moves fail the whole game. A missing opening or missing
// engine data only degrades the result.
func (a *Analyzer) Analyze(ctx context.Context, rec Record) (*Game, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	g, err := a.analyze(ctx, rec)
	if err != nil {
		a.stats.IncCounter(stats.MetricAnalysisFailures, 1)
		return nil, err
	}

	a.stats.IncCounter(stats.MetricGamesAnalyzed, 1)
	a.stats.ObserveHistogram(stats.MetricGamePlies, float64(g.Plies()))
	a.stats.ObserveHistogram(stats.MetricAnalysisSeconds, time.Since(start).Seconds())
	return g, nil
}

func (a *Analyzer) analyze(ctx context.Context, rec Record) (*Game, error) {
	meta, err := parseMetadata(rec.Headers, rec.FinalComment)
	if err != nil {
		return nil, err
	}
	if meta.endReason == EndUnknown {
		a.logger.Debug("unrecognized end reason",
			zap.String("url", meta.url),
			zap.String("termination", rec.Headers["Termination"]),
		)
	}

	positions := rec.Positions
	if len(positions) == 0 {
		if positions, err = Replay(rec.Moves); err != nil {
			return nil, err
		}
	}
	if len(positions) != len(rec.Moves)+1 {
		return nil, fmt.Errorf("%w: %d positions for %d moves", ErrInvalidRecord, len(positions), len(rec.Moves))
	}
	for i, m := range rec.Moves {
		if m.Ply != 0 && m.Ply != i+1 {
			return nil, fmt.Errorf("%w: move %d has ply %d", ErrInvalidRecord, i, m.Ply)
		}
	}

	scores, err := a.evaluate(ctx, positions[1:], meta)
	if err != nil {
		return nil, err
	}
	evals := NormalizeEvaluations(scores, rec.Clocks(), meta.timeControl)

	match := a.openings.Classify(positions)
	if !match.Found() {
		a.stats.IncCounter(stats.MetricOpeningMisses, 1)
		a.logger.Warn("no opening found",
			zap.Time("date", meta.date),
			zap.String("url", meta.url),
		)
	}

	phases, err := SegmentPhases(positions[1:], match.Ply, a.policy)
	if err != nil {
		return nil, err
	}

	return newGame(rec, meta, match, phases, evals, a.policy), nil
}

// evaluate scores every position. It returns nil scores, and so neutral
// evaluations, when there is no provider or the provider fails. Only
// cancellation of ctx is reported as an error.
func (a *Analyzer) evaluate(ctx context.Context, positions []string, meta metadata) ([]Score, error) {
	if a.provider == nil {
		return nil, nil
	}

	scores := make([]Score, len(positions))
	for i, pos := range positions {
		s, err := a.provider.Evaluate(ctx, pos)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.stats.IncCounter(stats.MetricDegradedEvaluations, 1)
			a.logger.Warn("evaluation unavailable, using neutral scores",
				zap.String("url", meta.url),
				zap.Int("ply", i+1),
				zap.Error(err),
			)
			return nil, nil
		}
		scores[i] = s
	}
	return scores, nil
}

// Close releases the analyzer. Providers passed in are not closed.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}
