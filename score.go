package chessinsight

import (
	"context"
	"strconv"
)

// Score is a raw engine evaluation of a position from White's point of view.
// At most one of Centipawns and Mate is set; when neither is, the score is
// unknown.
type Score struct {
	Centipawns *int
	Mate       *int
}

// CP returns a centipawn score.
func CP(cp int) Score {
	return Score{Centipawns: &cp}
}

// MateIn returns a forced mate score. Positive n means White mates.
func MateIn(n int) Score {
	return Score{Mate: &n}
}

// Known reports whether the score carries a value.
func (s Score) Known() bool {
	return s.Centipawns != nil || s.Mate != nil
}

// String formats the score as "+0.35", "-1.20", "#3", "#-2" or "?".
func (s Score) String() string {
	switch {
	case s.Mate != nil:
		return "#" + strconv.Itoa(*s.Mate)
	case s.Centipawns != nil:
		cp := *s.Centipawns
		sign := "+"
		if cp < 0 {
			sign = "-"
			cp = -cp
		}
		return sign + strconv.Itoa(cp/100) + "." + leftPad2(cp%100)
	default:
		return "?"
	}
}

func leftPad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// EvaluationProvider scores positions. fen is the position reached after a
// move; the score is from White's point of view. A provider that has no
// opinion about a position returns an unknown Score and a nil error.
type EvaluationProvider interface {
	Evaluate(ctx context.Context, fen string) (Score, error)
}

// EvaluationProviderFunc adapts a function to EvaluationProvider.
type EvaluationProviderFunc func(ctx context.Context, fen string) (Score, error)

// Compile-time check that EvaluationProviderFunc implements EvaluationProvider.
var _ EvaluationProvider = EvaluationProviderFunc(nil)

// Evaluate calls f(ctx, fen).
func (f EvaluationProviderFunc) Evaluate(ctx context.Context, fen string) (Score, error) {
	return f(ctx, fen)
}
