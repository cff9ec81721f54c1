package chessinsight

import (
	"fmt"

	"github.com/discochess/chessinsight/internal/fen"
)

// PieceValues weights pieces for the endgame material heuristic.
// Kings always count zero.
type PieceValues struct {
	Pawn   int `mapstructure:"pawn" yaml:"pawn"`
	Knight int `mapstructure:"knight" yaml:"knight"`
	Bishop int `mapstructure:"bishop" yaml:"bishop"`
	Rook   int `mapstructure:"rook" yaml:"rook"`
	Queen  int `mapstructure:"queen" yaml:"queen"`
}

func (v PieceValues) fen() fen.PieceValues {
	return fen.PieceValues{Pawn: v.Pawn, Knight: v.Knight, Bishop: v.Bishop, Rook: v.Rook, Queen: v.Queen}
}

// Thresholds are the score drops, in centipawns, a move must exceed to count
// as each MistakeSeverity.
type Thresholds struct {
	Inaccuracy int `mapstructure:"inaccuracy" yaml:"inaccuracy"`
	Mistake    int `mapstructure:"mistake" yaml:"mistake"`
	Blunder    int `mapstructure:"blunder" yaml:"blunder"`
}

// Of returns the threshold for s.
func (t Thresholds) Of(s MistakeSeverity) int {
	switch s {
	case Inaccuracy:
		return t.Inaccuracy
	case Mistake:
		return t.Mistake
	default:
		return t.Blunder
	}
}

// Policy holds the tunable constants of the analysis.
type Policy struct {
	// EndgameMaterial is the weighted material sum below which the endgame
	// starts.
	EndgameMaterial int `mapstructure:"endgame_material" yaml:"endgame_material"`

	PieceValues PieceValues `mapstructure:"piece_values" yaml:"piece_values"`
	Thresholds  Thresholds  `mapstructure:"thresholds" yaml:"thresholds"`

	// MinTimingRecords is the number of evaluation records below which
	// timing analysis is skipped.
	MinTimingRecords int `mapstructure:"min_timing_records" yaml:"min_timing_records"`
}

// DefaultPolicy returns the standard policy.
func DefaultPolicy() Policy {
	return Policy{
		EndgameMaterial:  27,
		PieceValues:      PieceValues{Pawn: 1, Knight: 3, Bishop: 3, Rook: 4, Queen: 8},
		Thresholds:       Thresholds{Inaccuracy: 50, Mistake: 120, Blunder: 200},
		MinTimingRecords: 3,
	}
}

// Validate checks that every constant is usable.
func (p Policy) Validate() error {
	if p.EndgameMaterial < 0 {
		return fmt.Errorf("%w: negative endgame material %d", ErrInvalidPolicy, p.EndgameMaterial)
	}
	v := p.PieceValues
	if v.Pawn < 0 || v.Knight < 0 || v.Bishop < 0 || v.Rook < 0 || v.Queen < 0 {
		return fmt.Errorf("%w: negative piece value in %+v", ErrInvalidPolicy, v)
	}
	t := p.Thresholds
	if t.Inaccuracy < 0 {
		return fmt.Errorf("%w: negative inaccuracy threshold %d", ErrInvalidPolicy, t.Inaccuracy)
	}
	if t.Inaccuracy > t.Mistake || t.Mistake > t.Blunder {
		return fmt.Errorf("%w: thresholds must not decrease, got %+v", ErrInvalidPolicy, t)
	}
	if p.MinTimingRecords < 0 {
		return fmt.Errorf("%w: negative min timing records %d", ErrInvalidPolicy, p.MinTimingRecords)
	}
	return nil
}
