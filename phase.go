package chessinsight

import (
	"fmt"

	"github.com/discochess/chessinsight/internal/fen"
)

// GamePhase is one of the three parts of a game, in playing order.
type GamePhase int

// Game phases.
const (
	Opening GamePhase = iota
	MiddleGame
	EndGame
)

// Phases lists every phase in playing order.
func Phases() []GamePhase {
	return []GamePhase{Opening, MiddleGame, EndGame}
}

// String returns "opening", "middle_game" or "end_game".
func (p GamePhase) String() string {
	switch p {
	case Opening:
		return "opening"
	case MiddleGame:
		return "middle_game"
	case EndGame:
		return "end_game"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParseGamePhase is the inverse of GamePhase.String.
func ParseGamePhase(s string) (GamePhase, error) {
	for _, p := range Phases() {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("chessinsight: unknown game phase %q", s)
}

// PhaseBoundaries split a game's plies into phases. Ranges are half-open
// over 0-based ply indexes: the opening is [0, OpeningEnd), the middlegame
// [OpeningEnd, MiddlegameEnd) and the endgame [MiddlegameEnd, Total).
type PhaseBoundaries struct {
	OpeningEnd    int
	MiddlegameEnd int
	Total         int
}

// Range returns the index range of p.
func (b PhaseBoundaries) Range(p GamePhase) (start, end int) {
	switch p {
	case Opening:
		return 0, b.OpeningEnd
	case MiddleGame:
		return b.OpeningEnd, b.MiddlegameEnd
	default:
		return b.MiddlegameEnd, b.Total
	}
}

// PhaseOf returns the phase holding the 0-based ply index i.
func (b PhaseBoundaries) PhaseOf(i int) GamePhase {
	switch {
	case i < b.OpeningEnd:
		return Opening
	case i < b.MiddlegameEnd:
		return MiddleGame
	default:
		return EndGame
	}
}

// HasEndgame reports whether the endgame range is non-empty.
func (b PhaseBoundaries) HasEndgame() bool {
	return b.MiddlegameEnd < b.Total
}

// Valid reports whether 0 <= OpeningEnd <= MiddlegameEnd <= Total.
func (b PhaseBoundaries) Valid() bool {
	return 0 <= b.OpeningEnd && b.OpeningEnd <= b.MiddlegameEnd && b.MiddlegameEnd <= b.Total
}

// SegmentPhases finds the phase boundaries of a game.
//
// positions[i] is the FEN (or bare placement) after ply i+1. The middlegame
// ends after the first ply whose weighted material sum drops below
// p.EndgameMaterial, but never before openingEnd. When material never drops
// that far the game has no endgame.
func SegmentPhases(positions []string, openingEnd int, p Policy) (PhaseBoundaries, error) {
	total := len(positions)
	openingEnd = max(0, min(openingEnd, total))

	b := PhaseBoundaries{OpeningEnd: openingEnd, MiddlegameEnd: total, Total: total}
	values := p.PieceValues.fen()
	for i, pos := range positions {
		m, err := fen.ParseMaterial(pos)
		if err != nil {
			return PhaseBoundaries{}, fmt.Errorf("%w: position after ply %d: %v", ErrInvalidRecord, i+1, err)
		}
		if m.Sum(values) < p.EndgameMaterial {
			b.MiddlegameEnd = max(i+1, openingEnd)
			break
		}
	}
	return b, nil
}
