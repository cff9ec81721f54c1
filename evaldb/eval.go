package evaldb

import (
	"github.com/discochess/chessinsight"
	"github.com/discochess/chessinsight/internal/search"
)

// Eval is the evaluation of a position from the deepest analysis on record.
type Eval struct {
	// FEN is the position as stored, without move counters.
	FEN string

	// Depth is the search depth of the analysis.
	Depth int

	// Knodes is the number of kilo-nodes searched.
	Knodes int

	// PVs holds the principal variations, best first.
	PVs []PV
}

// PV is one principal variation of an analysis.
type PV struct {
	// Centipawns is the score from White's point of view.
	// Nil when the line is a forced mate.
	Centipawns *int

	// Mate is the distance to mate in moves. Positive means White mates.
	Mate *int

	// Line is the variation in UCI notation.
	Line string
}

func newEval(r *search.Record) *Eval {
	e := &Eval{FEN: r.FEN}

	best, _ := r.Best()
	if best == nil {
		return e
	}
	e.Depth = best.Depth
	e.Knodes = best.Knodes
	e.PVs = make([]PV, len(best.PVs))
	for i, pv := range best.PVs {
		e.PVs[i] = PV{Centipawns: pv.CP, Mate: pv.Mate, Line: pv.Line}
	}
	return e
}

// BestPV returns the best principal variation, or nil if there is none.
func (e *Eval) BestPV() *PV {
	if len(e.PVs) == 0 {
		return nil
	}
	return &e.PVs[0]
}

// IsMate reports whether the best line is a forced mate.
func (e *Eval) IsMate() bool {
	pv := e.BestPV()
	return pv != nil && pv.Mate != nil
}

// Score returns the score of the best line. It is unknown when the
// analysis has no lines.
func (e *Eval) Score() chessinsight.Score {
	pv := e.BestPV()
	if pv == nil {
		return chessinsight.Score{}
	}
	return pv.Score()
}

// Score returns the line's score.
func (pv *PV) Score() chessinsight.Score {
	return chessinsight.Score{Centipawns: pv.Centipawns, Mate: pv.Mate}
}
