package chessinsight

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Color is a side.
type Color int

// Colors. White moves on odd plies.
const (
	White Color = iota
	Black
)

// String returns "white" or "black".
func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Other returns the opposite color.
func (c Color) Other() Color {
	return 1 - c
}

// offset is the 0-based index of the color's first ply.
func (c Color) offset() int {
	return int(c)
}

// MistakeSeverity grades a bad move. Severities are cumulative: a blunder
// also counts as a mistake and an inaccuracy.
type MistakeSeverity int

// Severities, mildest first.
const (
	Inaccuracy MistakeSeverity = iota
	Mistake
	Blunder
)

// Severities lists every severity, mildest first.
func Severities() []MistakeSeverity {
	return []MistakeSeverity{Inaccuracy, Mistake, Blunder}
}

// String returns "inaccuracy", "mistake" or "blunder".
func (s MistakeSeverity) String() string {
	switch s {
	case Inaccuracy:
		return "inaccuracy"
	case Mistake:
		return "mistake"
	case Blunder:
		return "blunder"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseMistakeSeverity is the inverse of MistakeSeverity.String.
func ParseMistakeSeverity(s string) (MistakeSeverity, error) {
	for _, sev := range Severities() {
		if sev.String() == s {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("chessinsight: unknown mistake severity %q", s)
}

// MistakeCounts holds, per phase, how many moves reached each severity.
type MistakeCounts map[GamePhase]map[MistakeSeverity]int

// AverageMoveTime returns the mean seconds c spent per move in each phase.
// A phase without moves of c averages 0. With fewer than minRecords records
// the result is empty.
func AverageMoveTime(records []EvaluationRecord, c Color, b PhaseBoundaries, minRecords int) map[GamePhase]float64 {
	out := make(map[GamePhase]float64)
	if len(records) < minRecords {
		return out
	}

	for _, phase := range Phases() {
		start, end := b.Range(phase)
		end = min(end, len(records))

		var times []float64
		for i := start; i < end; i++ {
			if i%2 == c.offset() {
				times = append(times, records[i].Time)
			}
		}
		if len(times) == 0 {
			out[phase] = 0
			continue
		}
		out[phase] = stat.Mean(times, nil)
	}
	return out
}

// CountMistakes grades every move of c. A move's drop is the score before
// it (the previous ply's score, or 0 before the first move) minus the score
// after it, seen from c's side. The move counts toward every severity whose
// threshold the drop strictly exceeds, in the phase the move was played.
func CountMistakes(records []EvaluationRecord, c Color, b PhaseBoundaries, t Thresholds) MistakeCounts {
	out := make(MistakeCounts, 3)
	for _, phase := range Phases() {
		out[phase] = map[MistakeSeverity]int{Inaccuracy: 0, Mistake: 0, Blunder: 0}
	}

	for i := c.offset(); i < len(records); i += 2 {
		before := 0
		if i > 0 {
			before = records[i-1].Score
		}
		drop := before - records[i].Score
		if c == Black {
			drop = -drop
		}

		counts := out[b.PhaseOf(i)]
		for _, sev := range Severities() {
			if drop > t.Of(sev) {
				counts[sev]++
			}
		}
	}
	return out
}
