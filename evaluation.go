package chessinsight

import "math"

// MaxScore bounds normalized scores. Forced mates normalize to ±MaxScore.
const MaxScore = 1000

// EvaluationRecord is the normalized evaluation of one ply.
type EvaluationRecord struct {
	// Ply is the 1-based half-move number.
	Ply int

	// Score is in centipawns from White's point of view, within ±MaxScore.
	Score int

	// Time is the number of seconds the mover spent on the ply.
	Time float64
}

// NormalizeScore bounds a raw score. ply is the 1-based ply that produced
// the position and previous the normalized score of the ply before it.
//
// Mate in N becomes ±MaxScore by the sign of N. Mate in 0 means the side to
// move is mated, which is decided by who just moved. Centipawn scores are
// clamped to ±MaxScore. An unknown score repeats previous.
func NormalizeScore(s Score, ply, previous int) int {
	switch {
	case s.Mate != nil:
		n := *s.Mate
		if n == 0 {
			if ply%2 == 1 {
				return MaxScore
			}
			return -MaxScore
		}
		if n > 0 {
			return MaxScore
		}
		return -MaxScore
	case s.Centipawns != nil:
		return max(-MaxScore, min(MaxScore, *s.Centipawns))
	default:
		return previous
	}
}

// NormalizeEvaluations produces one record per ply from raw scores and the
// movers' remaining clock readings.
//
// scores may be shorter than clocks, or nil when no engine was available;
// the missing scores are unknown, so a game without any engine data gets
// neutral scores throughout. Time spent is the mover's previous clock minus
// the current one plus the increment, starting from the base time. Plies
// without a clock reading get zero time and leave the clock untouched.
func NormalizeEvaluations(scores []Score, clocks []*float64, tc TimeControl) []EvaluationRecord {
	n := max(len(scores), len(clocks))
	records := make([]EvaluationRecord, n)

	remaining := [2]float64{tc.Base, tc.Base}
	previous := 0
	for i := range n {
		ply := i + 1

		var s Score
		if i < len(scores) {
			s = scores[i]
		}
		score := NormalizeScore(s, ply, previous)
		previous = score

		var spent float64
		if i < len(clocks) && clocks[i] != nil {
			side := i % 2
			spent = roundTo(remaining[side]-*clocks[i]+tc.Increment, 2)
			remaining[side] = *clocks[i]
			if spent < 0 {
				spent = 0
			}
		}

		records[i] = EvaluationRecord{Ply: ply, Score: score, Time: spent}
	}
	return records
}

func roundTo(x float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(x*p) / p
}
