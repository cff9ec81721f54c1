package chessinsight

import (
	"errors"
	"testing"
)

const (
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	// 16 pawns and one rook: 20 points.
	lowMaterialFEN = "r3k3/pppppppp/8/8/8/8/PPPPPPPP/4K3 w - - 0 1"

	// Two queens and two rooks: 24 points.
	queensAndRooksFEN = "r2qk3/8/8/8/8/8/8/R2QK3 w - - 0 1"
)

func repeatPositions(n int, fen string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fen
	}
	return out
}

func TestSegmentPhases(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name       string
		positions  []string
		openingEnd int
		want       PhaseBoundaries
	}{
		{
			name:       "never drops",
			positions:  repeatPositions(30, startFEN),
			openingEnd: 6,
			want:       PhaseBoundaries{OpeningEnd: 6, MiddlegameEnd: 30, Total: 30},
		},
		{
			name:       "drops at ply 35",
			positions:  append(repeatPositions(34, startFEN), repeatPositions(6, lowMaterialFEN)...),
			openingEnd: 8,
			want:       PhaseBoundaries{OpeningEnd: 8, MiddlegameEnd: 35, Total: 40},
		},
		{
			name:       "opening is a floor",
			positions:  append(repeatPositions(2, startFEN), repeatPositions(10, queensAndRooksFEN)...),
			openingEnd: 7,
			want:       PhaseBoundaries{OpeningEnd: 7, MiddlegameEnd: 7, Total: 12},
		},
		{
			name:       "opening clamped to total",
			positions:  repeatPositions(4, startFEN),
			openingEnd: 9,
			want:       PhaseBoundaries{OpeningEnd: 4, MiddlegameEnd: 4, Total: 4},
		},
		{
			name:       "empty game",
			positions:  nil,
			openingEnd: 0,
			want:       PhaseBoundaries{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SegmentPhases(tt.positions, tt.openingEnd, policy)
			if err != nil {
				t.Fatalf("SegmentPhases() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SegmentPhases() = %+v, want %+v", got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("SegmentPhases() = %+v, not ordered", got)
			}
		})
	}
}

func TestSegmentPhases_CustomPolicy(t *testing.T) {
	policy := DefaultPolicy()
	policy.EndgameMaterial = 73

	got, err := SegmentPhases(repeatPositions(5, startFEN), 0, policy)
	if err != nil {
		t.Fatalf("SegmentPhases() error = %v", err)
	}
	if got.MiddlegameEnd != 1 {
		t.Errorf("MiddlegameEnd = %d, want 1", got.MiddlegameEnd)
	}
}

func TestSegmentPhases_InvalidPosition(t *testing.T) {
	_, err := SegmentPhases([]string{startFEN, "rnbxkbnr/8/8/8/8/8/8/8 w - -"}, 0, DefaultPolicy())
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("SegmentPhases() error = %v, want ErrInvalidRecord", err)
	}
}

func TestPhaseBoundaries_PhaseOf(t *testing.T) {
	b := PhaseBoundaries{OpeningEnd: 2, MiddlegameEnd: 5, Total: 8}

	want := []GamePhase{Opening, Opening, MiddleGame, MiddleGame, MiddleGame, EndGame, EndGame, EndGame}
	for i, w := range want {
		if got := b.PhaseOf(i); got != w {
			t.Errorf("PhaseOf(%d) = %v, want %v", i, got, w)
		}
	}
	if !b.HasEndgame() {
		t.Error("HasEndgame() = false, want true")
	}

	for _, p := range Phases() {
		start, end := b.Range(p)
		for i := start; i < end; i++ {
			if b.PhaseOf(i) != p {
				t.Errorf("PhaseOf(%d) disagrees with Range(%v)", i, p)
			}
		}
	}
}

func TestParseGamePhase(t *testing.T) {
	for _, p := range Phases() {
		got, err := ParseGamePhase(p.String())
		if err != nil || got != p {
			t.Errorf("ParseGamePhase(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseGamePhase("middlegame"); err == nil {
		t.Error("ParseGamePhase(middlegame) error = nil")
	}
}

func BenchmarkSegmentPhases(b *testing.B) {
	positions := append(repeatPositions(60, startFEN), repeatPositions(20, lowMaterialFEN)...)
	policy := DefaultPolicy()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = SegmentPhases(positions, 10, policy)
	}
}
