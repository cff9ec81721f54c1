package chessinsight

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func zeroCounts() MistakeCounts {
	out := make(MistakeCounts)
	for _, p := range Phases() {
		out[p] = map[MistakeSeverity]int{Inaccuracy: 0, Mistake: 0, Blunder: 0}
	}
	return out
}

func TestCountMistakes_SingleWhiteDrop(t *testing.T) {
	// White moves from an even position into one that is 250 worse.
	records := []EvaluationRecord{{Ply: 1, Score: -250}}
	phases := PhaseBoundaries{OpeningEnd: 0, MiddlegameEnd: 1, Total: 1}
	thresholds := DefaultPolicy().Thresholds

	white := CountMistakes(records, White, phases, thresholds)
	want := zeroCounts()
	want[MiddleGame] = map[MistakeSeverity]int{Inaccuracy: 1, Mistake: 1, Blunder: 1}
	if diff := cmp.Diff(want, white); diff != "" {
		t.Errorf("CountMistakes(White) mismatch (-want +got):\n%s", diff)
	}

	black := CountMistakes(records, Black, phases, thresholds)
	if diff := cmp.Diff(zeroCounts(), black); diff != "" {
		t.Errorf("CountMistakes(Black) mismatch (-want +got):\n%s", diff)
	}
}

func TestCountMistakes_Severities(t *testing.T) {
	thresholds := DefaultPolicy().Thresholds
	phases := PhaseBoundaries{OpeningEnd: 2, MiddlegameEnd: 4, Total: 6}
	records := []EvaluationRecord{
		{Ply: 1, Score: 0},
		{Ply: 2, Score: 60},   // black drops 60: inaccuracy
		{Ply: 3, Score: 60},   // white holds
		{Ply: 4, Score: 200},  // black drops 140: mistake
		{Ply: 5, Score: -100}, // white drops 300: blunder
		{Ply: 6, Score: -100}, // black holds
	}

	white := CountMistakes(records, White, phases, thresholds)
	wantWhite := zeroCounts()
	wantWhite[EndGame] = map[MistakeSeverity]int{Inaccuracy: 1, Mistake: 1, Blunder: 1}
	if diff := cmp.Diff(wantWhite, white); diff != "" {
		t.Errorf("White mismatch (-want +got):\n%s", diff)
	}

	black := CountMistakes(records, Black, phases, thresholds)
	wantBlack := zeroCounts()
	wantBlack[Opening] = map[MistakeSeverity]int{Inaccuracy: 1, Mistake: 0, Blunder: 0}
	wantBlack[MiddleGame] = map[MistakeSeverity]int{Inaccuracy: 1, Mistake: 1, Blunder: 0}
	if diff := cmp.Diff(wantBlack, black); diff != "" {
		t.Errorf("Black mismatch (-want +got):\n%s", diff)
	}
}

func TestCountMistakes_ThresholdIsExclusive(t *testing.T) {
	records := []EvaluationRecord{{Ply: 1, Score: -50}}
	phases := PhaseBoundaries{Total: 1, MiddlegameEnd: 1}

	got := CountMistakes(records, White, phases, DefaultPolicy().Thresholds)
	if got[MiddleGame][Inaccuracy] != 0 {
		t.Errorf("drop of exactly 50 counted as inaccuracy")
	}
}

func TestCountMistakes_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	thresholds := DefaultPolicy().Thresholds

	for round := 0; round < 200; round++ {
		n := rng.IntN(80)
		records := make([]EvaluationRecord, n)
		for i := range records {
			records[i] = EvaluationRecord{Ply: i + 1, Score: rng.IntN(2*MaxScore+1) - MaxScore}
		}
		openingEnd := rng.IntN(n + 1)
		phases := PhaseBoundaries{OpeningEnd: openingEnd, MiddlegameEnd: openingEnd + rng.IntN(n-openingEnd+1), Total: n}

		for _, c := range []Color{White, Black} {
			for phase, counts := range CountMistakes(records, c, phases, thresholds) {
				if counts[Blunder] > counts[Mistake] || counts[Mistake] > counts[Inaccuracy] {
					t.Fatalf("round %d %v %v: counts %v not monotonic", round, c, phase, counts)
				}
				if counts[Blunder] < 0 {
					t.Fatalf("negative count %v", counts)
				}
			}
		}
	}
}

func TestAverageMoveTime(t *testing.T) {
	records := []EvaluationRecord{
		{Ply: 1, Time: 2},
		{Ply: 2, Time: 3},
		{Ply: 3, Time: 4},
		{Ply: 4, Time: 5},
		{Ply: 5, Time: 10},
		{Ply: 6, Time: 7},
	}
	phases := PhaseBoundaries{OpeningEnd: 4, MiddlegameEnd: 6, Total: 6}

	white := AverageMoveTime(records, White, phases, 3)
	wantWhite := map[GamePhase]float64{Opening: 3, MiddleGame: 10, EndGame: 0}
	if diff := cmp.Diff(wantWhite, white); diff != "" {
		t.Errorf("White mismatch (-want +got):\n%s", diff)
	}

	black := AverageMoveTime(records, Black, phases, 3)
	wantBlack := map[GamePhase]float64{Opening: 4, MiddleGame: 7, EndGame: 0}
	if diff := cmp.Diff(wantBlack, black); diff != "" {
		t.Errorf("Black mismatch (-want +got):\n%s", diff)
	}
}

func TestAverageMoveTime_TooFewRecords(t *testing.T) {
	records := []EvaluationRecord{{Ply: 1, Time: 2}, {Ply: 2, Time: 3}}
	got := AverageMoveTime(records, White, PhaseBoundaries{MiddlegameEnd: 2, Total: 2}, 3)
	if got == nil || len(got) != 0 {
		t.Errorf("AverageMoveTime() = %v, want empty map", got)
	}
}

func TestColor(t *testing.T) {
	if White.Other() != Black || Black.Other() != White {
		t.Error("Other() does not swap colors")
	}
	if White.String() != "white" || Black.String() != "black" {
		t.Errorf("String() = %q, %q", White, Black)
	}
}

func TestParseMistakeSeverity(t *testing.T) {
	for _, s := range Severities() {
		got, err := ParseMistakeSeverity(s.String())
		if err != nil || got != s {
			t.Errorf("ParseMistakeSeverity(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseMistakeSeverity("dubious"); err == nil {
		t.Error("ParseMistakeSeverity(dubious) error = nil")
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{"default", func(*Policy) {}, false},
		{"negative material", func(p *Policy) { p.EndgameMaterial = -1 }, true},
		{"negative piece", func(p *Policy) { p.PieceValues.Rook = -4 }, true},
		{"decreasing thresholds", func(p *Policy) { p.Thresholds.Mistake = 300 }, true},
		{"negative threshold", func(p *Policy) { p.Thresholds.Inaccuracy = -1 }, true},
		{"equal thresholds", func(p *Policy) { p.Thresholds = Thresholds{100, 100, 100} }, false},
		{"negative timing", func(p *Policy) { p.MinTimingRecords = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func BenchmarkCountMistakes(b *testing.B) {
	records := make([]EvaluationRecord, 120)
	for i := range records {
		records[i] = EvaluationRecord{Ply: i + 1, Score: (i * 37 % 400) - 200}
	}
	phases := PhaseBoundaries{OpeningEnd: 12, MiddlegameEnd: 80, Total: 120}
	thresholds := DefaultPolicy().Thresholds
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CountMistakes(records, White, phases, thresholds)
	}
}
