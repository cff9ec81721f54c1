package evaldb

import (
	"testing"

	"github.com/discochess/chessinsight/internal/search"
)

func intPtr(n int) *int {
	return &n
}

func TestEval_BestPV(t *testing.T) {
	if got := (&Eval{}).BestPV(); got != nil {
		t.Errorf("BestPV() = %v, want nil", got)
	}

	e := &Eval{PVs: []PV{{Line: "e2e4"}, {Line: "d2d4"}}}
	if got := e.BestPV(); got == nil || got.Line != "e2e4" {
		t.Errorf("BestPV() = %v, want e2e4", got)
	}
}

func TestEval_IsMate(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want bool
	}{
		{"no PVs", Eval{}, false},
		{"not mate", Eval{PVs: []PV{{Centipawns: intPtr(100)}}}, false},
		{"is mate", Eval{PVs: []PV{{Mate: intPtr(3)}}}, true},
		{"mate in second line only", Eval{PVs: []PV{{Centipawns: intPtr(900)}, {Mate: intPtr(5)}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eval.IsMate(); got != tt.want {
				t.Errorf("IsMate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEval_Score(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want string
	}{
		{"no PVs", Eval{}, "?"},
		{"empty PV", Eval{PVs: []PV{{}}}, "?"},
		{"positive", Eval{PVs: []PV{{Centipawns: intPtr(125)}}}, "+1.25"},
		{"negative", Eval{PVs: []PV{{Centipawns: intPtr(-50)}}}, "-0.50"},
		{"small", Eval{PVs: []PV{{Centipawns: intPtr(5)}}}, "+0.05"},
		{"mate", Eval{PVs: []PV{{Mate: intPtr(3)}}}, "#3"},
		{"mated", Eval{PVs: []PV{{Mate: intPtr(-5)}}}, "#-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eval.Score().String(); got != tt.want {
				t.Errorf("Score() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewEval(t *testing.T) {
	rec := &search.Record{
		FEN: "8/8/8/4k3/8/8/4K3/4R3 w - -",
		Evals: []search.Eval{
			{Depth: 20, Knodes: 50, PVs: []search.PV{{CP: intPtr(700), Line: "e1e2"}}},
			{Depth: 36, Knodes: 800, PVs: []search.PV{{Mate: intPtr(12), Line: "e1a1"}}},
		},
	}

	e := newEval(rec)
	if e.Depth != 36 || e.Knodes != 800 {
		t.Errorf("Depth, Knodes = %d, %d, want 36, 800", e.Depth, e.Knodes)
	}
	if !e.IsMate() || e.BestPV().Line != "e1a1" {
		t.Errorf("BestPV() = %+v, want mate line e1a1", e.BestPV())
	}

	empty := newEval(&search.Record{FEN: rec.FEN})
	if empty.BestPV() != nil || empty.Score().Known() {
		t.Errorf("newEval(no evals) = %+v, want no lines", empty)
	}
}
