package chessinsight

import "testing"

func floatPtr(f float64) *float64 { return &f }

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name     string
		score    Score
		ply      int
		previous int
		want     int
	}{
		{"centipawns", CP(35), 1, 0, 35},
		{"negative centipawns", CP(-120), 2, 0, -120},
		{"clamped high", CP(2500), 3, 0, MaxScore},
		{"clamped low", CP(-1001), 4, 0, -MaxScore},
		{"boundary", CP(1000), 5, 0, 1000},
		{"white mates", MateIn(3), 6, 0, MaxScore},
		{"black mates", MateIn(-12), 7, 0, -MaxScore},
		{"mated after white move", MateIn(0), 9, 0, MaxScore},
		{"mated after black move", MateIn(0), 10, 0, -MaxScore},
		{"unknown repeats previous", Score{}, 11, -40, -40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeScore(tt.score, tt.ply, tt.previous); got != tt.want {
				t.Errorf("NormalizeScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizeScore_Bounded(t *testing.T) {
	for cp := -5000; cp <= 5000; cp += 7 {
		got := NormalizeScore(CP(cp), 1, 0)
		if got > MaxScore || got < -MaxScore {
			t.Fatalf("NormalizeScore(CP(%d)) = %d, out of bounds", cp, got)
		}
	}
	for n := -50; n <= 50; n++ {
		got := NormalizeScore(MateIn(n), 1, 0)
		if got != MaxScore && got != -MaxScore {
			t.Fatalf("NormalizeScore(MateIn(%d)) = %d, want ±%d", n, got, MaxScore)
		}
	}
}

func TestNormalizeEvaluations(t *testing.T) {
	tc := TimeControl{Base: 180, Increment: 2}
	scores := []Score{CP(30), {}, MateIn(-2), CP(-400)}
	clocks := []*float64{floatPtr(178), floatPtr(175), nil, floatPtr(170.5)}

	got := NormalizeEvaluations(scores, clocks, tc)

	want := []EvaluationRecord{
		{Ply: 1, Score: 30, Time: 4},
		{Ply: 2, Score: 30, Time: 7},
		{Ply: 3, Score: -1000, Time: 0},
		{Ply: 4, Score: -400, Time: 6.5},
	}
	if len(got) != len(want) {
		t.Fatalf("NormalizeEvaluations() returned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNormalizeEvaluations_NoScores(t *testing.T) {
	clocks := []*float64{floatPtr(60), floatPtr(60), floatPtr(58.25)}
	got := NormalizeEvaluations(nil, clocks, TimeControl{Base: 60})

	if len(got) != 3 {
		t.Fatalf("NormalizeEvaluations() returned %d records, want 3", len(got))
	}
	for i, r := range got {
		if r.Score != 0 {
			t.Errorf("record %d score = %d, want 0", i, r.Score)
		}
	}
	if got[2].Time != 1.75 {
		t.Errorf("record 2 time = %v, want 1.75", got[2].Time)
	}
}

func TestNormalizeEvaluations_NegativeTimeClamped(t *testing.T) {
	// A clock that goes up by more than the increment.
	got := NormalizeEvaluations(nil, []*float64{floatPtr(200)}, TimeControl{Base: 180, Increment: 1})
	if got[0].Time != 0 {
		t.Errorf("Time = %v, want 0", got[0].Time)
	}
}

func TestScore_String(t *testing.T) {
	tests := []struct {
		score Score
		want  string
	}{
		{CP(125), "+1.25"},
		{CP(-50), "-0.50"},
		{CP(7), "+0.07"},
		{MateIn(3), "#3"},
		{MateIn(-5), "#-5"},
		{Score{}, "?"},
	}

	for _, tt := range tests {
		if got := tt.score.String(); got != tt.want {
			t.Errorf("Score.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseTimeControl(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeControl
		wantErr bool
	}{
		{"600+5", TimeControl{Base: 600, Increment: 5}, false},
		{"180", TimeControl{Base: 180}, false},
		{"1/86400", TimeControl{Base: 86400}, false},
		{"", TimeControl{}, true},
		{"-", TimeControl{}, true},
		{"60+1+1", TimeControl{}, true},
		{"abc+1", TimeControl{}, true},
		{"60+-1", TimeControl{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeControl(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeControl(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTimeControl(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeControl_Class(t *testing.T) {
	tests := []struct {
		base float64
		want TimeClass
	}{
		{60, Bullet},
		{179, Bullet},
		{180, Blitz},
		{599, Blitz},
		{600, Rapid},
		{1800, Classical},
	}

	for _, tt := range tests {
		if got := (TimeControl{Base: tt.base}).Class(); got != tt.want {
			t.Errorf("Class(%v) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestTimeControl_String(t *testing.T) {
	if got := (TimeControl{Base: 600, Increment: 5}).String(); got != "600+5" {
		t.Errorf("String() = %q, want 600+5", got)
	}
	if got := (TimeControl{Base: 0.5}).String(); got != "0.5+0" {
		t.Errorf("String() = %q, want 0.5+0", got)
	}
}
