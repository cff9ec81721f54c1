package fnvshard

import (
	"testing"

	"github.com/discochess/chessinsight/internal/shard"
)

func TestStrategy_Name(t *testing.T) {
	if got := New().Name(); got != "fnv32" {
		t.Errorf("Name() = %q, want %q", got, "fnv32")
	}
}

func TestStrategy_ShardID_IgnoresMoveCounters(t *testing.T) {
	s := New()
	a := s.ShardID("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", shard.DefaultTotalShards)
	b := s.ShardID("r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 0 40", shard.DefaultTotalShards)
	if a != b {
		t.Errorf("move counters changed shard: %d vs %d", a, b)
	}
	if a < 0 || a >= shard.DefaultTotalShards {
		t.Errorf("ShardID() = %d out of range", a)
	}
}

func TestStrategy_ShardID_Distribution(t *testing.T) {
	s := New()
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
	}

	seen := make(map[int]bool, len(fens))
	for _, f := range fens {
		seen[s.ShardID(f, 256)] = true
	}
	if len(seen) < len(fens)-1 {
		t.Errorf("got %d distinct shards for %d positions", len(seen), len(fens))
	}
}
