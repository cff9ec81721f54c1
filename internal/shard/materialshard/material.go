// Package materialshard shards positions by their material configuration.
//
// Consecutive positions of a game usually share material, so analyzing a
// game touches few shards and benefits from the shard cache.
package materialshard

import (
	"hash/fnv"

	"github.com/discochess/chessinsight/internal/fen"
	"github.com/discochess/chessinsight/internal/shard"
)

// Name is the manifest name of this strategy.
const Name = "material"

// Strategy implements material-based sharding.
type Strategy struct{}

// Ensure Strategy implements shard.Strategy.
var _ shard.Strategy = (*Strategy)(nil)

// New creates a new material-based sharding strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// ShardID reduces the position's material signature modulo totalShards.
// Unparseable FENs are hashed instead.
func (s *Strategy) ShardID(fenStr string, totalShards int) int {
	mat, err := fen.ParseMaterial(fenStr)
	if err != nil {
		return hashFallback(fenStr, totalShards)
	}
	side, _ := fen.SideToMove(fenStr)
	return int(Signature(mat, side == "b") % uint32(totalShards))
}

// Signature packs a material configuration into 19 bits:
//
//	bits 0-2   white queens
//	bits 3-5   black queens
//	bits 6-8   white rooks
//	bits 9-11  black rooks
//	bits 12-14 white minor pieces
//	bits 15-17 black minor pieces
//	bit  18    black to move
//
// Each count saturates at 7. Pawns are ignored.
func Signature(m fen.Material, blackToMove bool) uint32 {
	fields := [...]int{
		m.WhiteQueens, m.BlackQueens,
		m.WhiteRooks, m.BlackRooks,
		m.WhiteBishops + m.WhiteKnights, m.BlackBishops + m.BlackKnights,
	}

	var sig uint32
	for i, n := range fields {
		sig |= uint32(min(n, 7)) << (3 * i)
	}
	if blackToMove {
		sig |= 1 << 18
	}
	return sig
}

func hashFallback(s string, totalShards int) int {
	h := fnv.New32a()
	h.Write([]byte(s))
	return int(h.Sum32() % uint32(totalShards))
}
