// Package fnvshard shards positions by an FNV-1a hash of the normalized FEN.
//
// Distribution is uniform but consecutive positions of a game scatter over
// many shards.
package fnvshard

import (
	"hash/fnv"

	"github.com/discochess/chessinsight/internal/fen"
	"github.com/discochess/chessinsight/internal/shard"
)

// Name is the manifest name of this strategy.
const Name = "fnv32"

// Strategy implements FNV-1a hash-based sharding.
type Strategy struct{}

// Ensure Strategy implements shard.Strategy.
var _ shard.Strategy = (*Strategy)(nil)

// New creates a new FNV-based sharding strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return Name
}

// ShardID hashes the normalized FEN. Invalid FENs are hashed verbatim.
func (s *Strategy) ShardID(fenStr string, totalShards int) int {
	normalized, err := fen.Normalize(fenStr)
	if err != nil {
		normalized = fenStr
	}
	h := fnv.New32a()
	h.Write([]byte(normalized))
	return int(h.Sum32() % uint32(totalShards))
}
