// Package shard defines how positions are distributed across the shards of
// an evaluation database.
package shard

import "fmt"

// DefaultTotalShards is the shard count used when a database does not say
// otherwise.
const DefaultTotalShards = 1 << 15

// Strategy maps FEN positions to shard IDs.
type Strategy interface {
	// Name identifies the strategy in database manifests.
	Name() string

	// ShardID returns the shard in [0, totalShards) holding fen.
	// Positions differing only in move counters map to the same shard.
	ShardID(fen string, totalShards int) int
}

// Key returns the store key of a shard.
func Key(shardID int) string {
	return fmt.Sprintf("shards/%05d", shardID)
}
