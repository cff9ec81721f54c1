// Package opening classifies chess games against an index of known openings.
//
// The index groups entries by ply depth. Classification walks a game's
// position history from the deepest candidate depth down to the starting
// position and returns the first entry whose piece placement matches.
package opening

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/discochess/chessinsight/internal/fen"
)

// ErrInvalidEntry indicates an opening entry could not be indexed.
var ErrInvalidEntry = errors.New("opening: invalid entry")

// Entry is a single known opening position.
type Entry struct {
	// Depth is the number of plies played to reach the position.
	Depth int

	// Key is the piece placement field of the position.
	Key string

	// Name is the display name, e.g. "Sicilian Defense: Najdorf Variation".
	Name string

	// ECO is the optional Encyclopaedia of Chess Openings code.
	ECO string
}

// Match is the result of classifying a game.
// The zero Match means no opening was recognized.
type Match struct {
	Name string
	ECO  string

	// Ply is the depth at which the opening was recognized.
	// It doubles as the end of the opening phase.
	Ply int
}

// Found reports whether the match names an opening.
func (m Match) Found() bool {
	return m.Name != ""
}

// Index is an immutable collection of entries grouped by depth.
// An Index is safe for concurrent use.
type Index struct {
	buckets  map[int][]Entry
	maxDepth int
	size     int
}

// NewIndex builds an index from entries.
//
// Keys may be full FENs; only the piece placement is kept. Entries sharing a
// depth are ordered by name, then ECO code, so classification ties resolve
// deterministically regardless of input order.
func NewIndex(entries []Entry) (*Index, error) {
	idx := &Index{buckets: make(map[int][]Entry)}

	for i, e := range entries {
		if e.Depth < 0 {
			return nil, fmt.Errorf("%w: entry %d has negative depth %d", ErrInvalidEntry, i, e.Depth)
		}
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidEntry, i)
		}
		key, err := fen.Placement(e.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d (%s): %v", ErrInvalidEntry, i, e.Name, err)
		}
		e.Key = key
		idx.buckets[e.Depth] = append(idx.buckets[e.Depth], e)
		if e.Depth > idx.maxDepth {
			idx.maxDepth = e.Depth
		}
		idx.size++
	}

	for _, bucket := range idx.buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].Name != bucket[j].Name {
				return bucket[i].Name < bucket[j].Name
			}
			return bucket[i].ECO < bucket[j].ECO
		})
	}

	return idx, nil
}

// MaxDepth returns the largest depth present in the index.
func (x *Index) MaxDepth() int {
	if x == nil {
		return 0
	}
	return x.maxDepth
}

// Len returns the number of entries.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return x.size
}

// Entries returns a copy of the entries registered at depth, in match order.
func (x *Index) Entries(depth int) []Entry {
	if x == nil {
		return nil
	}
	return append([]Entry(nil), x.buckets[depth]...)
}

// Classify finds the deepest known opening in a game.
//
// history[d] is the position (FEN or bare placement) after d plies, so
// history[0] is the starting position. Depths are tried from
// min(len(history)-1, MaxDepth) down to 0. Unparseable positions are skipped.
func (x *Index) Classify(history []string) Match {
	if x == nil || len(history) == 0 {
		return Match{}
	}

	depth := min(len(history)-1, x.maxDepth)
	for d := depth; d >= 0; d-- {
		bucket := x.buckets[d]
		if len(bucket) == 0 {
			continue
		}
		key, err := fen.Placement(history[d])
		if err != nil {
			continue
		}
		for _, e := range bucket {
			if e.Key == key {
				return Match{Name: e.Name, ECO: e.ECO, Ply: d}
			}
		}
	}

	return Match{}
}
