// Package search finds positions in sorted JSONL evaluation shards.
package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/discochess/chessinsight/internal/fen"
)

// ErrNotFound indicates the position is not in the shard.
var ErrNotFound = errors.New("search: position not found")

// Record is one line of a shard, in the lichess evaluation export format.
type Record struct {
	FEN   string `json:"fen"`
	Evals []Eval `json:"evals"`
}

// Eval is one engine analysis of a position.
type Eval struct {
	PVs    []PV `json:"pvs"`
	Knodes int  `json:"knodes"`
	Depth  int  `json:"depth"`
}

// PV is a principal variation. Exactly one of CP and Mate is set.
type PV struct {
	CP   *int   `json:"cp,omitempty"`
	Mate *int   `json:"mate,omitempty"`
	Line string `json:"line"`
}

// Best returns the first PV of the deepest evaluation, or nil.
func (r *Record) Best() (*Eval, *PV) {
	var best *Eval
	for i := range r.Evals {
		if best == nil || r.Evals[i].Depth > best.Depth {
			best = &r.Evals[i]
		}
	}
	if best == nil || len(best.PVs) == 0 {
		return best, nil
	}
	return best, &best.PVs[0]
}

// Search finds fen in sorted JSONL shard data. The target is normalized
// (move counters dropped) before comparison, matching how shards are built.
func Search(data []byte, target string) (*Record, error) {
	if normalized, err := fen.Normalize(target); err == nil {
		target = normalized
	}

	lines := Lines(data)
	idx := sort.Search(len(lines), func(i int) bool {
		return ExtractFEN(lines[i]) >= target
	})
	if idx >= len(lines) || ExtractFEN(lines[idx]) != target {
		return nil, ErrNotFound
	}

	var record Record
	if err := json.Unmarshal(lines[idx], &record); err != nil {
		return nil, fmt.Errorf("parsing eval record: %w", err)
	}
	return &record, nil
}

// Lines splits data into non-empty lines.
func Lines(data []byte) [][]byte {
	lines := make([][]byte, 0, bytes.Count(data, []byte{'\n'})+1)
	for len(data) > 0 {
		line, rest, _ := bytes.Cut(data, []byte{'\n'})
		if len(line) > 0 {
			lines = append(lines, line)
		}
		data = rest
	}
	return lines
}

// ExtractFEN returns the "fen" field of a JSON line without decoding the
// whole line. It returns "" when the field is missing.
func ExtractFEN(line []byte) string {
	const prefix = `"fen":"`
	idx := bytes.Index(line, []byte(prefix))
	if idx < 0 {
		return ""
	}

	start := idx + len(prefix)
	end := bytes.IndexByte(line[start:], '"')
	if end < 0 {
		return ""
	}
	return string(line[start : start+end])
}
