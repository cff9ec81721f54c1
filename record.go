package chessinsight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// MoveRecord is one ply of a game record.
type MoveRecord struct {
	// Ply is the 1-based half-move number.
	Ply int

	// Move is the move in standard algebraic notation.
	Move string

	// Clock is the mover's remaining time in seconds after the move, when
	// recorded.
	Clock *float64
}

// Record is a parsed game: headers, moves and the positions they lead to.
type Record struct {
	Headers map[string]string
	Moves   []MoveRecord

	// Positions holds the FEN before the first move followed by the FEN
	// after each move, so len(Positions) == len(Moves)+1. When empty, the
	// positions are computed by replaying Moves from the initial position.
	Positions []string

	// FinalComment is the comment after the last move, if any.
	FinalComment string
}

// Clocks returns the clock reading of every move.
func (r Record) Clocks() []*float64 {
	clocks := make([]*float64, len(r.Moves))
	for i, m := range r.Moves {
		clocks[i] = m.Clock
	}
	return clocks
}

// Replay plays moves from the initial position and returns the FEN before
// the first move and after each move.
func Replay(moves []MoveRecord) ([]string, error) {
	game := chess.NewGame()
	positions := make([]string, 0, len(moves)+1)
	positions = append(positions, game.Position().String())
	for _, m := range moves {
		if err := game.MoveStr(m.Move); err != nil {
			return nil, fmt.Errorf("%w: ply %d %q: %v", ErrInvalidRecord, m.Ply, m.Move, err)
		}
		positions = append(positions, game.Position().String())
	}
	return positions, nil
}

// ParsePGN parses the first game of a PGN text, including "[%clk h:mm:ss]"
// clock annotations.
func ParsePGN(text string) (Record, error) {
	pgn, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	game := chess.NewGame(pgn)

	headers := make(map[string]string)
	for _, tp := range game.TagPairs() {
		headers[tp.Key] = tp.Value
	}

	moves := game.Moves()
	positions := game.Positions()
	comments := game.Comments()

	rec := Record{
		Headers:   headers,
		Moves:     make([]MoveRecord, len(moves)),
		Positions: make([]string, len(positions)),
	}
	var notation chess.AlgebraicNotation
	for i, mv := range moves {
		rec.Moves[i] = MoveRecord{Ply: i + 1, Move: notation.Encode(positions[i], mv)}
		if i < len(comments) {
			rec.Moves[i].Clock = clockOf(comments[i])
		}
	}
	for i, pos := range positions {
		rec.Positions[i] = pos.String()
	}
	if n := len(moves); n > 0 && n <= len(comments) {
		rec.FinalComment = strings.TrimSpace(strings.Join(comments[n-1], " "))
	}
	return rec, nil
}

var clockPattern = regexp.MustCompile(`\[%clk\s+(\d+):(\d{1,2}):(\d{1,2}(?:\.\d+)?)\]`)

// clockOf returns the first clock reading among a move's comments.
func clockOf(comments []string) *float64 {
	for _, c := range comments {
		if secs, ok := parseClock(c); ok {
			return &secs
		}
	}
	return nil
}

// parseClock extracts a "[%clk h:mm:ss(.f)]" annotation in seconds.
func parseClock(comment string) (float64, bool) {
	m := clockPattern.FindStringSubmatch(comment)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(h*3600+mins*60) + sec, true
}
