// Package pgnstream splits multi-game PGN streams into per-game texts.
package pgnstream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrStop can be returned by a Split callback to end the scan early without
// reporting an error.
var ErrStop = errors.New("pgnstream: stop")

// maxLineBytes bounds a single PGN line. Lichess exports put a whole
// game's movetext on one line.
const maxLineBytes = 4 << 20

// Game is one game of a stream.
type Game struct {
	// Index is the zero-based position of the game in the stream.
	Index int

	// Text is the game's tag section and movetext.
	Text string
}

// Split calls fn for every game in r, in order. A game starts at a tag line
// ("[Name ...]") that follows movetext or the start of the stream. Text
// before the first tag line is ignored.
func Split(r io.Reader, fn func(Game) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		text     strings.Builder
		index    int
		inGame   bool
		sawMoves bool
	)

	flush := func() error {
		if text.Len() == 0 {
			return nil
		}
		g := Game{Index: index, Text: text.String()}
		text.Reset()
		index++
		return fn(g)
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		isTag := strings.HasPrefix(trimmed, "[")

		if isTag && sawMoves {
			if err := flush(); err != nil {
				return stopped(err)
			}
			sawMoves = false
		}
		if isTag {
			inGame = true
		}
		if !inGame {
			continue
		}
		if !isTag && trimmed != "" {
			sawMoves = true
		}

		text.WriteString(line)
		text.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading PGN: %w", err)
	}

	return stopped(flush())
}

// Games returns every game in r.
func Games(r io.Reader) ([]Game, error) {
	var games []Game
	err := Split(r, func(g Game) error {
		games = append(games, g)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return games, nil
}

func stopped(err error) error {
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}
