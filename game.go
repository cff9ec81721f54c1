package chessinsight

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/discochess/chessinsight/opening"
)

// Game is an analyzed game. It is immutable once built and safe for
// concurrent use.
type Game struct {
	headers     map[string]string
	moves       []MoveRecord
	meta        metadata
	opening     opening.Match
	phases      PhaseBoundaries
	evaluations []EvaluationRecord
	policy      Policy

	white *Player
	black *Player
}

func newGame(rec Record, meta metadata, match opening.Match, phases PhaseBoundaries, evals []EvaluationRecord, policy Policy) *Game {
	g := &Game{
		headers:     maps.Clone(rec.Headers),
		moves:       slices.Clone(rec.Moves),
		meta:        meta,
		opening:     match,
		phases:      phases,
		evaluations: evals,
		policy:      policy,
	}
	for i := range g.moves {
		g.moves[i].Ply = i + 1
	}
	g.white = &Player{game: g, color: White, name: meta.white, elo: meta.whiteElo}
	g.black = &Player{game: g, color: Black, name: meta.black, elo: meta.blackElo}
	return g
}

// Header returns a header value, or "" when absent.
func (g *Game) Header(name string) string {
	return g.headers[name]
}

// Headers returns a copy of every header.
func (g *Game) Headers() map[string]string {
	return maps.Clone(g.headers)
}

// Moves returns a copy of the move list.
func (g *Game) Moves() []MoveRecord {
	return slices.Clone(g.moves)
}

// Plies returns the number of half-moves played.
func (g *Game) Plies() int {
	return len(g.moves)
}

// Host returns the server the game was played on.
func (g *Game) Host() string { return g.meta.host }

// URL returns the game's address on its host.
func (g *Game) URL() string { return g.meta.url }

// Date returns the UTC start time, or the zero time when unknown.
func (g *Game) Date() time.Time { return g.meta.date }

// TimeControl returns the game's time control.
func (g *Game) TimeControl() TimeControl { return g.meta.timeControl }

// TimeClass returns the speed category.
func (g *Game) TimeClass() TimeClass { return g.meta.timeControl.Class() }

// Result returns the recorded outcome.
func (g *Game) Result() Result { return g.meta.result }

// EndReason returns why the game ended.
func (g *Game) EndReason() EndReason { return g.meta.endReason }

// Opening returns the recognized opening; ok is false when none matched.
func (g *Game) Opening() (m opening.Match, ok bool) {
	return g.opening, g.opening.Found()
}

// OpeningShort returns the opening family, the name up to the first colon.
// It is "" when no opening matched.
func (g *Game) OpeningShort() string {
	family, _, _ := strings.Cut(g.opening.Name, ":")
	return strings.TrimSpace(family)
}

// Phases returns the phase boundaries.
func (g *Game) Phases() PhaseBoundaries { return g.phases }

// Evaluations returns a copy of the per-ply evaluations.
func (g *Game) Evaluations() []EvaluationRecord {
	return slices.Clone(g.evaluations)
}

// White returns the white player.
func (g *Game) White() *Player { return g.white }

// Black returns the black player.
func (g *Game) Black() *Player { return g.black }

// Player returns the player of color c.
func (g *Game) Player(c Color) *Player {
	if c == White {
		return g.white
	}
	return g.black
}

// Opponent returns the other player of p.
func (g *Game) Opponent(p *Player) *Player {
	return g.Player(p.color.Other())
}

// PlayerByName finds the player whose header name contains username,
// ignoring case. White is checked first.
func (g *Game) PlayerByName(username string) (*Player, error) {
	needle := strings.ToLower(strings.TrimSpace(username))
	if needle == "" {
		return nil, fmt.Errorf("%w: empty username", ErrUnknownPlayer)
	}
	for _, p := range []*Player{g.white, g.black} {
		if strings.Contains(strings.ToLower(p.name), needle) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, username)
}

// AsMap renders the game with both players keyed by color.
func (g *Game) AsMap() map[string]any {
	m := g.summary()
	m["white"] = g.white.AsMap()
	m["black"] = g.black.AsMap()
	return m
}

func (g *Game) summary() map[string]any {
	var openingName, eco any
	if g.opening.Found() {
		openingName = g.opening.Name
		eco = g.opening.ECO
	}
	date := ""
	if !g.meta.date.IsZero() {
		date = g.meta.date.Format(time.DateTime)
	}

	return map[string]any{
		"host":          g.meta.host,
		"url":           g.meta.url,
		"date":          date,
		"time_control":  g.meta.timeControl.String(),
		"time_class":    string(g.TimeClass()),
		"result":        g.meta.result.String(),
		"end_reason":    g.meta.endReason.String(),
		"opening":       openingName,
		"opening_short": g.OpeningShort(),
		"eco":           eco,
		"plies":         len(g.moves),
		"phases": map[string]any{
			Opening.String():    g.phases.OpeningEnd,
			MiddleGame.String(): g.phases.MiddlegameEnd,
			EndGame.String():    g.phases.Total,
		},
	}
}

// Perspective is a game seen from one player's side.
type Perspective struct {
	Game     *Game
	Player   *Player
	Username string
}

// PerspectiveOf returns the game from the side of username.
func (g *Game) PerspectiveOf(username string) (Perspective, error) {
	p, err := g.PlayerByName(username)
	if err != nil {
		return Perspective{}, err
	}
	return Perspective{Game: g, Player: p, Username: username}, nil
}

// AsMap renders the game with "player" and "opponent" instead of colors.
func (v Perspective) AsMap() map[string]any {
	m := v.Game.summary()
	m["username"] = v.Username
	m["player_color"] = v.Player.color.String()
	m["player"] = v.Player.AsMap()
	m["opponent"] = v.Game.Opponent(v.Player).AsMap()
	return m
}
