package chessinsight

// Player is one side of a Game. It reads the game's evaluations and phase
// boundaries and never changes them.
type Player struct {
	game  *Game
	color Color
	name  string
	elo   int
}

// Color returns the player's color.
func (p *Player) Color() Color { return p.color }

// Name returns the name from the game headers.
func (p *Player) Name() string { return p.name }

// Elo returns the rating at the time of the game, or 0 when unrated.
func (p *Player) Elo() int { return p.elo }

// AvgMoveTime returns the mean seconds per move in each phase. It is empty
// when the game is too short to tell.
func (p *Player) AvgMoveTime() map[GamePhase]float64 {
	g := p.game
	return AverageMoveTime(g.evaluations, p.color, g.phases, g.policy.MinTimingRecords)
}

// Accuracy returns the player's mistake counts per phase and severity.
func (p *Player) Accuracy() MistakeCounts {
	g := p.game
	return CountMistakes(g.evaluations, p.color, g.phases, g.policy.Thresholds)
}

// AsMap renders the player with lowercase enum keys and floats rounded to
// four digits.
func (p *Player) AsMap() map[string]any {
	times := make(map[string]any)
	for phase, secs := range p.AvgMoveTime() {
		times[phase.String()] = roundTo(secs, flattenPrecision)
	}

	accuracy := make(map[string]any)
	for phase, counts := range p.Accuracy() {
		row := make(map[string]any, len(counts))
		for sev, n := range counts {
			row[sev.String()] = n
		}
		accuracy[phase.String()] = row
	}

	return map[string]any{
		"color":         p.color.String(),
		"name":          p.name,
		"elo":           p.elo,
		"avg_move_time": times,
		"accuracy":      accuracy,
	}
}
