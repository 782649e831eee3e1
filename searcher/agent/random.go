package agent

import (
	"time"

	"ataxx/experiments/metrics"
	"ataxx/game"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns a sparring agent that plays a uniformly random legal move.
// The same seed replays the same game against a deterministic opponent.
func NewRandomAgent(seed uint64) Agent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) FindMove(board game.Board, side game.Side) (game.Move, bool, metrics.SearchMetric) {
	start := time.Now()
	moves := game.LegalMoves(board, side)
	if len(moves) == 0 {
		return game.Move{}, false, metrics.SearchMetric{Duration: time.Since(start), Passed: true}
	}
	move := moves[a.rng.Intn(len(moves))]
	return move, true, metrics.SearchMetric{Duration: time.Since(start), Candidates: len(moves)}
}
