package agent

import (
	"ataxx/experiments/metrics"
	"ataxx/game"
	"ataxx/searcher"
)

type greedyAgent struct {
	searcher *searcher.Searcher
}

// NewGreedyAgent returns an agent that plays the searcher's best move.
func NewGreedyAgent(s *searcher.Searcher) Agent {
	return greedyAgent{searcher: s}
}

func (a greedyAgent) FindMove(board game.Board, side game.Side) (game.Move, bool, metrics.SearchMetric) {
	move, ok := a.searcher.SelectMove(board, side)
	return move, ok, a.searcher.Metrics()
}
