package agent

import (
	"ataxx/experiments/metrics"
	"ataxx/game"
)

type Agent interface {
	// FindMove returns the move to play for side on board, false when side must pass,
	// and performance metrics (if collected) from the search
	FindMove(board game.Board, side game.Side) (game.Move, bool, metrics.SearchMetric)
}
