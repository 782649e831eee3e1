package searcher

import "ataxx/game"

// bestGreedy returns the move of side with the highest greedy value on b.
// Ties keep the move generated first.
func bestGreedy(b game.Board, side game.Side) (game.Move, int, bool) {
	var best game.Move
	bestValue := 0
	found := false
	for _, m := range game.LegalMoves(b, side) {
		v := game.GreedyValue(b, m, side)
		if !found || v > bestValue {
			best, bestValue, found = m, v, true
		}
	}
	return best, bestValue, found
}

// Rollout scores candidate m for side: the candidate's greedy value, then each side in turn
// plays its own greedy-best move, mover's gains added and opponent's subtracted, for
// s.depth plies in total. A side without moves passes and contributes 0.
func (s *Searcher) Rollout(b game.Board, m game.Move, side game.Side) int {
	score := game.GreedyValue(b, m, side)
	board := game.Apply(b, m, side)

	mover := side.Opponent()
	sign := -1
	for ply := 2; ply <= s.depth; ply++ {
		s.metrics.AddPly()
		reply, value, ok := bestGreedy(board, mover)
		if ok {
			score += sign * value
			if ply < s.depth {
				board = game.Apply(board, reply, mover)
			}
		}
		mover = mover.Opponent()
		sign = -sign
	}
	return score
}
