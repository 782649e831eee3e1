package game

// GreedyValue is the immediate material gain of side playing m on b.
func GreedyValue(b Board, m Move, side Side) int {
	return Apply(b, m, side).Count(side) - b.Count(side)
}

// FriendCount counts the pieces of side around p.
func FriendCount(b Board, p Position, side Side) int {
	count := 0
	for _, n := range b.Neighbors(p) {
		if b.At(n).Is(side) {
			count++
		}
	}
	return count
}

// Material returns the piece difference between side and its opponent.
func Material(b Board, side Side) int {
	return b.Count(side) - b.Count(side.Opponent())
}
