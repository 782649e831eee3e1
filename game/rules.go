package game

// IsLegal checks a from->to step for side on b and returns its kind.
func IsLegal(b Board, from, to Position, side Side) (MoveKind, bool) {
	if !from.InBounds() || !to.InBounds() {
		return Clone, false
	}
	if !b.At(from).Is(side) || b.At(to) != Empty {
		return Clone, false
	}
	return Classify(from, to)
}

// LegalMoves enumerates every legal move of side, row-major over the origin
// and then row-major over the destination offset. An empty result means side must pass.
func LegalMoves(b Board, side Side) []Move {
	var moves []Move
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			from := Position{Row: r, Col: c}
			if !b.At(from).Is(side) {
				continue
			}
			for dr := -2; dr <= 2; dr++ {
				for dc := -2; dc <= 2; dc++ {
					to := from.Offset(dr, dc)
					if kind, ok := IsLegal(b, from, to, side); ok {
						moves = append(moves, Move{From: from, To: to, Kind: kind})
					}
				}
			}
		}
	}
	return moves
}

// HasMoves reports whether side has at least one legal move.
func HasMoves(b Board, side Side) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			from := Position{Row: r, Col: c}
			if !b.At(from).Is(side) {
				continue
			}
			for dr := -2; dr <= 2; dr++ {
				for dc := -2; dc <= 2; dc++ {
					if _, ok := IsLegal(b, from, from.Offset(dr, dc), side); ok {
						return true
					}
				}
			}
		}
	}
	return false
}

// Apply returns the board after side plays m. The piece lands on m.To (the origin is
// emptied for a jump), then every opponent piece adjacent to m.To turns to side.
// Flips never cascade.
func Apply(b Board, m Move, side Side) Board {
	next := b
	if m.Kind == Jump {
		next[m.From.Row][m.From.Col] = Empty
	}
	next[m.To.Row][m.To.Col] = Occupied(side)

	opp := side.Opponent()
	for _, n := range b.Neighbors(m.To) {
		if b.At(n).Is(opp) {
			next[n.Row][n.Col] = Occupied(side)
		}
	}
	return next
}
