package searcher

import "ataxx/game"

// Class ranks the risk of a move; lower is better.
type Class int

const (
	SafeJump Class = iota
	CloneMove
	UnsafeJump
)

func (c Class) String() string {
	switch c {
	case SafeJump:
		return "safe-jump"
	case CloneMove:
		return "clone"
	default:
		return "unsafe-jump"
	}
}

// IsSafeJump reports whether, after side plays the jump m, no opponent piece can clone or
// jump into the vacated origin. Clones are never classified as safe jumps.
func IsSafeJump(b game.Board, m game.Move, side game.Side) bool {
	if m.Kind != game.Jump {
		return false
	}
	after := game.Apply(b, m, side)
	opp := side.Opponent()
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			from := game.Position{Row: r, Col: c}
			if !after.At(from).Is(opp) {
				continue
			}
			if _, ok := game.IsLegal(after, from, m.From, opp); ok {
				return false
			}
		}
	}
	return true
}

func Classify(b game.Board, m game.Move, side game.Side) Class {
	if m.Kind == game.Clone {
		return CloneMove
	}
	if IsSafeJump(b, m, side) {
		return SafeJump
	}
	return UnsafeJump
}

// FriendBonus counts the pieces of side around p on the board after the move,
// plus the corner or edge bonus of p.
func (s *Searcher) FriendBonus(after game.Board, p game.Position, side game.Side) int {
	return game.FriendCount(after, p, side) + s.positionBonus(p)
}

func (s *Searcher) positionBonus(p game.Position) int {
	edges := 0
	if p.Row == 0 || p.Row == game.Size-1 {
		edges++
	}
	if p.Col == 0 || p.Col == game.Size-1 {
		edges++
	}
	switch edges {
	case 2:
		return s.cornerBonus
	case 1:
		return s.edgeBonus
	default:
		return 0
	}
}
