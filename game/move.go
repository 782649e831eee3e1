package game

import "fmt"

type MoveKind int8

const (
	Clone MoveKind = iota // Chebyshev distance 1, origin keeps its piece
	Jump                  // Chebyshev distance 2, origin is vacated
)

func (k MoveKind) String() string {
	if k == Jump {
		return "jump"
	}
	return "clone"
}

// Move represents a clone or jump of one piece.
type Move struct {
	From Position
	To   Position
	Kind MoveKind
}

// Classify returns the kind of a from->to step, and false for distances other than 1 or 2.
func Classify(from, to Position) (MoveKind, bool) {
	switch Distance(from, to) {
	case 1:
		return Clone, true
	case 2:
		return Jump, true
	default:
		return Clone, false
	}
}

// OneBased returns the wire coordinates (sx, sy, tx, ty) of the move.
func (m Move) OneBased() (sx, sy, tx, ty int) {
	return m.From.Row + 1, m.From.Col + 1, m.To.Row + 1, m.To.Col + 1
}

// MoveFromOneBased builds a move from wire coordinates. It fails for
// off-board coordinates and for steps that are neither clone nor jump.
func MoveFromOneBased(sx, sy, tx, ty int) (Move, bool) {
	from := Position{Row: sx - 1, Col: sy - 1}
	to := Position{Row: tx - 1, Col: ty - 1}
	if !from.InBounds() || !to.InBounds() {
		return Move{}, false
	}
	kind, ok := Classify(from, to)
	if !ok {
		return Move{}, false
	}
	return Move{From: from, To: to, Kind: kind}, true
}

func (m Move) String() string {
	return fmt.Sprintf("%s %v->%v", m.Kind, m.From, m.To)
}
