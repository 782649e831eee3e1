package game

import (
	"encoding/binary"
	"hash/fnv"
)

type StateHash uint64

// State is a board together with the side to move. Like Board it is a value:
// Play and Pass return a new State.
type State struct {
	Board  Board
	ToMove Side
}

// NewState returns the standard opening: First in the top-left and bottom-right corners,
// Second in the other two, First to move.
func NewState() State {
	var b Board
	b[0][0] = Occupied(First)
	b[Size-1][Size-1] = Occupied(First)
	b[0][Size-1] = Occupied(Second)
	b[Size-1][0] = Occupied(Second)
	return State{Board: b, ToMove: First}
}

func (s State) LegalMoves() []Move {
	return LegalMoves(s.Board, s.ToMove)
}

func (s State) Play(m Move) State {
	return State{Board: Apply(s.Board, m, s.ToMove), ToMove: s.ToMove.Opponent()}
}

func (s State) Pass() State {
	return State{Board: s.Board, ToMove: s.ToMove.Opponent()}
}

// IsOver reports whether the game has ended: no empty cell left, a side wiped out,
// or neither side able to move.
func (s State) IsOver() bool {
	if s.Board.EmptyCount() == 0 {
		return true
	}
	if s.Board.Count(First) == 0 || s.Board.Count(Second) == 0 {
		return true
	}
	return !HasMoves(s.Board, First) && !HasMoves(s.Board, Second)
}

func (s State) Scores() map[Side]int {
	return map[Side]int{
		First:  s.Board.Count(First),
		Second: s.Board.Count(Second),
	}
}

// Winner returns the side with more pieces, NoSide on a tie.
func (s State) Winner() Side {
	first, second := s.Board.Count(First), s.Board.Count(Second)
	switch {
	case first > second:
		return First
	case second > first:
		return Second
	default:
		return NoSide
	}
}

func (s State) Hash() StateHash {
	h := fnv.New64a()
	for r := range s.Board {
		for c := range s.Board[r] {
			h.Write([]byte{byte(s.Board[r][c])})
		}
	}
	var turn [2]byte
	binary.LittleEndian.PutUint16(turn[:], uint16(s.ToMove))
	h.Write(turn[:])
	return StateHash(h.Sum64())
}
