package game

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange     = errors.New("position out of range")
	ErrMalformedBoard = errors.New("malformed board")
)

// Side is one of the two players. The zero value belongs to nobody.
type Side int8

const (
	NoSide Side = iota
	First       // 'R', moves first
	Second      // 'B'
)

func (s Side) Opponent() Side {
	switch s {
	case First:
		return Second
	case Second:
		return First
	default:
		return NoSide
	}
}

// Symbol returns the wire character of the side.
func (s Side) Symbol() byte {
	switch s {
	case First:
		return 'R'
	case Second:
		return 'B'
	default:
		return '?'
	}
}

func (s Side) String() string {
	if s == NoSide {
		return "none"
	}
	return string(s.Symbol())
}

// Cell is the content of a single square.
type Cell uint8

const (
	Empty Cell = iota
	Blocked // '#', occupied by neither side
	cellFirst
	cellSecond
)

// Occupied returns the cell holding a piece of side s.
func Occupied(s Side) Cell {
	switch s {
	case First:
		return cellFirst
	case Second:
		return cellSecond
	default:
		panic(fmt.Sprintf("no cell for side %d", s))
	}
}

// Owner returns the side whose piece sits in the cell, NoSide otherwise.
func (c Cell) Owner() Side {
	switch c {
	case cellFirst:
		return First
	case cellSecond:
		return Second
	default:
		return NoSide
	}
}

func (c Cell) Is(s Side) bool {
	return s != NoSide && c.Owner() == s
}

func (c Cell) Symbol() byte {
	switch c {
	case Empty:
		return '.'
	case Blocked:
		return '#'
	default:
		return c.Owner().Symbol()
	}
}

func cellFromSymbol(b byte) (Cell, bool) {
	switch b {
	case '.':
		return Empty, true
	case '#':
		return Blocked, true
	case 'R':
		return cellFirst, true
	case 'B':
		return cellSecond, true
	}
	return Empty, false
}

// SideFromSymbol maps 'R' and 'B' to their sides.
func SideFromSymbol(b byte) (Side, bool) {
	c, ok := cellFromSymbol(b)
	if !ok || c.Owner() == NoSide {
		return NoSide, false
	}
	return c.Owner(), true
}
