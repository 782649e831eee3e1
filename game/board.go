package game

import (
	"fmt"
	"strings"

	"ataxx/meta"
	"ataxx/utils"
)

const Size = meta.BOARD_SIZE

// Position is a 0-based (row, col) coordinate.
type Position struct {
	Row int
	Col int
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

func (p Position) Offset(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Less orders positions row-major.
func (p Position) Less(o Position) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Col < o.Col)
}

// Distance returns the Chebyshev distance between two positions.
func Distance(a, b Position) int {
	return max(utils.Abs(a.Row-b.Row), utils.Abs(a.Col-b.Col))
}

// Neighborhood lists the 8 offsets around a cell.
var Neighborhood = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is a value type: assigning or passing it copies all cells,
// so operations on it never alter the caller's board.
type Board [Size][Size]Cell

// At returns the cell at p. It panics with ErrOutOfRange for positions off the board.
func (b Board) At(p Position) Cell {
	if !p.InBounds() {
		panic(fmt.Errorf("%w: %v", ErrOutOfRange, p))
	}
	return b[p.Row][p.Col]
}

// Set returns a copy of the board with p set to c.
func (b Board) Set(p Position, c Cell) Board {
	if !p.InBounds() {
		panic(fmt.Errorf("%w: %v", ErrOutOfRange, p))
	}
	b[p.Row][p.Col] = c
	return b
}

func (b Board) Count(s Side) int {
	count := 0
	for r := range b {
		for c := range b[r] {
			if b[r][c].Is(s) {
				count++
			}
		}
	}
	return count
}

func (b Board) EmptyCount() int {
	count := 0
	for r := range b {
		for c := range b[r] {
			if b[r][c] == Empty {
				count++
			}
		}
	}
	return count
}

// IsFullToOneEmpty reports whether exactly one empty cell remains.
func (b Board) IsFullToOneEmpty() bool {
	return b.EmptyCount() == 1
}

// Neighbors returns the in-bounds cells adjacent to p.
func (b Board) Neighbors(p Position) []Position {
	neighbors := make([]Position, 0, len(Neighborhood))
	for _, d := range Neighborhood {
		n := p.Offset(d[0], d[1])
		if n.InBounds() {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// ParseRows reads the wire format: Size strings of Size characters from ".#RB".
func ParseRows(rows []string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedBoard, Size, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has %d characters", ErrMalformedBoard, r, len(row))
		}
		for c := 0; c < Size; c++ {
			cell, ok := cellFromSymbol(row[c])
			if !ok {
				return b, fmt.Errorf("%w: unexpected %q at (%d,%d)", ErrMalformedBoard, row[c], r, c)
			}
			b[r][c] = cell
		}
	}
	return b, nil
}

// Rows formats the board in the wire format accepted by ParseRows.
func (b Board) Rows() []string {
	rows := make([]string, Size)
	var sb strings.Builder
	for r := range b {
		sb.Reset()
		for c := range b[r] {
			sb.WriteByte(b[r][c].Symbol())
		}
		rows[r] = sb.String()
	}
	return rows
}

func (b Board) String() string {
	return strings.Join(b.Rows(), "\n")
}
