package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, rows ...string) Board {
	t.Helper()
	b, err := ParseRows(rows)
	require.NoError(t, err, "Test board should parse")
	return b
}

// randomBoards returns n boards with a random mix of all four cell states.
func randomBoards(seed uint64, n int) []Board {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cells := []Cell{Empty, Empty, Empty, Blocked, Occupied(First), Occupied(Second)}
	boards := make([]Board, n)
	for i := range boards {
		for row := 0; row < Size; row++ {
			for col := 0; col < Size; col++ {
				boards[i][row][col] = cells[r.IntN(len(cells))]
			}
		}
	}
	return boards
}

func occupied(b Board) int {
	return b.Count(First) + b.Count(Second)
}
