package searcher

import (
	"math/rand/v2"
	"testing"

	"ataxx/game"

	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, rows ...string) game.Board {
	t.Helper()
	b, err := game.ParseRows(rows)
	require.NoError(t, err, "Test board should parse")
	return b
}

func pos(r, c int) game.Position {
	return game.Position{Row: r, Col: c}
}

// oneEmptyBoards returns boards filled with pieces of both sides and a single empty cell.
func oneEmptyBoards(seed uint64, n int) []game.Board {
	r := rand.New(rand.NewPCG(seed, seed+1))
	boards := make([]game.Board, n)
	for i := range boards {
		var b game.Board
		for row := 0; row < game.Size; row++ {
			for col := 0; col < game.Size; col++ {
				side := game.First
				if r.IntN(2) == 1 {
					side = game.Second
				}
				b = b.Set(pos(row, col), game.Occupied(side))
			}
		}
		boards[i] = b.Set(pos(r.IntN(game.Size), r.IntN(game.Size)), game.Empty)
	}
	return boards
}
