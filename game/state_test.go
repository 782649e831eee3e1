package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	s := NewState()
	require.Equal(t, First, s.ToMove)
	require.Equal(t, 2, s.Board.Count(First))
	require.Equal(t, 2, s.Board.Count(Second))
	require.False(t, s.IsOver())
	require.Equal(t, NoSide, s.Winner(), "Equal piece counts are a tie")
}

func TestStatePlay(t *testing.T) {
	s := NewState()
	moves := s.LegalMoves()
	require.NotEmpty(t, moves)

	next := s.Play(moves[0])
	require.Equal(t, Second, next.ToMove, "Turn should pass to the opponent")
	require.Equal(t, 3, next.Board.Count(First))
	require.Equal(t, First, next.Winner())
	require.Equal(t, First, s.ToMove, "Original state should not change")

	passed := s.Pass()
	require.Equal(t, s.Board, passed.Board)
	require.Equal(t, Second, passed.ToMove)
}

func TestStateIsOver(t *testing.T) {
	t.Run("side wiped out", func(t *testing.T) {
		b := mustBoard(t,
			"R.......",
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
			"........",
		)
		s := State{Board: b, ToMove: Second}
		require.True(t, s.IsOver())
		require.Equal(t, First, s.Winner())
		require.Equal(t, map[Side]int{First: 1, Second: 0}, s.Scores())
	})

	t.Run("nobody can move", func(t *testing.T) {
		b := mustBoard(t,
			"R..#####",
			"...#####",
			"########",
			"########",
			"########",
			"#####...",
			"#####...",
			"#####..B",
		)
		s := State{Board: b, ToMove: First}
		require.False(t, s.IsOver(), "First can still move")

		full := mustBoard(t,
			"RRR#####",
			"RRR#####",
			"#######.",
			"########",
			"########",
			"#####BBB",
			"#####BBB",
			"#####BBB",
		)
		s = State{Board: full, ToMove: First}
		require.True(t, s.IsOver(), "The last empty cell is out of reach of both sides")
	})
}

func TestStateHash(t *testing.T) {
	s := NewState()
	require.Equal(t, s.Hash(), NewState().Hash(), "Equal states hash equally")
	require.NotEqual(t, s.Hash(), s.Pass().Hash(), "Side to move is part of the hash")
	require.NotEqual(t, s.Hash(), s.Play(s.LegalMoves()[0]).Hash())
}
