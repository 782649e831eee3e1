package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ataxx/communication"
	"ataxx/communication/client"
	"ataxx/communication/protocol"
	"ataxx/game"
)

type served struct {
	result Result
	err    error
}

func startServer(t *testing.T, options ...Option) (*Server, <-chan served) {
	t.Helper()
	s, err := Listen("127.0.0.1:0", options...)
	require.NoError(t, err, "Server should listen")
	t.Cleanup(func() { s.Close() })

	done := make(chan served, 1)
	go func() {
		result, err := s.Serve(context.Background())
		done <- served{result, err}
	}()
	return s, done
}

func dial(t *testing.T, s *Server) communication.Channel {
	t.Helper()
	ch, err := client.Dial(context.Background(), s.transport, s.Addr().String(), s.path)
	require.NoError(t, err, "Client should connect")
	t.Cleanup(func() { ch.Close() })
	return ch
}

func join(t *testing.T, s *Server, name string) communication.Channel {
	t.Helper()
	ch := dial(t, s)
	require.NoError(t, ch.Send(protocol.Register{Username: name}))
	expect[protocol.RegisterAck](t, ch)
	return ch
}

func expect[T protocol.Message](t *testing.T, ch communication.Channel) T {
	t.Helper()
	msg, err := ch.Receive()
	require.NoError(t, err, "Receive should succeed")
	typed, ok := msg.(T)
	require.True(t, ok, "Expected %T, got %#v", *new(T), msg)
	return typed
}

func wait(t *testing.T, done <-chan served) served {
	t.Helper()
	select {
	case s := <-done:
		return s
	case <-time.After(10 * time.Second):
		t.Fatal("Match did not finish")
		return served{}
	}
}

// autoplay answers every prompt with the first legal move until the game ends.
func autoplay(ch communication.Channel, name string) (protocol.GameOver, error) {
	side := game.NoSide
	for {
		msg, err := ch.Receive()
		if err != nil {
			return protocol.GameOver{}, err
		}
		switch msg := msg.(type) {
		case protocol.GameStart:
			side = game.Second
			if msg.FirstPlayer == name {
				side = game.First
			}
		case protocol.YourTurn:
			moves := game.LegalMoves(msg.Board, side)
			reply := protocol.PassMove(name)
			if len(moves) > 0 {
				reply = protocol.NewMove(name, moves[0])
			}
			if err := ch.Send(reply); err != nil {
				return protocol.GameOver{}, err
			}
		case protocol.InvalidMove:
			return protocol.GameOver{}, fmt.Errorf("%s: move rejected: %s", name, msg.Reason)
		case protocol.GameOver:
			return msg, nil
		}
	}
}

func TestServeMatch(t *testing.T) {
	for _, transport := range []communication.Transport{communication.TCP, communication.WebSocket} {
		t.Run(string(transport), func(t *testing.T) {
			s, done := startServer(t, WithTransport(transport), WithPath("/ataxx"), WithMaxTurns(20))
			alice := join(t, s, "alice")
			bob := join(t, s, "bob")

			type finished struct {
				over protocol.GameOver
				err  error
			}
			results := make(chan finished, 2)
			for name, ch := range map[string]communication.Channel{"alice": alice, "bob": bob} {
				go func() {
					over, err := autoplay(ch, name)
					results <- finished{over, err}
				}()
			}

			served := wait(t, done)
			require.NoError(t, served.err, "Match should finish cleanly")
			require.Equal(t, [2]string{"alice", "bob"}, served.result.Players, "First to register plays First")
			require.Equal(t, 20, served.result.Turns, "Turn limit should end the match")
			require.Equal(t, served.result.Board.Count(game.First), served.result.Scores["alice"])
			require.Equal(t, served.result.Board.Count(game.Second), served.result.Scores["bob"])
			require.NotEqual(t, "00000000-0000-0000-0000-000000000000", served.result.ID.String())

			for i := 0; i < 2; i++ {
				r := <-results
				require.NoError(t, r.err, "Both players should reach game_over")
				require.Equal(t, served.result.Scores, r.over.Scores)
				require.NotNil(t, r.over.Board)
				require.Equal(t, served.result.Board, *r.over.Board)
			}
		})
	}
}

func TestServeRegistration(t *testing.T) {
	s, done := startServer(t, WithMaxTurns(1))

	alice := join(t, s, "alice")

	bob := dial(t, s)
	require.NoError(t, bob.Send(protocol.Register{Username: "alice"}))
	invalid := expect[protocol.InvalidMove](t, bob)
	require.Contains(t, invalid.Reason, "alice", "Taken usernames should be refused")

	require.NoError(t, bob.Send(protocol.Register{Username: "bob"}))
	expect[protocol.RegisterAck](t, bob)

	for _, ch := range []communication.Channel{alice, bob} {
		start := expect[protocol.GameStart](t, ch)
		require.Equal(t, "alice", start.FirstPlayer)
	}

	turn := expect[protocol.YourTurn](t, alice)
	require.Equal(t, game.NewState().Board, turn.Board)
	require.Equal(t, DEFAULT_TIMEOUT, turn.Timeout)

	clone := game.Move{From: game.Position{Row: 0, Col: 0}, To: game.Position{Row: 1, Col: 1}}
	require.NoError(t, alice.Send(protocol.NewMove("alice", clone)))

	for _, ch := range []communication.Channel{alice, bob} {
		ok := expect[protocol.MoveOK](t, ch)
		require.Equal(t, game.Occupied(game.First), ok.Board.At(clone.To))
		over := expect[protocol.GameOver](t, ch)
		require.Equal(t, map[string]int{"alice": 3, "bob": 2}, over.Scores)
	}

	served := wait(t, done)
	require.NoError(t, served.err)
	require.Equal(t, "alice", served.result.Winner)
}

func TestServeInvalidMoves(t *testing.T) {
	s, done := startServer(t, WithMaxTurns(5))
	alice := join(t, s, "alice")
	bob := join(t, s, "bob")
	expect[protocol.GameStart](t, alice)
	expect[protocol.GameStart](t, bob)
	expect[protocol.YourTurn](t, alice)

	t.Run("out of turn", func(t *testing.T) {
		require.NoError(t, bob.Send(protocol.Move{Username: "bob", Sx: 1, Sy: 8, Tx: 2, Ty: 8}))
		invalid := expect[protocol.InvalidMove](t, bob)
		require.Equal(t, "not your turn", invalid.Reason)
	})

	t.Run("forfeit after repeated illegal moves", func(t *testing.T) {
		far := protocol.Move{Username: "alice", Sx: 1, Sy: 1, Tx: 5, Ty: 5}
		for i := 0; i < 2; i++ {
			require.NoError(t, alice.Send(far))
			expect[protocol.InvalidMove](t, alice)
			expect[protocol.YourTurn](t, alice)
		}
		require.NoError(t, alice.Send(far))
		expect[protocol.InvalidMove](t, alice)

		for _, ch := range []communication.Channel{alice, bob} {
			pass := expect[protocol.Pass](t, ch)
			require.Equal(t, protocol.Pass{Username: "alice", NextPlayer: "bob"}, pass)
		}
		expect[protocol.YourTurn](t, bob)
	})

	t.Run("pass with moves available", func(t *testing.T) {
		require.NoError(t, bob.Send(protocol.PassMove("bob")))
		expect[protocol.InvalidMove](t, bob)
		expect[protocol.YourTurn](t, bob)
	})

	t.Run("player leaves", func(t *testing.T) {
		require.NoError(t, bob.Close())
		over := expect[protocol.GameOver](t, alice)
		require.Equal(t, map[string]int{"alice": 2, "bob": 2}, over.Scores)

		served := wait(t, done)
		require.ErrorIs(t, served.err, ErrPlayerLeft)
		require.Equal(t, "alice", served.result.Winner, "The remaining player wins")
	})
}

func TestServeClosed(t *testing.T) {
	s, done := startServer(t)
	join(t, s, "alice")
	require.NoError(t, s.Close())

	served := wait(t, done)
	require.ErrorIs(t, served.err, ErrClosed)
}
