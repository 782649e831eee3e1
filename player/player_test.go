package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"ataxx/communication/protocol"
	"ataxx/experiments/metrics"
	"ataxx/game"
	"ataxx/searcher"
	"ataxx/searcher/agent"
)

type received struct {
	msg protocol.Message
	err error
}

// fakeChannel replays a scripted inbox and keeps everything sent.
type fakeChannel struct {
	inbox   chan received
	closed  chan struct{}
	once    sync.Once
	sent    []protocol.Message
	sendErr error
}

func newFakeChannel(script ...any) *fakeChannel {
	c := &fakeChannel{inbox: make(chan received, len(script)), closed: make(chan struct{})}
	for _, item := range script {
		switch item := item.(type) {
		case protocol.Message:
			c.inbox <- received{msg: item}
		case error:
			c.inbox <- received{err: item}
		default:
			panic(fmt.Sprintf("unexpected script item %T", item))
		}
	}
	return c
}

func (c *fakeChannel) Receive() (protocol.Message, error) {
	select {
	case r, ok := <-c.inbox:
		if !ok {
			return nil, io.EOF
		}
		return r.msg, r.err
	case <-c.closed:
		return nil, net.ErrClosed
	}
}

func (c *fakeChannel) Send(msg protocol.Message) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// end makes Receive report EOF once the script is consumed.
func (c *fakeChannel) end() *fakeChannel {
	close(c.inbox)
	return c
}

type recordedMove struct {
	turn   int
	move   game.Move
	passed bool
}

type fakeRecorder struct {
	id     uuid.UUID
	side   game.Side
	moves  []recordedMove
	scores map[string]int
}

func (r *fakeRecorder) StartGame(username string, side game.Side) (uuid.UUID, error) {
	r.id = uuid.New()
	r.side = side
	return r.id, nil
}

func (r *fakeRecorder) RecordMove(id uuid.UUID, turn int, board game.Board, move game.Move, passed bool, search metrics.SearchMetric) error {
	if id != r.id {
		return errors.New("unknown game")
	}
	r.moves = append(r.moves, recordedMove{turn, move, passed})
	return nil
}

func (r *fakeRecorder) FinishGame(id uuid.UUID, scores map[string]int) error {
	r.scores = scores
	return nil
}

type fakeRenderer struct {
	titles []string
}

func (r *fakeRenderer) Render(title string, board game.Board) {
	r.titles = append(r.titles, title)
}

func mustBoard(t *testing.T, rows ...string) game.Board {
	t.Helper()
	b, err := game.ParseRows(rows)
	require.NoError(t, err, "Test board should parse")
	return b
}

func greedy() agent.Agent {
	return agent.NewGreedyAgent(searcher.NewSearcher(searcher.WithMetrics()))
}

func TestRun(t *testing.T) {
	start := game.NewState().Board
	boxed := mustBoard(t,
		"R##.....",
		"###.....",
		"###.....",
		"........",
		"........",
		"........",
		"........",
		".......B",
	)
	expected, ok := searcher.NewSearcher().SelectMove(start, game.First)
	require.True(t, ok)

	t.Run("plays a game as first player", func(t *testing.T) {
		ch := newFakeChannel(
			protocol.RegisterAck{},
			protocol.GameStart{FirstPlayer: "alice"},
			protocol.YourTurn{Board: start, Timeout: 5},
			protocol.MoveOK{Board: start},
			protocol.Pass{Username: "bob", NextPlayer: "alice"},
			protocol.YourTurn{Board: boxed, Timeout: 5},
			protocol.GameOver{Board: &boxed, Scores: map[string]int{"alice": 1, "bob": 1}},
		).end()
		recorder := &fakeRecorder{}
		renderer := &fakeRenderer{}
		p := NewPlayer("alice", ch, greedy(), WithRecorder(recorder), WithRenderer(renderer))

		require.NoError(t, p.Run(context.Background()), "Run should end cleanly on game_over")
		require.Equal(t, GameOver, p.State())
		require.Equal(t, game.First, p.Side())
		require.Equal(t, map[string]int{"alice": 1, "bob": 1}, p.Scores())

		require.Equal(t, []protocol.Message{
			protocol.Register{Username: "alice"},
			protocol.NewMove("alice", expected),
			protocol.PassMove("alice"),
		}, ch.sent, "Register, then one reply per prompt with a zero move for the pass")

		require.Equal(t, game.First, recorder.side)
		require.Equal(t, []recordedMove{{1, expected, false}, {2, game.Move{}, true}}, recorder.moves)
		require.Equal(t, p.Scores(), recorder.scores)
		require.Equal(t, []string{"move_ok", "game_over"}, renderer.titles)
	})

	t.Run("second player waits", func(t *testing.T) {
		ch := newFakeChannel(
			protocol.RegisterAck{},
			protocol.GameStart{FirstPlayer: "bob"},
		).end()
		p := NewPlayer("alice", ch, greedy())

		err := p.Run(context.Background())
		require.ErrorIs(t, err, io.EOF, "Closing before game_over is a transport error")
		require.Equal(t, game.Second, p.Side())
		require.Equal(t, WaitingOnOpponent, p.State())
		require.Len(t, ch.sent, 1)
	})

	t.Run("protocol errors are skipped", func(t *testing.T) {
		ch := newFakeChannel(
			fmt.Errorf("%w: bad line", protocol.ErrMalformed),
			protocol.RegisterAck{},
			fmt.Errorf("%w: resign", protocol.ErrUnknownType),
			protocol.GameStart{FirstPlayer: "alice"},
			fmt.Errorf("%w: your_turn.timeout", protocol.ErrMissingField),
			protocol.GameOver{Scores: map[string]int{"alice": 2, "bob": 2}},
		).end()
		p := NewPlayer("alice", ch, greedy())

		require.NoError(t, p.Run(context.Background()))
		require.Equal(t, GameOver, p.State())
		require.Len(t, ch.sent, 1, "Nothing is sent for discarded lines")
	})

	t.Run("input after game over is ignored", func(t *testing.T) {
		ch := newFakeChannel(
			protocol.GameOver{},
			protocol.YourTurn{Board: start, Timeout: 5},
		).end()
		p := NewPlayer("alice", ch, greedy())

		require.NoError(t, p.Run(context.Background()))
		require.Len(t, ch.sent, 1, "Only the registration should be sent")
	})

	t.Run("turn before game start", func(t *testing.T) {
		ch := newFakeChannel(
			protocol.YourTurn{Board: start, Timeout: 5},
			protocol.GameOver{},
		).end()
		p := NewPlayer("alice", ch, greedy())

		require.NoError(t, p.Run(context.Background()))
		require.Equal(t, game.First, p.Side())
		require.Equal(t, protocol.NewMove("alice", expected), ch.sent[1])
	})

	t.Run("send failure", func(t *testing.T) {
		ch := newFakeChannel().end()
		ch.sendErr = net.ErrClosed
		p := NewPlayer("alice", ch, greedy())

		err := p.Run(context.Background())
		require.ErrorIs(t, err, net.ErrClosed)
		require.Equal(t, AwaitingRegistration, p.State())
	})

	t.Run("cancel closes the channel", func(t *testing.T) {
		ch := newFakeChannel(protocol.RegisterAck{})
		p := NewPlayer("alice", ch, greedy())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx) }()
		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})
}

func TestStateString(t *testing.T) {
	require.Equal(t, "awaiting registration", AwaitingRegistration.String())
	require.Equal(t, "waiting on opponent", WaitingOnOpponent.String())
	require.Equal(t, "game over", GameOver.String())
	require.Equal(t, "State(9)", State(9).String())
}

// slowAgent delays another agent's answer.
type slowAgent struct {
	agent.Agent
	delay time.Duration
}

func (a slowAgent) FindMove(board game.Board, side game.Side) (game.Move, bool, metrics.SearchMetric) {
	time.Sleep(a.delay)
	return a.Agent.FindMove(board, side)
}

func TestTurnTimeout(t *testing.T) {
	start := game.NewState().Board
	logger := log.Logger
	defer func() { log.Logger = logger }()

	play := func(t *testing.T, timeout float64) string {
		var out bytes.Buffer
		log.Logger = zerolog.New(&out)

		ch := newFakeChannel(
			protocol.GameStart{FirstPlayer: "alice"},
			protocol.YourTurn{Board: start, Timeout: timeout},
			protocol.GameOver{},
		).end()
		p := NewPlayer("alice", ch, slowAgent{greedy(), 50 * time.Millisecond})
		require.NoError(t, p.Run(context.Background()))
		require.Len(t, ch.sent, 2, "A late move is still sent")
		require.IsType(t, protocol.Move{}, ch.sent[1])
		require.False(t, ch.sent[1].(protocol.Move).IsPass())
		return out.String()
	}

	t.Run("overrun is logged", func(t *testing.T) {
		out := play(t, 0.01)
		require.Contains(t, out, `"level":"warn"`)
		require.Contains(t, out, "move selection took")
	})

	t.Run("within the timeout", func(t *testing.T) {
		out := play(t, 30)
		require.NotContains(t, out, "move selection took", "No overrun warning expected")
	})
}
