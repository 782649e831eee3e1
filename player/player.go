package player

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ataxx/communication"
	"ataxx/communication/protocol"
	"ataxx/experiments/metrics"
	"ataxx/game"
	"ataxx/searcher/agent"
)

// State of the turn controller.
type State int

const (
	AwaitingRegistration State = iota
	AwaitingGameStart
	AwaitingTurn
	WaitingOnOpponent
	GameOver
)

func (s State) String() string {
	switch s {
	case AwaitingRegistration:
		return "awaiting registration"
	case AwaitingGameStart:
		return "awaiting game start"
	case AwaitingTurn:
		return "awaiting turn"
	case WaitingOnOpponent:
		return "waiting on opponent"
	case GameOver:
		return "game over"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Recorder keeps a history of the games this player takes part in.
type Recorder interface {
	StartGame(username string, side game.Side) (uuid.UUID, error)
	RecordMove(id uuid.UUID, turn int, board game.Board, move game.Move, passed bool, search metrics.SearchMetric) error
	FinishGame(id uuid.UUID, scores map[string]int) error
}

type nopRecorder struct{}

func (nopRecorder) StartGame(string, game.Side) (uuid.UUID, error) { return uuid.Nil, nil }
func (nopRecorder) RecordMove(uuid.UUID, int, game.Board, game.Move, bool, metrics.SearchMetric) error {
	return nil
}
func (nopRecorder) FinishGame(uuid.UUID, map[string]int) error { return nil }

type Option func(p *Player)

func WithRenderer(renderer Renderer) Option {
	return func(p *Player) {
		if renderer != nil {
			p.renderer = renderer
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(p *Player) {
		if recorder != nil {
			p.recorder = recorder
		}
	}
}

// Player registers with a match server under one username and answers every
// turn prompt with the agent's move until the game is over.
type Player struct {
	username string
	channel  communication.Channel
	agent    agent.Agent
	renderer Renderer
	recorder Recorder

	state  State
	side   game.Side
	gameID uuid.UUID
	turn   int
	scores map[string]int
}

func NewPlayer(username string, channel communication.Channel, a agent.Agent, options ...Option) *Player {
	p := &Player{ // Default values
		username: username,
		channel:  channel,
		agent:    a,
		renderer: LogRenderer{},
		recorder: nopRecorder{},
		state:    AwaitingRegistration,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *Player) State() State {
	return p.state
}

// Side is NoSide until game_start (or the first turn prompt) arrives.
func (p *Player) Side() game.Side {
	return p.side
}

// Scores are the final scores, nil until the game is over.
func (p *Player) Scores() map[string]int {
	return p.scores
}

// Run registers and plays until game_over. Malformed messages are logged and
// skipped; a transport failure ends Run with an error. Cancelling ctx closes
// the channel.
func (p *Player) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { p.channel.Close() })
	defer stop()

	if err := p.channel.Send(protocol.Register{Username: p.username}); err != nil {
		return fmt.Errorf("failed to register %s: %w", p.username, err)
	}
	log.Info().Msgf("registering as %s", p.username)

	for p.state != GameOver {
		msg, err := p.channel.Receive()
		if err != nil {
			if communication.IsProtocolError(err) {
				log.Warn().Err(err).Msg("discarding message")
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("connection lost in state %q: %w", p.state, err)
		}
		if err := p.handle(msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) handle(msg protocol.Message) error {
	switch msg := msg.(type) {
	case protocol.RegisterAck:
		log.Info().Msg("registration acknowledged")
		if p.state == AwaitingRegistration {
			p.state = AwaitingGameStart
		}

	case protocol.GameStart:
		p.side = game.Second
		p.state = WaitingOnOpponent
		if msg.FirstPlayer == p.username {
			p.side = game.First
			p.state = AwaitingTurn
		}
		log.Info().Msgf("game started, %s moves first, playing %s", msg.FirstPlayer, p.side)
		p.startRecord()

	case protocol.YourTurn:
		return p.takeTurn(msg)

	case protocol.MoveOK:
		log.Debug().Msg("move accepted")
		p.renderer.Render("move_ok", msg.Board)

	case protocol.InvalidMove:
		log.Warn().Str("reason", msg.Reason).Msg("server rejected the move")

	case protocol.Pass:
		log.Info().Msgf("%s passed, %s is next", msg.Username, msg.NextPlayer)
		if msg.NextPlayer == p.username {
			p.state = AwaitingTurn
		} else if msg.NextPlayer != "" {
			p.state = WaitingOnOpponent
		}

	case protocol.GameOver:
		p.finish(msg)

	default:
		log.Debug().Msgf("ignoring %s", msg.Kind())
	}
	return nil
}

func (p *Player) takeTurn(prompt protocol.YourTurn) error {
	if p.side == game.NoSide {
		log.Warn().Msg("turn prompt before game start, assuming first player")
		p.side = game.First
		p.startRecord()
	}
	p.state = AwaitingTurn
	p.turn++
	log.Debug().Int("turn", p.turn).Float64("timeout", prompt.Timeout).Msg("your turn")

	start := time.Now()
	move, ok, search := p.agent.FindMove(prompt.Board, p.side)
	elapsed := time.Since(start)
	if prompt.Timeout > 0 && elapsed.Seconds() > prompt.Timeout {
		log.Warn().Msgf("move selection took %v, over the %.1fs timeout", elapsed, prompt.Timeout)
	}

	reply := protocol.PassMove(p.username)
	if ok {
		reply = protocol.NewMove(p.username, move)
		log.Info().Msgf("playing %v", move)
	} else {
		log.Info().Msg("no legal move, passing")
	}
	if err := p.channel.Send(reply); err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}
	p.state = WaitingOnOpponent

	if err := p.recorder.RecordMove(p.gameID, p.turn, prompt.Board, move, !ok, search); err != nil {
		log.Warn().Err(err).Msg("failed to record move")
	}
	return nil
}

func (p *Player) startRecord() {
	id, err := p.recorder.StartGame(p.username, p.side)
	if err != nil {
		log.Warn().Err(err).Msg("failed to record game start")
		return
	}
	p.gameID = id
}

func (p *Player) finish(over protocol.GameOver) {
	p.state = GameOver
	p.scores = over.Scores
	if over.Board != nil {
		p.renderer.Render("game_over", *over.Board)
	}

	own, hasOwn := over.Scores[p.username]
	for name, score := range over.Scores {
		if name != p.username {
			log.Info().Msgf("opponent %s scored %d", name, score)
		}
	}
	if hasOwn {
		log.Info().Msgf("game over, %s scored %d", p.username, own)
	} else {
		log.Info().Msg("game over")
	}

	if err := p.recorder.FinishGame(p.gameID, over.Scores); err != nil {
		log.Warn().Err(err).Msg("failed to record game result")
	}
}
