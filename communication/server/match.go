package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ataxx/communication"
	"ataxx/communication/protocol"
	"ataxx/game"
	"ataxx/gamemaster"
)

// Result summarizes a finished match.
type Result struct {
	ID      uuid.UUID
	Players [2]string // index 0 played First
	Winner  string    // "" on a tie
	Scores  map[string]int
	Turns   int
	Board   game.Board
}

type seat struct {
	ch   communication.Channel
	name string
}

type event struct {
	seat *seat
	msg  protocol.Message
	err  error
}

type match struct {
	server  *Server
	id      uuid.UUID
	seats   []*seat // every open connection
	players []*seat // registered, in order of registration
	events  chan event
}

// Serve waits for two players to register and referees one match between
// them. The first to register plays First.
func (s *Server) Serve(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := &match{server: s, id: uuid.New(), events: make(chan event)}
	defer m.close()

	if err := m.register(ctx); err != nil {
		return Result{ID: m.id}, err
	}
	return m.play(ctx)
}

func (m *match) read(ctx context.Context, st *seat) {
	for {
		msg, err := st.ch.Receive()
		select {
		case m.events <- event{seat: st, msg: msg, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil && !communication.IsProtocolError(err) {
			return
		}
	}
}

func (m *match) register(ctx context.Context) error {
	for len(m.players) < 2 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.server.done:
			return ErrClosed
		case ch := <-m.server.conns:
			st := &seat{ch: ch}
			m.seats = append(m.seats, st)
			go m.read(ctx, st)
		case ev := <-m.events:
			if ev.err != nil {
				if communication.IsProtocolError(ev.err) {
					log.Warn().Err(ev.err).Msg("discarding message")
					continue
				}
				log.Info().Err(ev.err).Msgf("connection of %q closed before the match", ev.seat.name)
				m.drop(ev.seat)
				continue
			}
			reg, ok := ev.msg.(protocol.Register)
			if !ok || ev.seat.name != "" {
				log.Debug().Msgf("ignoring %s before the match", ev.msg.Kind())
				continue
			}
			if reg.Username == "" || m.taken(reg.Username) {
				m.send(ev.seat, protocol.InvalidMove{Reason: fmt.Sprintf("username %q is not available", reg.Username)})
				continue
			}
			ev.seat.name = reg.Username
			m.players = append(m.players, ev.seat)
			m.send(ev.seat, protocol.RegisterAck{})
			log.Info().Msgf("%s registered", reg.Username)
		}
	}

	for _, st := range slices.Clone(m.seats) {
		if st.name == "" {
			m.drop(st)
		}
	}
	return nil
}

func (m *match) play(ctx context.Context) (Result, error) {
	first, second := m.players[0], m.players[1]
	ref := gamemaster.NewReferee(first.name, second.name, gamemaster.WithMaxTurns(m.server.maxTurns))
	result := Result{ID: m.id, Players: [2]string{first.name, second.name}}

	log.Info().Str("match", m.id.String()).Msgf("starting match %s vs %s", first.name, second.name)
	m.broadcast(protocol.GameStart{FirstPlayer: first.name})
	if ref.State().ToMove != game.First && !ref.IsOver() {
		m.broadcast(protocol.Pass{Username: first.name, NextPlayer: second.name})
	}

	for !ref.IsOver() {
		mover := m.seatOf(ref.ToMove())
		prompt := protocol.YourTurn{Board: ref.State().Board, Timeout: m.server.timeout}
		if err := mover.ch.Send(prompt); err != nil {
			return m.abandon(ref, result, mover, fmt.Errorf("%w: %s: %w", ErrPlayerLeft, mover.name, err))
		}

		start := time.Now()
		reply, gone, err := m.await(ctx, mover)
		if err != nil {
			if gone != nil {
				return m.abandon(ref, result, gone, err)
			}
			return result, err
		}
		if elapsed := time.Since(start); elapsed.Seconds() > m.server.timeout {
			log.Warn().Msgf("%s replied after %v, timeout was %.1fs", mover.name, elapsed, m.server.timeout)
		}

		var out gamemaster.Outcome
		if reply.IsPass() {
			out, err = ref.Pass(mover.name)
		} else {
			out, err = ref.Submit(mover.name, game.Move{
				From: game.Position{Row: reply.Sx - 1, Col: reply.Sy - 1},
				To:   game.Position{Row: reply.Tx - 1, Col: reply.Ty - 1},
			})
		}
		if err != nil {
			if !errors.Is(err, gamemaster.ErrIllegalMove) {
				return result, err
			}
			log.Info().Err(err).Msgf("rejected move of %s", mover.name)
			m.send(mover, protocol.InvalidMove{Reason: err.Error()})
			if !out.Passed {
				continue
			}
		}
		m.announce(ref, out, err == nil && !out.Passed)
	}

	return m.finish(ref, result), nil
}

// await blocks until mover sends a move. Moves from the other player are
// refused. When a player disconnects its seat is returned with ErrPlayerLeft.
func (m *match) await(ctx context.Context, mover *seat) (protocol.Move, *seat, error) {
	for {
		select {
		case <-ctx.Done():
			return protocol.Move{}, nil, ctx.Err()
		case <-m.server.done:
			return protocol.Move{}, nil, ErrClosed
		case ch := <-m.server.conns:
			_ = ch.Send(protocol.InvalidMove{Reason: "a match is in progress"})
			ch.Close()
		case ev := <-m.events:
			if ev.err != nil {
				if communication.IsProtocolError(ev.err) {
					log.Warn().Err(ev.err).Msgf("discarding message from %s", ev.seat.name)
					continue
				}
				if ev.seat.name == "" {
					continue
				}
				return protocol.Move{}, ev.seat, fmt.Errorf("%w: %s: %w", ErrPlayerLeft, ev.seat.name, ev.err)
			}
			move, ok := ev.msg.(protocol.Move)
			if !ok {
				log.Debug().Msgf("ignoring %s from %s", ev.msg.Kind(), ev.seat.name)
				continue
			}
			if ev.seat != mover {
				m.send(ev.seat, protocol.InvalidMove{Reason: "not your turn"})
				continue
			}
			if move.Username != mover.name {
				log.Debug().Msgf("move from %s was signed %q", mover.name, move.Username)
			}
			return move, nil, nil
		}
	}
}

// announce tells both players what the last submission changed.
func (m *match) announce(ref *gamemaster.Referee, out gamemaster.Outcome, moved bool) {
	if moved {
		m.broadcast(protocol.MoveOK{Board: out.Board})
	} else {
		m.broadcast(protocol.Pass{Username: ref.Player(out.Side), NextPlayer: m.nextName(ref, out.Side)})
	}
	for _, side := range out.Skipped {
		m.broadcast(protocol.Pass{Username: ref.Player(side), NextPlayer: m.nextName(ref, side)})
	}
}

func (m *match) nextName(ref *gamemaster.Referee, after game.Side) string {
	if ref.IsOver() {
		return ""
	}
	return ref.Player(after.Opponent())
}

func (m *match) finish(ref *gamemaster.Referee, result Result) Result {
	board := ref.State().Board
	result.Winner = ref.Winner()
	result.Scores = ref.Scores()
	result.Turns = ref.Turns()
	result.Board = board

	m.broadcast(protocol.GameOver{Board: &board, Scores: result.Scores})
	log.Info().Str("match", m.id.String()).Msgf("match over after %d turns, scores %v", result.Turns, result.Scores)
	return result
}

// abandon ends the match after a player left. The remaining player wins.
func (m *match) abandon(ref *gamemaster.Referee, result Result, gone *seat, err error) (Result, error) {
	m.drop(gone)
	result = m.finish(ref, result)
	for _, st := range m.players {
		if st != gone {
			result.Winner = st.name
		}
	}
	return result, err
}

func (m *match) seatOf(side game.Side) *seat {
	if side == game.Second {
		return m.players[1]
	}
	return m.players[0]
}

func (m *match) taken(name string) bool {
	return slices.ContainsFunc(m.players, func(st *seat) bool { return st.name == name })
}

func (m *match) send(st *seat, msg protocol.Message) {
	if err := st.ch.Send(msg); err != nil {
		log.Warn().Err(err).Msgf("failed to send %s to %q", msg.Kind(), st.name)
	}
}

func (m *match) broadcast(msg protocol.Message) {
	for _, st := range m.players {
		m.send(st, msg)
	}
}

func (m *match) drop(st *seat) {
	st.ch.Close()
	isSeat := func(other *seat) bool { return other == st }
	m.seats = slices.DeleteFunc(m.seats, isSeat)
	m.players = slices.DeleteFunc(m.players, isSeat)
}

func (m *match) close() {
	for _, st := range m.seats {
		st.ch.Close()
	}
}
