package gamemaster

import (
	"errors"
	"fmt"

	"ataxx/game"
	"ataxx/meta"
	"ataxx/utils"
)

var (
	ErrGameOver    = errors.New("game is over - no moves allowed")
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")
	ErrUnknownUser = errors.New("unknown player")
)

type Option func(r *Referee)

// WithMaxTurns ends the match after the given number of plays and passes.
func WithMaxTurns(turns int) Option {
	return func(r *Referee) {
		if turns > 0 {
			r.maxTurns = turns
		}
	}
}

// WithState starts the match from a custom position instead of the standard opening.
func WithState(state game.State) Option {
	return func(r *Referee) {
		r.state = state
	}
}

// Outcome describes the match after an accepted submission.
type Outcome struct {
	Side    game.Side   // side that just played or passed
	Move    game.Move   // zero when Side passed
	Passed  bool        // Side passed or forfeited its turn
	Skipped []game.Side // sides that had to pass afterwards
	Next    game.Side   // side to move, NoSide once the game is over
	Over    bool
	Board   game.Board
}

// Referee enforces the rules of a two-player match: turn order, legality,
// forced passes and the end of the game.
type Referee struct {
	players  []string // index 0 plays First
	state    game.State
	turns    int
	invalid  int
	maxTurns int
	over     bool
}

func NewReferee(first, second string, options ...Option) *Referee {
	r := &Referee{ // Default values
		players:  []string{first, second},
		state:    game.NewState(),
		maxTurns: meta.MAX_TURNS,
	}
	for _, option := range options {
		option(r)
	}
	r.over = r.state.IsOver()
	if !r.over && !game.HasMoves(r.state.Board, r.state.ToMove) {
		r.state = r.state.Pass()
	}
	return r
}

func (r *Referee) State() game.State {
	return r.state
}

func (r *Referee) ToMove() game.Side {
	if r.over {
		return game.NoSide
	}
	return r.state.ToMove
}

func (r *Referee) IsOver() bool {
	return r.over
}

func (r *Referee) Turns() int {
	return r.turns
}

// Player returns the username playing side.
func (r *Referee) Player(side game.Side) string {
	switch side {
	case game.First:
		return r.players[0]
	case game.Second:
		return r.players[1]
	default:
		return ""
	}
}

func (r *Referee) SideOf(username string) (game.Side, bool) {
	switch utils.FindIndex(r.players, username) {
	case 0:
		return game.First, true
	case 1:
		return game.Second, true
	default:
		return game.NoSide, false
	}
}

// Scores maps each username to its piece count.
func (r *Referee) Scores() map[string]int {
	return map[string]int{
		r.players[0]: r.state.Board.Count(game.First),
		r.players[1]: r.state.Board.Count(game.Second),
	}
}

// Winner returns the username with more pieces, "" on a tie.
func (r *Referee) Winner() string {
	return r.Player(r.state.Winner())
}

// Submit plays m for username. An illegal move returns ErrIllegalMove; after
// meta.MAX_INVALID illegal attempts in a row the turn is forfeited and the
// returned Outcome describes the forfeit.
func (r *Referee) Submit(username string, m game.Move) (Outcome, error) {
	side, err := r.checkTurn(username)
	if err != nil {
		return Outcome{}, err
	}
	kind, ok := game.IsLegal(r.state.Board, m.From, m.To, side)
	if !ok {
		return r.reject(side, fmt.Errorf("%w: %v by %s", ErrIllegalMove, m, username))
	}
	m.Kind = kind

	r.invalid = 0
	r.state = r.state.Play(m)
	out := r.advance(side)
	out.Move = m
	return out, nil
}

// Pass accepts a pass from username, which is only legal without any legal move.
func (r *Referee) Pass(username string) (Outcome, error) {
	side, err := r.checkTurn(username)
	if err != nil {
		return Outcome{}, err
	}
	if game.HasMoves(r.state.Board, side) {
		return r.reject(side, fmt.Errorf("%w: %s passed with moves available", ErrIllegalMove, username))
	}
	r.invalid = 0
	r.state = r.state.Pass()
	out := r.advance(side)
	out.Passed = true
	return out, nil
}

func (r *Referee) checkTurn(username string) (game.Side, error) {
	if r.over {
		return game.NoSide, ErrGameOver
	}
	side, ok := r.SideOf(username)
	if !ok {
		return game.NoSide, fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	if side != r.state.ToMove {
		return game.NoSide, fmt.Errorf("%w: %s", ErrNotYourTurn, username)
	}
	return side, nil
}

func (r *Referee) reject(side game.Side, err error) (Outcome, error) {
	r.invalid++
	if r.invalid < meta.MAX_INVALID {
		return Outcome{}, err
	}
	r.invalid = 0
	r.state = r.state.Pass()
	out := r.advance(side)
	out.Passed = true
	return out, err
}

// advance finishes a turn of side: it ends the game when due and skips
// a next side that has nothing to play.
func (r *Referee) advance(side game.Side) Outcome {
	r.turns++
	out := Outcome{Side: side}
	if r.state.IsOver() || r.turns >= r.maxTurns {
		r.over = true
		out.Over = true
		out.Board = r.state.Board
		return out
	}
	if !game.HasMoves(r.state.Board, r.state.ToMove) {
		out.Skipped = append(out.Skipped, r.state.ToMove)
		r.state = r.state.Pass()
	}
	out.Next = r.state.ToMove
	out.Board = r.state.Board
	return out
}
