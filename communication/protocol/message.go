package protocol

import "ataxx/game"

type Kind string

const (
	KindRegister    Kind = "register"
	KindRegisterAck Kind = "register_ack"
	KindGameStart   Kind = "game_start"
	KindYourTurn    Kind = "your_turn"
	KindMove        Kind = "move"
	KindMoveOK      Kind = "move_ok"
	KindInvalidMove Kind = "invalid_move"
	KindPass        Kind = "pass"
	KindGameOver    Kind = "game_over"
)

// Message is one line of the protocol. The set of implementations is closed:
// Decode only ever returns the types below.
type Message interface {
	Kind() Kind
}

// Register is sent by a client right after connecting.
type Register struct {
	Username string
}

type RegisterAck struct{}

// GameStart names the username that plays first ('R').
type GameStart struct {
	FirstPlayer string
}

// YourTurn asks the receiver to move. Timeout is in seconds.
type YourTurn struct {
	Board   game.Board
	Timeout float64
}

// Move carries 1-based coordinates; all zero means the sender passes.
type Move struct {
	Username string
	Sx, Sy   int
	Tx, Ty   int
}

type MoveOK struct {
	Board game.Board
}

type InvalidMove struct {
	Reason string
}

// Pass announces that Username could not move and NextPlayer is to move.
type Pass struct {
	Username   string
	NextPlayer string
}

// GameOver is terminal. Board is nil when the server did not send one.
type GameOver struct {
	Board  *game.Board
	Scores map[string]int
}

func (Register) Kind() Kind    { return KindRegister }
func (RegisterAck) Kind() Kind { return KindRegisterAck }
func (GameStart) Kind() Kind   { return KindGameStart }
func (YourTurn) Kind() Kind    { return KindYourTurn }
func (Move) Kind() Kind        { return KindMove }
func (MoveOK) Kind() Kind      { return KindMoveOK }
func (InvalidMove) Kind() Kind { return KindInvalidMove }
func (Pass) Kind() Kind        { return KindPass }
func (GameOver) Kind() Kind    { return KindGameOver }

// NewMove encodes m for the wire.
func NewMove(username string, m game.Move) Move {
	sx, sy, tx, ty := m.OneBased()
	return Move{Username: username, Sx: sx, Sy: sy, Tx: tx, Ty: ty}
}

// PassMove is the reply of a client without any legal move.
func PassMove(username string) Move {
	return Move{Username: username}
}

func (m Move) IsPass() bool {
	return m.Sx == 0 && m.Sy == 0 && m.Tx == 0 && m.Ty == 0
}

// Game converts the wire coordinates back into a board move.
func (m Move) Game() (game.Move, bool) {
	return game.MoveFromOneBased(m.Sx, m.Sy, m.Tx, m.Ty)
}
