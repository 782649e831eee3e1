package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"ataxx/game"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrMissingField = errors.New("missing field")
	ErrUnknownType  = errors.New("unknown message type")
)

// envelope is the union of every field on the wire. Pointers tell a
// missing field apart from a zero value.
type envelope struct {
	Type        *string        `json:"type"`
	Username    *string        `json:"username,omitempty"`
	FirstPlayer *string        `json:"first_player,omitempty"`
	NextPlayer  *string        `json:"next_player,omitempty"`
	Board       []string       `json:"board,omitempty"`
	Timeout     *float64       `json:"timeout,omitempty"`
	Scores      map[string]int `json:"scores,omitempty"`
	Reason      *string        `json:"reason,omitempty"`
	Sx          *int           `json:"sx,omitempty"`
	Sy          *int           `json:"sy,omitempty"`
	Tx          *int           `json:"tx,omitempty"`
	Ty          *int           `json:"ty,omitempty"`
}

// Decode parses one protocol line and validates the fields its type requires.
func Decode(line []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	}

	switch kind := Kind(*env.Type); kind {
	case KindRegister:
		username, err := requireString(kind, "username", env.Username)
		if err != nil {
			return nil, err
		}
		return Register{Username: username}, nil

	case KindRegisterAck:
		return RegisterAck{}, nil

	case KindGameStart:
		first, err := requireString(kind, "first_player", env.FirstPlayer)
		if err != nil {
			return nil, err
		}
		return GameStart{FirstPlayer: first}, nil

	case KindYourTurn:
		board, err := requireBoard(kind, env.Board)
		if err != nil {
			return nil, err
		}
		if env.Timeout == nil {
			return nil, fmt.Errorf("%w: %s.timeout", ErrMissingField, kind)
		}
		return YourTurn{Board: board, Timeout: *env.Timeout}, nil

	case KindMove:
		username, err := requireString(kind, "username", env.Username)
		if err != nil {
			return nil, err
		}
		if env.Sx == nil || env.Sy == nil || env.Tx == nil || env.Ty == nil {
			return nil, fmt.Errorf("%w: %s coordinates", ErrMissingField, kind)
		}
		return Move{Username: username, Sx: *env.Sx, Sy: *env.Sy, Tx: *env.Tx, Ty: *env.Ty}, nil

	case KindMoveOK:
		board, err := requireBoard(kind, env.Board)
		if err != nil {
			return nil, err
		}
		return MoveOK{Board: board}, nil

	case KindInvalidMove:
		msg := InvalidMove{}
		if env.Reason != nil {
			msg.Reason = *env.Reason
		}
		return msg, nil

	case KindPass:
		username, err := requireString(kind, "username", env.Username)
		if err != nil {
			return nil, err
		}
		next, err := requireString(kind, "next_player", env.NextPlayer)
		if err != nil {
			return nil, err
		}
		return Pass{Username: username, NextPlayer: next}, nil

	case KindGameOver:
		// Every field is optional: the end of the game must never be dropped.
		msg := GameOver{Scores: env.Scores}
		if env.Board != nil {
			board, err := requireBoard(kind, env.Board)
			if err != nil {
				return nil, err
			}
			msg.Board = &board
		}
		return msg, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
}

// Encode renders msg as a single JSON line without the trailing newline.
func Encode(msg Message) ([]byte, error) {
	kind := string(msg.Kind())
	env := envelope{Type: &kind}

	switch m := msg.(type) {
	case Register:
		env.Username = &m.Username
	case RegisterAck:
	case GameStart:
		env.FirstPlayer = &m.FirstPlayer
	case YourTurn:
		env.Board = m.Board.Rows()
		env.Timeout = &m.Timeout
	case Move:
		env.Username = &m.Username
		env.Sx, env.Sy, env.Tx, env.Ty = &m.Sx, &m.Sy, &m.Tx, &m.Ty
	case MoveOK:
		env.Board = m.Board.Rows()
	case InvalidMove:
		if m.Reason != "" {
			env.Reason = &m.Reason
		}
	case Pass:
		env.Username = &m.Username
		env.NextPlayer = &m.NextPlayer
	case GameOver:
		if m.Board != nil {
			env.Board = m.Board.Rows()
		}
		env.Scores = m.Scores
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	return data, nil
}

func requireString(kind Kind, field string, value *string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingField, kind, field)
	}
	return *value, nil
}

func requireBoard(kind Kind, rows []string) (game.Board, error) {
	if rows == nil {
		return game.Board{}, fmt.Errorf("%w: %s.board", ErrMissingField, kind)
	}
	board, err := game.ParseRows(rows)
	if err != nil {
		return game.Board{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return board, nil
}
