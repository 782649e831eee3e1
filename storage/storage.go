package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"ataxx/experiments/metrics"
	"ataxx/game"
)

var ErrUnknownGame = errors.New("unknown game")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	side TEXT NOT NULL,
	opponent TEXT NOT NULL DEFAULT '',
	started_at INTEGER NOT NULL,
	ended_at INTEGER,
	own_score INTEGER NOT NULL DEFAULT 0,
	opponent_score INTEGER NOT NULL DEFAULT 0,
	result TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS moves (
	game_id TEXT NOT NULL REFERENCES games(id),
	turn INTEGER NOT NULL,
	passed INTEGER NOT NULL,
	sx INTEGER NOT NULL,
	sy INTEGER NOT NULL,
	tx INTEGER NOT NULL,
	ty INTEGER NOT NULL,
	score INTEGER NOT NULL,
	candidates INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	board TEXT NOT NULL,
	PRIMARY KEY (game_id, turn)
);
`

const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// Game is one row of the games table, seen from the recording player.
type Game struct {
	ID            uuid.UUID
	Username      string
	Side          game.Side
	Opponent      string
	StartedAt     time.Time
	EndedAt       time.Time // zero while the game is running
	OwnScore      int
	OpponentScore int
	Result        string
}

// Move is one reply sent during a game.
type Move struct {
	GameID     uuid.UUID
	Turn       int
	Passed     bool
	Sx, Sy     int
	Tx, Ty     int
	Score      int
	Candidates int
	Duration   time.Duration
	Board      game.Board // board the reply was computed on
}

// Store records games and moves in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Debug().Msgf("database initialized at %s", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StartGame opens a game record for username playing side.
func (s *Store) StartGame(username string, side game.Side) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.Exec(
		`INSERT INTO games (id, username, side, started_at) VALUES (?, ?, ?, ?)`,
		id.String(), username, side.String(), time.Now().UnixNano(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start game: %w", err)
	}
	return id, nil
}

// RecordMove stores the reply for the given turn. A zero move with passed set records a pass.
func (s *Store) RecordMove(id uuid.UUID, turn int, board game.Board, move game.Move, passed bool, search metrics.SearchMetric) error {
	var sx, sy, tx, ty int
	if !passed {
		sx, sy, tx, ty = move.OneBased()
	}
	_, err := s.db.Exec(
		`INSERT INTO moves (game_id, turn, passed, sx, sy, tx, ty, score, candidates, duration_us, board)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), turn, passed, sx, sy, tx, ty,
		search.Score, search.Candidates, search.Duration.Microseconds(),
		strings.Join(board.Rows(), "/"),
	)
	if err != nil {
		return fmt.Errorf("failed to record move %d of %s: %w", turn, id, err)
	}
	return nil
}

// FinishGame closes the record with the final scores, keyed by username.
func (s *Store) FinishGame(id uuid.UUID, scores map[string]int) error {
	var username string
	if err := s.db.QueryRow(`SELECT username FROM games WHERE id = ?`, id.String()).Scan(&username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrUnknownGame, id)
		}
		return fmt.Errorf("failed to load game %s: %w", id, err)
	}

	own := scores[username]
	opponent, opponentScore := "", 0
	for name, score := range scores {
		if name != username {
			opponent, opponentScore = name, score
		}
	}
	result := ResultDraw
	switch {
	case own > opponentScore:
		result = ResultWin
	case own < opponentScore:
		result = ResultLoss
	}

	_, err := s.db.Exec(
		`UPDATE games SET opponent = ?, ended_at = ?, own_score = ?, opponent_score = ?, result = ? WHERE id = ?`,
		opponent, time.Now().UnixNano(), own, opponentScore, result, id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to finish game %s: %w", id, err)
	}
	return nil
}

// Games lists every recorded game, oldest first.
func (s *Store) Games() ([]Game, error) {
	rows, err := s.db.Query(`SELECT id, username, side, opponent, started_at, ended_at, own_score, opponent_score, result
		FROM games ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		var (
			g       Game
			id      string
			side    string
			started int64
			ended   sql.NullInt64
		)
		if err := rows.Scan(&id, &g.Username, &side, &g.Opponent, &started, &ended, &g.OwnScore, &g.OpponentScore, &g.Result); err != nil {
			return nil, fmt.Errorf("failed to read game: %w", err)
		}
		if g.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to read game id %q: %w", id, err)
		}
		g.Side = sideFromString(side)
		g.StartedAt = time.Unix(0, started)
		if ended.Valid {
			g.EndedAt = time.Unix(0, ended.Int64)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Moves lists the replies of one game in turn order.
func (s *Store) Moves(id uuid.UUID) ([]Move, error) {
	rows, err := s.db.Query(`SELECT turn, passed, sx, sy, tx, ty, score, candidates, duration_us, board
		FROM moves WHERE game_id = ? ORDER BY turn`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list moves of %s: %w", id, err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var (
			m        = Move{GameID: id}
			duration int64
			board    string
		)
		if err := rows.Scan(&m.Turn, &m.Passed, &m.Sx, &m.Sy, &m.Tx, &m.Ty, &m.Score, &m.Candidates, &duration, &board); err != nil {
			return nil, fmt.Errorf("failed to read move: %w", err)
		}
		m.Duration = time.Duration(duration) * time.Microsecond
		if m.Board, err = game.ParseRows(strings.Split(board, "/")); err != nil {
			return nil, fmt.Errorf("failed to read board of move %d: %w", m.Turn, err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

func sideFromString(s string) game.Side {
	for _, side := range []game.Side{game.First, game.Second} {
		if side.String() == s {
			return side
		}
	}
	return game.NoSide
}
