package player

import (
	"github.com/rs/zerolog/log"

	"ataxx/game"
)

// Renderer shows boards received from the server.
type Renderer interface {
	Render(title string, board game.Board)
}

// LogRenderer writes boards to the global logger, one row per line.
type LogRenderer struct{}

func (LogRenderer) Render(title string, board game.Board) {
	log.Info().Msgf("%s (R %d, B %d)\n%s", title, board.Count(game.First), board.Count(game.Second), board)
}
