package engine

import (
	"context"
	"errors"
	"time"

	"ataxx/experiments/metrics"
	"ataxx/game"
	"ataxx/gamemaster"
	"ataxx/searcher/agent"

	"github.com/rs/zerolog/log"
)

// Local plays two agents against each other in-process, refereed by gamemaster.
type Local struct {
	Referee *gamemaster.Referee
	Agents  []agent.Agent // index 0 plays First
}

func LocalEngine(players []string, agents []agent.Agent, options ...gamemaster.Option) *Local {
	if len(players) != len(agents) {
		panic("number of players does not match number of agents")
	}
	if len(players) != 2 {
		panic("need exactly two players")
	}

	return &Local{
		Referee: gamemaster.NewReferee(players[0], players[1], options...),
		Agents:  agents,
	}
}

// Run executes the entire game loop until the referee declares the game over.
func (e *Local) Run(ctx context.Context) (string, metrics.GameMetric, []metrics.MoveMetric, error) {
	ref := e.Referee
	gameMetric := metrics.GameMetric{
		StartingPlayer: ref.ToMove().String(),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Debug().Msgf("player %s is starting", ref.ToMove())

	step := 1
	for !ref.IsOver() {
		if err := ctx.Err(); err != nil {
			return "", gameMetric, moveMetrics, err
		}

		side := ref.ToMove()
		username := ref.Player(side)
		move, ok, search := e.Agents[side-1].FindMove(ref.State().Board, side)
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       side.String(),
			SearchMetric: search,
		})

		var err error
		if ok {
			_, err = ref.Submit(username, move)
		} else {
			_, err = ref.Pass(username)
		}
		if errors.Is(err, gamemaster.ErrIllegalMove) {
			log.Warn().Err(err).Msgf("agent for %s returned an invalid move, falling back", side)
			err = e.fallback(username, side)
		}
		if err != nil {
			return "", gameMetric, moveMetrics, err
		}
		step++
	}

	scores := ref.State().Scores()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = ref.Turns()
	gameMetric.FirstScore = scores[game.First]
	gameMetric.SecondScore = scores[game.Second]
	gameMetric.Winner = ref.State().Winner().String()
	if ref.State().Winner() == game.NoSide {
		gameMetric.Winner = ""
	}

	log.Debug().Msgf("game over after %d turns: %d-%d", ref.Turns(), gameMetric.FirstScore, gameMetric.SecondScore)
	return ref.Winner(), gameMetric, moveMetrics, nil
}

// fallback plays the first legal move, or passes when there is none.
func (e *Local) fallback(username string, side game.Side) error {
	if e.Referee.IsOver() || e.Referee.ToMove() != side {
		return nil // The referee already forfeited the turn
	}
	moves := e.Referee.State().LegalMoves()
	if len(moves) == 0 {
		_, err := e.Referee.Pass(username)
		return err
	}
	_, err := e.Referee.Submit(username, moves[0])
	return err
}
