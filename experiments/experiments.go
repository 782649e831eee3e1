package experiments

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ataxx/engine"
	"ataxx/experiments/metrics"
	"ataxx/meta"
	"ataxx/searcher"
	"ataxx/searcher/agent"
)

const NumGames = 10 // Per match up

const (
	KindGreedy = "greedy"
	KindRandom = "random"
)

var (
	Baseline = metrics.AgentConfig{ID: 0, Kind: KindGreedy, Depth: meta.DEFAULT_DEPTH, CornerBonus: meta.CORNER_BONUS, EdgeBonus: meta.EDGE_BONUS}

	Challengers = []metrics.AgentConfig{
		{ID: 1, Kind: KindGreedy, Depth: 3, CornerBonus: meta.CORNER_BONUS, EdgeBonus: meta.EDGE_BONUS},
		{ID: 2, Kind: KindGreedy, Depth: 2, CornerBonus: 5, EdgeBonus: meta.EDGE_BONUS}, // Earlier evaluator settings
		{ID: 3, Kind: KindGreedy, Depth: 7, CornerBonus: meta.CORNER_BONUS, EdgeBonus: meta.EDGE_BONUS},
		{ID: 4, Kind: KindRandom, Seed: 1},
	}
)

// MatchUps pairs baseline against every challenger.
func MatchUps(baseline metrics.AgentConfig) [][]metrics.AgentConfig {
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range Challengers {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}
	return matchUps
}

type Option func(a *Arena)

func WithGames(games int) Option {
	return func(a *Arena) {
		if games > 0 {
			a.games = games
		}
	}
}

func WithConcurrency(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func WithOutDir(dir string) Option {
	return func(a *Arena) {
		if dir != "" {
			a.outDir = dir
		}
	}
}

// Arena plays batches of local matches between agent configurations and
// stores the records as CSV.
type Arena struct {
	games       int
	concurrency int
	outDir      string
}

type Result struct {
	Dir   string
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
}

func NewArena(options ...Option) *Arena {
	a := &Arena{ // Default values
		games:       NumGames,
		concurrency: runtime.NumCPU(),
		outDir:      "results",
	}
	for _, option := range options {
		option(a)
	}
	return a
}

type job struct {
	id     int
	first  metrics.AgentConfig
	second metrics.AgentConfig
}

type played struct {
	game  metrics.GameRecord
	moves []metrics.MoveRecord
}

// Run plays a.games games per match up, alternating which agent moves first,
// and writes agent_configs.csv, game_records.csv and move_records.csv under
// <outDir>/<name>/<timestamp>.
func (a *Arena) Run(ctx context.Context, name string, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) (Result, error) {
	var jobs []job
	for _, matchUp := range matchUps {
		if len(matchUp) != 2 {
			return Result{}, fmt.Errorf("match up needs two agents, got %d", len(matchUp))
		}
		for i := 0; i < a.games; i++ {
			first, second := matchUp[0], matchUp[1]
			if i%2 == 1 {
				first, second = second, first
			}
			jobs = append(jobs, job{id: len(jobs) + 1, first: first, second: second})
		}
	}

	log.Info().Msgf("starting %s experiment with %d games...", name, len(jobs))

	results := make([]played, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			result, err := runGame(ctx, j)
			if err != nil {
				return fmt.Errorf("game %d: %w", j.id, err)
			}
			results[i] = result
			log.Info().Msgf("completed game %d of %d (agent %d vs agent %d) with winner: %q",
				j.id, len(jobs), j.first.ID, j.second.ID, result.game.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	log.Info().Msgf("completed %s experiment", name)

	result := Result{}
	for _, r := range results {
		result.Games = append(result.Games, r.game)
		result.Moves = append(result.Moves, r.moves...)
	}

	writer, err := metrics.NewWriter(a.outDir, name)
	if err != nil {
		return result, fmt.Errorf("failed to create experiment writer: %w", err)
	}
	result.Dir = writer.Dir()
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return result, err
	}
	if err := writer.WriteGameRecords(result.Games); err != nil {
		return result, err
	}
	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return result, err
	}
	log.Info().Msgf("stored records in %s", result.Dir)
	return result, nil
}

// runGame executes a single game between two agents.
func runGame(ctx context.Context, j job) (played, error) {
	players := []string{"agent1", "agent2"}
	agents := []agent.Agent{NewAgent(j.first, j.id), NewAgent(j.second, j.id)}
	e := engine.LocalEngine(players, agents)

	_, gameMetric, moveMetrics, err := e.Run(ctx)
	if err != nil {
		return played{}, err
	}

	result := played{game: metrics.GameRecord{
		ID:         j.id,
		Agent1:     j.first.ID,
		Agent2:     j.second.ID,
		GameMetric: gameMetric,
	}}
	for _, mm := range moveMetrics {
		result.moves = append(result.moves, metrics.MoveRecord{Game: j.id, MoveMetric: mm})
	}
	return result, nil
}

// NewAgent builds the agent described by config. Random agents are reseeded per game.
func NewAgent(config metrics.AgentConfig, game int) agent.Agent {
	switch config.Kind {
	case KindRandom:
		return agent.NewRandomAgent(config.Seed + uint64(game))
	case KindGreedy, "":
		return agent.NewGreedyAgent(searcher.NewSearcher(
			searcher.WithDepth(config.Depth),
			searcher.WithCornerBonus(config.CornerBonus),
			searcher.WithEdgeBonus(config.EdgeBonus),
			searcher.WithMetrics(),
		))
	default:
		panic(fmt.Sprintf("unknown agent kind %q", config.Kind))
	}
}
