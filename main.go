package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ataxx/communication"
	"ataxx/communication/client"
	"ataxx/communication/server"
	"ataxx/config"
	"ataxx/experiments"
	"ataxx/experiments/metrics"
	"ataxx/player"
	"ataxx/searcher"
	"ataxx/searcher/agent"
	"ataxx/storage"
)

const usage = "usage: ataxx -ip <server_ip> -port <server_port> -username <name> [options]"

// errFlags marks errors the flag package has already reported.
var errFlags = errors.New("invalid flags")

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		if !errors.Is(err, errFlags) {
			fmt.Fprintln(stderr, err)
			fmt.Fprintln(stderr, usage)
		}
		return 1
	}
	setupLogging(cfg.Log, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Mode {
	case config.ModeServe:
		return runServer(ctx, cfg)
	case config.ModeArena:
		return runArena(ctx, cfg)
	default:
		return runPlayer(ctx, cfg)
	}
}

// parseConfig layers defaults, the config file, the environment and flags.
func parseConfig(args []string, stderr io.Writer) (config.Config, error) {
	fs := flag.NewFlagSet("ataxx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML config file")
	ip := fs.String("ip", "", "Server IP address")
	port := fs.String("port", "", "Server port")
	username := fs.String("username", "", "Username to register with")
	depth := fs.Int("depth", 0, "Rollout depth, the candidate move included")
	transport := fs.String("transport", "", "Transport: tcp or websocket")
	record := fs.String("record", "", "Record games into this SQLite file")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	mode := fs.String("mode", "", "Mode: player, serve or arena")
	games := fs.Int("games", 0, "Arena games per match up")
	out := fs.String("out", "", "Arena output directory")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config.Config{}, err
		}
		return config.Config{}, fmt.Errorf("%w: %w", errFlags, err)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ip":
			cfg.Server.IP = *ip
		case "port":
			cfg.Server.Port = *port
		case "username":
			cfg.Username = *username
		case "depth":
			cfg.Search.Depth = *depth
		case "transport":
			cfg.Server.Transport = *transport
		case "record":
			cfg.Record = config.Record{Enabled: *record != "", Path: *record}
		case "log-level":
			cfg.Log.Level = *logLevel
		case "mode":
			cfg.Mode = config.Mode(*mode)
		case "games":
			cfg.Arena.Games = *games
		case "out":
			cfg.Arena.OutDir = *out
		}
	})

	return cfg, cfg.Validate()
}

func setupLogging(c config.Log, out io.Writer) {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly})
	} else {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	}
}

func newSearcher(c config.Search) *searcher.Searcher {
	return searcher.NewSearcher(
		searcher.WithDepth(c.Depth),
		searcher.WithCornerBonus(c.CornerBonus),
		searcher.WithEdgeBonus(c.EdgeBonus),
		searcher.WithMetrics(),
	)
}

func runPlayer(ctx context.Context, cfg config.Config) int {
	ch, err := client.Dial(ctx, communication.Transport(cfg.Server.Transport), cfg.Addr(), cfg.Server.Path)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect")
		return 1
	}
	defer ch.Close()
	log.Info().Msgf("connected to %s", cfg.Addr())

	options := []player.Option{}
	if cfg.Record.Enabled {
		store, err := storage.Open(cfg.Record.Path)
		if err != nil {
			log.Error().Err(err).Msg("failed to open game records")
			return 1
		}
		defer store.Close()
		options = append(options, player.WithRecorder(store))
	}

	p := player.NewPlayer(cfg.Username, ch, agent.NewGreedyAgent(newSearcher(cfg.Search)), options...)
	if err := p.Run(ctx); err != nil {
		if ctx.Err() != nil {
			log.Info().Msg("shutting down")
			return 0
		}
		log.Error().Err(err).Msg("player stopped")
		return 1
	}
	return 0
}

func runServer(ctx context.Context, cfg config.Config) int {
	s, err := server.Listen(net.JoinHostPort(cfg.Server.IP, cfg.Server.Port),
		server.WithTransport(communication.Transport(cfg.Server.Transport)),
		server.WithPath(cfg.Server.Path),
		server.WithTimeout(cfg.Server.Timeout),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to start server")
		return 1
	}
	defer s.Close()

	for {
		result, err := s.Serve(ctx)
		if ctx.Err() != nil {
			log.Info().Msg("shutting down")
			return 0
		}
		if err != nil && !errors.Is(err, server.ErrPlayerLeft) {
			log.Error().Err(err).Msg("server stopped")
			return 1
		}
		if err != nil {
			log.Warn().Err(err).Msg("match abandoned")
		}
		log.Info().Msgf("match %s: winner %q, scores %v", result.ID, result.Winner, result.Scores)
	}
}

func runArena(ctx context.Context, cfg config.Config) int {
	baseline := experiments.Baseline
	baseline.Depth = cfg.Search.Depth
	baseline.CornerBonus = cfg.Search.CornerBonus
	baseline.EdgeBonus = cfg.Search.EdgeBonus

	arena := experiments.NewArena(
		experiments.WithGames(cfg.Arena.Games),
		experiments.WithConcurrency(cfg.Arena.Concurrency),
		experiments.WithOutDir(cfg.Arena.OutDir),
	)
	configs := append([]metrics.AgentConfig{baseline}, experiments.Challengers...)
	result, err := arena.Run(ctx, "arena", configs, experiments.MatchUps(baseline))
	if err != nil {
		log.Error().Err(err).Msg("arena failed")
		return 1
	}
	log.Info().Msgf("played %d games, records in %s", len(result.Games), result.Dir)
	return 0
}
