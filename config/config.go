package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"ataxx/communication"
	"ataxx/meta"
)

var ErrInvalid = errors.New("invalid configuration")

type Mode string

const (
	ModePlayer Mode = "player"
	ModeServe  Mode = "serve"
	ModeArena  Mode = "arena"
)

type Server struct {
	IP        string  `yaml:"ip"`
	Port      string  `yaml:"port"`
	Transport string  `yaml:"transport"`
	Path      string  `yaml:"path"`
	Timeout   float64 `yaml:"timeout"`
}

type Search struct {
	Depth       int `yaml:"depth"`
	CornerBonus int `yaml:"corner_bonus"`
	EdgeBonus   int `yaml:"edge_bonus"`
}

type Record struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type Arena struct {
	Games       int    `yaml:"games"`
	OutDir      string `yaml:"out_dir"`
	Concurrency int    `yaml:"concurrency"`
}

type Config struct {
	Mode     Mode   `yaml:"mode"`
	Server   Server `yaml:"server"`
	Username string `yaml:"username"`
	Search   Search `yaml:"search"`
	Record   Record `yaml:"record"`
	Log      Log    `yaml:"log"`
	Arena    Arena  `yaml:"arena"`
}

func Default() Config {
	return Config{
		Mode: ModePlayer,
		Server: Server{
			Transport: string(communication.TCP),
			Path:      "/",
			Timeout:   5,
		},
		Search: Search{
			Depth:       meta.DEFAULT_DEPTH,
			CornerBonus: meta.CORNER_BONUS,
			EdgeBonus:   meta.EDGE_BONUS,
		},
		Record: Record{Path: "ataxx.db"},
		Log:    Log{Level: "info", Pretty: true},
		Arena: Arena{
			Games:       10,
			OutDir:      "results",
			Concurrency: runtime.NumCPU(),
		},
	}
}

// Load reads a YAML file on top of the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return c, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}
	return c, nil
}

// ApplyEnv overrides the connection settings from ATAXX_IP, ATAXX_PORT and ATAXX_USERNAME.
func (c *Config) ApplyEnv() {
	if value, ok := os.LookupEnv("ATAXX_IP"); ok && value != "" {
		c.Server.IP = value
	}
	if value, ok := os.LookupEnv("ATAXX_PORT"); ok && value != "" {
		c.Server.Port = value
	}
	if value, ok := os.LookupEnv("ATAXX_USERNAME"); ok && value != "" {
		c.Username = value
	}
}

// Validate checks the settings needed to run in c.Mode.
func (c Config) Validate() error {
	switch c.Mode {
	case ModePlayer:
		if c.Username == "" {
			return fmt.Errorf("%w: username is required", ErrInvalid)
		}
		if c.Server.IP == "" {
			return fmt.Errorf("%w: server ip is required", ErrInvalid)
		}
		if err := validatePort(c.Server.Port); err != nil {
			return err
		}
	case ModeServe:
		if err := validatePort(c.Server.Port); err != nil {
			return err
		}
		if c.Server.Timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalid)
		}
	case ModeArena:
		if c.Arena.Games <= 0 {
			return fmt.Errorf("%w: arena games must be positive", ErrInvalid)
		}
		if c.Arena.Concurrency <= 0 {
			return fmt.Errorf("%w: arena concurrency must be positive", ErrInvalid)
		}
		if c.Arena.OutDir == "" {
			return fmt.Errorf("%w: arena out_dir is required", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, c.Mode)
	}

	switch communication.Transport(c.Server.Transport) {
	case communication.TCP, communication.WebSocket:
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalid, c.Server.Transport)
	}
	if c.Search.Depth < 1 || c.Search.Depth > meta.MAX_DEPTH {
		return fmt.Errorf("%w: depth must be between 1 and %d, got %d", ErrInvalid, meta.MAX_DEPTH, c.Search.Depth)
	}
	if c.Search.CornerBonus < 0 || c.Search.EdgeBonus < 0 {
		return fmt.Errorf("%w: bonuses must not be negative", ErrInvalid)
	}
	if c.Record.Enabled && c.Record.Path == "" {
		return fmt.Errorf("%w: record path is required", ErrInvalid)
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// Addr joins the server ip and port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.IP, c.Server.Port)
}

func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("%w: server port is required", ErrInvalid)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: port %q is not a number between 1 and 65535", ErrInvalid, port)
	}
	return nil
}
