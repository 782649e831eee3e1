package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"ataxx/communication"
	"ataxx/meta"
)

var (
	ErrClosed     = errors.New("server closed")
	ErrPlayerLeft = errors.New("player left the match")
)

const DEFAULT_TIMEOUT = 5.0

type Option func(s *Server)

func WithTransport(transport communication.Transport) Option {
	return func(s *Server) {
		if transport == communication.TCP || transport == communication.WebSocket {
			s.transport = transport
		}
	}
}

// WithPath sets the HTTP path upgraded to a websocket.
func WithPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.path = path
		}
	}
}

// WithTimeout sets the per-move timeout, in seconds, announced with every your_turn.
func WithTimeout(seconds float64) Option {
	return func(s *Server) {
		if seconds > 0 {
			s.timeout = seconds
		}
	}
}

func WithMaxTurns(turns int) Option {
	return func(s *Server) {
		if turns > 0 {
			s.maxTurns = turns
		}
	}
}

// Server hosts matches between two remote players and referees them.
type Server struct {
	transport communication.Transport
	path      string
	timeout   float64
	maxTurns  int

	listener net.Listener
	http     *http.Server
	conns    chan communication.Channel
	done     chan struct{}
	once     sync.Once
}

// Listen binds addr and starts accepting connections. Matches are played by Serve.
func Listen(addr string, options ...Option) (*Server, error) {
	s := &Server{ // Default values
		transport: communication.TCP,
		path:      "/",
		timeout:   DEFAULT_TIMEOUT,
		maxTurns:  meta.MAX_TURNS,
		conns:     make(chan communication.Channel),
		done:      make(chan struct{}),
	}
	for _, option := range options {
		option(s)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	switch s.transport {
	case communication.WebSocket:
		mux := http.NewServeMux()
		mux.HandleFunc(s.path, s.handleWebSocket)
		s.http = &http.Server{Handler: mux}
		go func() {
			if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("websocket server stopped")
			}
		}()
	default:
		go s.accept()
	}

	log.Info().Msgf("listening on %s (%s)", listener.Addr(), s.transport)
	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.http != nil {
			err = s.http.Close()
		} else {
			err = s.listener.Close()
		}
	})
	return err
}

func (s *Server) accept() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Error().Err(err).Msg("failed to accept connection")
			}
			return
		}
		s.hand(communication.NewLineChannel(conn))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msgf("failed to upgrade %s", r.RemoteAddr)
		return
	}
	s.hand(communication.NewWebSocketChannel(conn))
}

// hand passes a new connection to the running match.
func (s *Server) hand(ch communication.Channel) {
	select {
	case s.conns <- ch:
	case <-s.done:
		ch.Close()
	}
}
