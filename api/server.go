package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/saeidalz13/battleship-fleet/internal/config"
)

const (
	defaultPort = 8000
	wsPath      = "GET /battleship"
)

type Server struct {
	port           int
	stage          string
	allowedOrigins map[string]bool
	processor      *RequestProcessor
}

type Option func(*Server) error

func NewServer(processor *RequestProcessor, optFuncs ...Option) *Server {
	server := Server{
		port:           defaultPort,
		stage:          config.StageDev,
		allowedOrigins: make(map[string]bool),
		processor:      processor,
	}
	for _, opt := range optFuncs {
		if err := opt(&server); err != nil {
			panic(err)
		}
	}

	if server.stage == config.StageProd {
		server.processor.upgrader.CheckOrigin = func(r *http.Request) bool {
			return server.allowedOrigins[r.Header.Get("Origin")]
		}
	}
	return &server
}

func WithPort(port int) Option {
	return func(s *Server) error {
		if port < 1 || port > 65535 {
			return fmt.Errorf("port out of range: %d", port)
		}
		s.port = port
		return nil
	}
}

func WithStage(stage string) Option {
	return func(s *Server) error {
		if stage != config.StageDev && stage != config.StageProd {
			return fmt.Errorf("stage must be prod or dev")
		}
		s.stage = stage
		return nil
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) error {
		for _, origin := range origins {
			s.allowedOrigins[origin] = true
		}
		return nil
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(wsPath, s.processor)
	return mux
}

func (s *Server) ListenAndServe() error {
	log.Printf("Listening to port %d\tstage: %s\n", s.port, s.stage)
	return http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", s.port), s.Handler())
}
