package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lexicon-health/lexicon/internal/config"
	"github.com/lexicon-health/lexicon/internal/infrastructure/monitoring/logging"
)

// Server wraps the standard library HTTP server with configured timeouts and
// graceful shutdown.
type Server struct {
	srv *http.Server
	log logging.Logger
}

// NewServer creates a server for handler on the configured port.
func NewServer(cfg config.ServerConfig, handler http.Handler, log logging.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.log.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
