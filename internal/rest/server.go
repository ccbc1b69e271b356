package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/KilimcininKorOglu/nspid/internal/config"
	"github.com/KilimcininKorOglu/nspid/internal/logging"
	"github.com/KilimcininKorOglu/nspid/internal/server"
)

// ServerConfig holds REST server configuration.
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimit    int
	CORSOrigins  []string
}

// DefaultServerConfig returns default configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:      ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// ConfigFrom builds the REST server configuration from the loaded
// configuration.
func ConfigFrom(cfg config.RESTConfig) *ServerConfig {
	out := DefaultServerConfig()
	if cfg.Address != "" {
		out.Address = cfg.Address
	}
	if cfg.ReadTimeout > 0 {
		out.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		out.WriteTimeout = cfg.WriteTimeout
	}
	out.RateLimit = cfg.RateLimit
	out.CORSOrigins = cfg.CORSOrigins
	return out
}

// Server is the JSON/HTTP adapter.
type Server struct {
	config   *ServerConfig
	logger   logging.Logger
	handlers *Handlers
	router   *Router
	server   *http.Server
}

// NewServer creates a REST server over an NSPI server.
func NewServer(cfg *ServerConfig, srv *server.Server, logger logging.Logger) *Server {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		handlers: NewHandlers(srv, logger),
		router:   NewRouter(),
	}

	s.setupRoutes()
	s.setupMiddleware()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/nspi/v1/health", s.handlers.HandleHealth)
	s.router.POST("/nspi/v1/{operation}", s.handlers.HandleOperation)
}

func (s *Server) setupMiddleware() {
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(ConnectionTrackingMiddleware(s.handlers))

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(CORSMiddleware(s.config.CORSOrigins))
	}

	if s.config.RateLimit > 0 {
		s.router.Use(RateLimitMiddleware(s.config.RateLimit))
	}
}

// Handler returns the routed handler with its middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on the configured address and serves until
// Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) ListenAndServe() error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves requests on listener until Shutdown is called.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("REST server started", "address", listener.Addr().String())

	err := s.server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the REST server. A server shut down before
// it serves makes the later Serve return nil at once.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("REST server stopped")
	return nil
}
