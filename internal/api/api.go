// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/api/auth"
	"github.com/good-yellow-bee/netwatch/internal/api/health"
	"github.com/good-yellow-bee/netwatch/internal/monitor"
	"github.com/good-yellow-bee/netwatch/internal/security"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address          string
	JWTSecret        []byte
	TLSEnabled       bool
	TLSCertFile      string
	TLSKeyFile       string
	TLSClientCAFile  string // requires client certificates signed by this CA
	AccessTokenTTL   time.Duration
	RateLimitPerIP   int // login requests per minute per client IP
	RateLimitPerUser int // API requests per minute per user
	LockoutThreshold int
	LockoutDuration  time.Duration
	APIKeys          []string // credentials accepted on POST /samples
	Version          string
	Verbose          bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 15 * time.Minute
	}
	if c.RateLimitPerIP == 0 {
		c.RateLimitPerIP = 10
	}
	if c.RateLimitPerUser == 0 {
		c.RateLimitPerUser = 300
	}
	if c.LockoutThreshold == 0 {
		c.LockoutThreshold = 5
	}
	if c.LockoutDuration == 0 {
		c.LockoutDuration = 15 * time.Minute
	}
	if c.Version == "" {
		c.Version = "dev"
	}
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	service       *monitor.Service
	users         *auth.Directory
	logger        *zap.Logger
	server        *http.Server
	handler       http.Handler
	healthHandler *health.Handler
}

// New creates a new API server.
func New(cfg *Config, svc *monitor.Service, users *auth.Directory, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("monitor service is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user directory is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		service:       svc,
		users:         users,
		logger:        logger.With(zap.String("component", "api")),
		healthHandler: health.NewHandler(cfg.Version),
	}
	s.healthHandler.RegisterChecker(health.NewThresholdsChecker(svc))

	s.handler = s.setupRouter()
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if cfg.TLSEnabled {
		tlsConfig, err := security.ServerTLSConfig(security.TLSFiles{
			CertFile:     cfg.TLSCertFile,
			KeyFile:      cfg.TLSKeyFile,
			ClientCAFile: cfg.TLSClientCAFile,
		})
		if err != nil {
			return nil, fmt.Errorf("configure TLS: %w", err)
		}
		s.server.TLSConfig = tlsConfig
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP API listening", zap.String("address", ln.Addr().String()), zap.Bool("tls", s.config.TLSEnabled))
		var err error
		if s.config.TLSEnabled {
			// Certificates are already loaded into TLSConfig.
			err = s.server.ServeTLS(ln, "", "")
		} else {
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	s.healthHandler.RegisterChecker(c)
}
