// Package server provides HTTP server lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinsight/cdsengine/internal/core/api"
	"github.com/clinsight/cdsengine/internal/core/auth"
	"github.com/clinsight/cdsengine/internal/core/config"
)

// HTTPServer manages the echo server lifecycle.
type HTTPServer struct {
	echo   *echo.Echo
	config *config.ServerConfig
	logger zerolog.Logger
}

// NewHTTPServer creates the echo server with middleware and route registration.
func NewHTTPServer(cfg *config.ServerConfig, service *api.Service, authenticator *auth.Authenticator, logger zerolog.Logger) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(logger))
	e.Use(RequestID())
	e.Use(Logger(logger))

	service.Register(e, authenticator)

	return &HTTPServer{
		echo:   e,
		config: cfg,
		logger: logger,
	}, nil
}

// Start binds the listener and serves HTTP requests until Shutdown is called.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info().Str("addr", addr).Msg("http server listening")

	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, forcing close when the configured
// shutdown timeout elapses.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		if closeErr := s.echo.Close(); closeErr != nil {
			return fmt.Errorf("graceful shutdown failed (%w), forced close failed: %w", err, closeErr)
		}
		return fmt.Errorf("graceful shutdown timeout, forced close: %w", err)
	}
	return nil
}
