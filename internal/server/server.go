// Package server exposes the screenshot service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pageshot/internal/config"
	"github.com/xkilldash9x/pageshot/internal/options"
)

// Server owns the gin engine and the listening http.Server.
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// New wires the routes and middleware. Rate limiting and token auth apply
// to the screenshot route only; /healthz stays open.
func New(cfg *config.Config, capturer Capturer, logger *zap.Logger) *Server {
	logger = logger.Named("http")

	engine := gin.New()
	engine.Use(
		recovery(logger),
		requestID(),
		requestLogger(logger),
		errorHandler(logger),
	)

	engine.GET("/healthz", healthz)

	var chain []gin.HandlerFunc
	if cfg.Server.RateLimit.Enabled {
		chain = append(chain, rateLimit(cfg.Server.RateLimit))
	}
	if cfg.Server.Auth.Enabled {
		chain = append(chain, requireToken(cfg.Server.Auth))
	}
	parser := options.Parser{MaxTimeout: cfg.Capture.MaxTimeout}
	chain = append(chain, screenshot(capturer, parser))
	engine.GET("/", chain...)

	s := &Server{
		cfg:    cfg.Server,
		engine: engine,
		logger: logger,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}
	return s
}

// Handler returns the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled, then shuts down gracefully within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening.", zap.String("addr", s.cfg.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server.")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-errCh
	return nil
}
