// Package capture runs one screenshot request end to end: launch a browser
// session, open a page, navigate, capture, and release the session.
package capture

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/apperrors"
	"github.com/xkilldash9x/pageshot/internal/config"
)

// Service executes screenshot requests against a browser launcher. Each
// request gets its own session; nothing is shared between requests except
// the concurrency limit.
type Service struct {
	launcher       schemas.BrowserLauncher
	sem            *semaphore.Weighted
	defaultTimeout time.Duration
	logger         *zap.Logger
}

// NewService creates a Service. A non-positive MaxConcurrency means one
// capture at a time.
func NewService(launcher schemas.BrowserLauncher, cfg config.CaptureConfig, logger *zap.Logger) *Service {
	limit := int64(cfg.MaxConcurrency)
	if limit <= 0 {
		limit = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		launcher:       launcher,
		sem:            semaphore.NewWeighted(limit),
		defaultTimeout: cfg.DefaultTimeout,
		logger:         logger.Named("capture"),
	}
}

// Capture produces the screenshot described by req. The request must carry
// a URL that has already passed validation; an empty URL is rejected before
// any browser work happens.
func (s *Service) Capture(ctx context.Context, req schemas.ScreenshotRequest) (*schemas.ScreenshotResult, error) {
	if req.URL == "" {
		return nil, apperrors.InvalidArgument("url parameter is required")
	}

	opts := req.Options
	opts.Timeout = opts.ResolvedTimeout(s.defaultTimeout)
	if _, ok := opts.ResolvedQuality(); !ok {
		opts.Quality = nil
	}

	if err := s.acquire(ctx, opts.Timeout); err != nil {
		return nil, apperrors.Classify("waiting for a capture slot", err, apperrors.KindInternal)
	}
	defer s.sem.Release(1)

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, apperrors.Classify("browser launch", err, apperrors.KindInternal)
	}
	logger := s.logger.With(zap.String("session_id", session.ID()), zap.String("url", req.URL))
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("Failed to close browser session.", zap.Error(err))
		}
	}()

	page, err := session.NewPage(ctx)
	if err != nil {
		return nil, apperrors.Classify("open page", err, apperrors.KindInternal)
	}

	start := time.Now()
	if err := page.Goto(ctx, req.URL, opts.Timeout); err != nil {
		logger.Debug("Navigation failed.", zap.Error(err))
		return nil, apperrors.Classify("navigation", err, apperrors.KindNavigation)
	}

	var data []byte
	if req.Selector != "" {
		data, err = page.Locator(req.Selector).Screenshot(ctx, opts)
	} else {
		data, err = page.Screenshot(ctx, opts)
	}
	if err != nil {
		logger.Debug("Capture failed.", zap.Error(err))
		return nil, apperrors.Classify("capture", err, apperrors.KindInternal)
	}
	if len(data) == 0 {
		return nil, apperrors.CaptureFailed("capture produced an empty image")
	}

	logger.Info("Screenshot captured.",
		zap.String("type", string(opts.ResolvedType())),
		zap.Bool("full_page", opts.FullPage),
		zap.String("selector", req.Selector),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return &schemas.ScreenshotResult{Data: data, Type: opts.ResolvedType()}, nil
}

// acquire waits for a capture slot for at most timeout.
func (s *Service) acquire(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.sem.Acquire(waitCtx, 1)
}
