// internal/browser/launcher.go
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/apperrors"
	"github.com/xkilldash9x/pageshot/internal/config"
)

const defaultLaunchTimeout = 30 * time.Second

// Launcher starts one headless Chrome process per session using chromedp.
type Launcher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

// Ensure Launcher implements the interface.
var _ schemas.BrowserLauncher = (*Launcher)(nil)

// NewLauncher creates a Launcher. No process is started until Launch.
func NewLauncher(cfg config.BrowserConfig, logger *zap.Logger) *Launcher {
	return &Launcher{
		cfg:    cfg,
		logger: logger.Named("browser"),
	}
}

// Launch starts a browser and waits until it accepts CDP commands. The
// process outlives ctx; it is released by the returned session's Close.
func (l *Launcher) Launch(ctx context.Context) (schemas.BrowserSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(Detach(ctx), AllocatorOptions(l.cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, l.contextOptions()...)

	release := func() {
		browserCancel()
		allocCancel()
	}

	timeout := l.cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// The first Run starts the process, bound to browserCtx rather than to a
	// deadline, so the wait happens out here.
	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			release()
			return nil, apperrors.Internal("failed to launch browser", err)
		}
	case <-timer.C:
		release()
		<-started
		return nil, apperrors.Timeout("browser launch", context.DeadlineExceeded)
	case <-ctx.Done():
		release()
		<-started
		return nil, apperrors.Classify("browser launch", context.Cause(ctx), apperrors.KindInternal)
	}

	s := newSession(allocCancel, browserCtx, browserCancel, l.cfg, l.logger)
	s.logger.Debug("Browser launched.")
	return s, nil
}

func (l *Launcher) contextOptions() []chromedp.ContextOption {
	sugar := l.logger.Sugar()
	opts := []chromedp.ContextOption{
		chromedp.WithLogf(sugar.Infof),
		chromedp.WithErrorf(sugar.Debugf),
	}
	if l.cfg.Debug {
		opts = append(opts, chromedp.WithDebugf(sugar.Debugf))
	}
	return opts
}
