// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/apperrors"
	"github.com/xkilldash9x/pageshot/internal/config"
)

const closeGracePeriod = 10 * time.Second

// errSessionClosed is returned by NewPage after Close.
var errSessionClosed = errors.New("browser session is closed")

// Session owns one browser process and the tabs opened in it.
type Session struct {
	id     string
	logger *zap.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	viewportWidth  int
	viewportHeight int

	mu     sync.Mutex
	pages  []*Page
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// Ensure Session implements the interface.
var _ schemas.BrowserSession = (*Session)(nil)

func newSession(
	allocCancel context.CancelFunc,
	browserCtx context.Context,
	browserCancel context.CancelFunc,
	cfg config.BrowserConfig,
	logger *zap.Logger,
) *Session {
	id := uuid.New().String()
	return &Session{
		id:             id,
		logger:         logger.With(zap.String("session_id", id)),
		allocCancel:    allocCancel,
		browserCtx:     browserCtx,
		browserCancel:  browserCancel,
		viewportWidth:  cfg.WindowWidth,
		viewportHeight: cfg.WindowHeight,
	}
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// NewPage opens a new tab sized to the configured viewport.
func (s *Session) NewPage(ctx context.Context) (schemas.Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.Internal("failed to open page", errSessionClosed)
	}
	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	p := &Page{ctx: tabCtx, cancel: tabCancel, logger: s.logger}
	s.pages = append(s.pages, p)
	s.mu.Unlock()

	var actions []chromedp.Action
	if s.viewportWidth > 0 && s.viewportHeight > 0 {
		actions = append(actions, chromedp.EmulateViewport(int64(s.viewportWidth), int64(s.viewportHeight)))
	}

	// As with launch, the tab is created by the first Run on its own
	// context, so the caller's deadline is enforced around it.
	opened := make(chan error, 1)
	go func() {
		opened <- chromedp.Run(tabCtx, actions...)
	}()

	select {
	case err := <-opened:
		if err != nil {
			p.close()
			return nil, apperrors.Internal("failed to open page", err)
		}
	case <-ctx.Done():
		p.close()
		<-opened
		return nil, apperrors.Classify("open page", context.Cause(ctx), apperrors.KindInternal)
	}
	return p, nil
}

// Close shuts every tab, then the browser, then the process. Calls after
// the first return the first call's result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		pages := s.pages
		s.pages = nil
		s.mu.Unlock()

		for _, p := range pages {
			p.close()
		}

		done := make(chan error, 1)
		go func() {
			done <- chromedp.Cancel(s.browserCtx)
		}()
		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				s.closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		case <-time.After(closeGracePeriod):
			s.logger.Warn("Browser did not close gracefully; killing process.")
		}

		s.browserCancel()
		// Blocks until the process has exited.
		s.allocCancel()
		s.logger.Debug("Browser session closed.")
	})
	return s.closeErr
}
