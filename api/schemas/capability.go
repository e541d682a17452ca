package schemas

import (
	"context"
	"time"
)

// -- Browser Capability Interfaces --
//
// These interfaces describe the external browser engine. The service never
// looks behind them: navigation, rendering and pixel capture are owned by
// the implementation (chromedp in internal/browser, mocks in tests).

// BrowserLauncher starts isolated browser sessions.
type BrowserLauncher interface {
	// Launch starts a new browser session. The caller owns the returned
	// session and must Close it.
	Launch(ctx context.Context) (BrowserSession, error)
}

// BrowserSession is one browser process/context.
type BrowserSession interface {
	// ID identifies the session in logs.
	ID() string
	// NewPage opens a navigable page inside the session.
	NewPage(ctx context.Context) (Page, error)
	// Close releases the session and every page it owns. It is safe to call
	// more than once; only the first call does any work.
	Close() error
}

// Page is a single navigable document context.
type Page interface {
	// Goto navigates to url and waits for the load event, failing once
	// timeout elapses.
	Goto(ctx context.Context, url string, timeout time.Duration) error
	// Screenshot captures the viewport, or the full page when
	// opts.FullPage is set.
	Screenshot(ctx context.Context, opts CaptureOptions) ([]byte, error)
	// Locator scopes subsequent captures to the element matching a CSS
	// selector.
	Locator(selector string) Locator
}

// Locator captures the bounding region of one matched element.
type Locator interface {
	Screenshot(ctx context.Context, opts CaptureOptions) ([]byte, error)
}
