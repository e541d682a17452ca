// internal/browser/page.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/apperrors"
)

// Page is a single tab. Every operation runs on the tab's chromedp context,
// canceled early if the caller's context ends or the step timeout elapses.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	closeOnce sync.Once
}

// Ensure Page implements the interface.
var _ schemas.Page = (*Page)(nil)

// Goto navigates and waits for the load event.
func (p *Page) Goto(ctx context.Context, url string, timeout time.Duration) error {
	runCtx, cancel := p.stepContext(ctx, timeout)
	defer cancel()

	p.logger.Debug("Navigating.", zap.String("url", url), zap.Duration("timeout", timeout))
	err := chromedp.Run(runCtx, chromedp.Navigate(url))
	return classifyStep(runCtx, "navigation", err, apperrors.KindNavigation)
}

// Screenshot captures the viewport, or the whole document when
// opts.FullPage is set.
func (p *Page) Screenshot(ctx context.Context, opts schemas.CaptureOptions) ([]byte, error) {
	runCtx, cancel := p.stepContext(ctx, opts.ResolvedTimeout(0))
	defer cancel()

	var buf []byte
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := captureParams(opts)
		if opts.FullPage {
			_, _, _, _, _, cssContentSize, err := page.GetLayoutMetrics().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to read layout metrics: %w", err)
			}
			params = params.
				WithCaptureBeyondViewport(true).
				WithClip(clipFor(elementBox{Width: cssContentSize.Width, Height: cssContentSize.Height}))
		}
		var err error
		buf, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, classifyStep(runCtx, "capture", err, apperrors.KindInternal)
	}
	return buf, nil
}

// Locator returns a handle that captures only the element matching selector.
func (p *Page) Locator(selector string) schemas.Locator {
	return &elementLocator{page: p, selector: selector}
}

func (p *Page) close() {
	p.closeOnce.Do(p.cancel)
}

// stepContext bounds one step by the tab, the caller and timeout.
func (p *Page) stepContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	combined, cancelCombined := CombineContext(p.ctx, ctx)
	if timeout <= 0 {
		return combined, cancelCombined
	}
	timed, cancelTimed := context.WithTimeout(combined, timeout)
	return timed, func() {
		cancelTimed()
		cancelCombined()
	}
}

// -- Element capture --

type elementLocator struct {
	page     *Page
	selector string
}

// elementBox is an element's border box in document coordinates.
type elementBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Screenshot waits for the element to become visible and captures its
// bounding box. fullPage does not apply to element captures.
func (l *elementLocator) Screenshot(ctx context.Context, opts schemas.CaptureOptions) ([]byte, error) {
	runCtx, cancel := l.page.stepContext(ctx, opts.ResolvedTimeout(0))
	defer cancel()

	script, err := boundsScript(l.selector)
	if err != nil {
		return nil, apperrors.Internal("failed to encode selector", err)
	}

	var (
		// A pointer so a null result (element gone) decodes to nil
		// instead of failing with chromedp.ErrJSNull.
		box *elementBox
		buf []byte
	)
	err = chromedp.Run(runCtx,
		chromedp.WaitVisible(l.selector, chromedp.ByQuery),
		chromedp.ScrollIntoView(l.selector, chromedp.ByQuery),
		chromedp.Evaluate(script, &box),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := checkBox(l.selector, box); err != nil {
				return err
			}
			var err error
			buf, err = captureParams(opts).
				WithCaptureBeyondViewport(true).
				WithClip(clipFor(*box)).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, classifyStep(runCtx, "element capture", err, apperrors.KindInternal)
	}
	return buf, nil
}

// checkBox rejects an element that left the document or has no area.
func checkBox(selector string, box *elementBox) error {
	if box == nil {
		return apperrors.CaptureFailed(fmt.Sprintf("element %q is no longer in the document", selector))
	}
	if box.Width < 1 || box.Height < 1 {
		return apperrors.CaptureFailed(fmt.Sprintf("element %q has no visible area", selector))
	}
	return nil
}

// boundsScript returns JavaScript evaluating to the elementBox of the first
// element matching selector.
func boundsScript(selector string) (string, error) {
	quoted, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(selector)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return null;
	const r = el.getBoundingClientRect();
	const d = document.documentElement.getBoundingClientRect();
	return {x: r.left - d.left, y: r.top - d.top, width: r.width, height: r.height};
})()`, quoted), nil
}

// -- Shared helpers --

// captureParams maps the request options onto CDP capture parameters.
// Quality is only sent for jpeg.
func captureParams(opts schemas.CaptureOptions) *page.CaptureScreenshotParams {
	params := page.CaptureScreenshot().WithFromSurface(true)
	if opts.ResolvedType() == schemas.ImageTypeJPEG {
		params = params.WithFormat(page.CaptureScreenshotFormatJpeg)
	} else {
		params = params.WithFormat(page.CaptureScreenshotFormatPng)
	}
	if q, ok := opts.ResolvedQuality(); ok {
		params = params.WithQuality(int64(q))
	}
	return params
}

// clipFor snaps a box to whole CSS pixels, growing it rather than cutting
// off a partial pixel row.
func clipFor(box elementBox) *page.Viewport {
	x := math.Floor(box.X)
	y := math.Floor(box.Y)
	return &page.Viewport{
		X:      x,
		Y:      y,
		Width:  math.Max(1, math.Ceil(box.X+box.Width)-x),
		Height: math.Max(1, math.Ceil(box.Y+box.Height)-y),
		Scale:  1,
	}
}

// classifyStep turns a chromedp error into an apperrors.Error. A step whose
// context hit its deadline is a timeout no matter what chromedp reported.
func classifyStep(runCtx context.Context, step string, err error, fallback apperrors.Kind) error {
	if err == nil {
		return nil
	}
	if errors.Is(causeOf(runCtx), context.DeadlineExceeded) {
		return apperrors.Timeout(step, err)
	}
	if fallback == apperrors.KindNavigation {
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			return apperrors.Navigation(err)
		}
	}
	return apperrors.Classify(step, err, fallback)
}
