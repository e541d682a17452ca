// internal/browser/page_test.go
package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/apperrors"
)

func intPtr(v int) *int { return &v }

func TestCaptureParams(t *testing.T) {
	t.Run("DefaultsToPNG", func(t *testing.T) {
		params := captureParams(schemas.CaptureOptions{})
		assert.Equal(t, page.CaptureScreenshotFormatPng, params.Format)
		assert.Zero(t, params.Quality)
		assert.True(t, params.FromSurface)
		assert.Nil(t, params.Clip)
	})

	t.Run("JPEGWithQuality", func(t *testing.T) {
		params := captureParams(schemas.CaptureOptions{Type: schemas.ImageTypeJPEG, Quality: intPtr(42)})
		assert.Equal(t, page.CaptureScreenshotFormatJpeg, params.Format)
		assert.EqualValues(t, 42, params.Quality)
	})

	t.Run("PNGNeverCarriesQuality", func(t *testing.T) {
		params := captureParams(schemas.CaptureOptions{Type: schemas.ImageTypePNG, Quality: intPtr(42)})
		assert.Equal(t, page.CaptureScreenshotFormatPng, params.Format)
		assert.Zero(t, params.Quality)
	})
}

func TestClipFor(t *testing.T) {
	clip := clipFor(elementBox{X: 10.4, Y: 20.6, Width: 100.2, Height: 50})
	assert.Equal(t, &page.Viewport{X: 10, Y: 20, Width: 101, Height: 51, Scale: 1}, clip)

	tiny := clipFor(elementBox{})
	assert.Equal(t, 1.0, tiny.Width)
	assert.Equal(t, 1.0, tiny.Height)
}

func TestBoundsScript(t *testing.T) {
	script, err := boundsScript(`div[data-name="a'b"]`)
	require.NoError(t, err)
	assert.Contains(t, script, `document.querySelector("div[data-name=\"a'b\"]")`)
	assert.Contains(t, script, "getBoundingClientRect")
}

func TestCheckBox(t *testing.T) {
	assert.NoError(t, checkBox("#main", &elementBox{Width: 120, Height: 80}))

	tests := []struct {
		name string
		box  *elementBox
		want string
	}{
		{"Detached", nil, "no longer in the document"},
		{"ZeroWidth", &elementBox{Width: 0, Height: 10}, "no visible area"},
		{"SubPixel", &elementBox{Width: 10, Height: 0.5}, "no visible area"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkBox("#main", tt.box)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindCaptureFailed, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)

			// classifyStep must keep the kind rather than fold it into internal_error.
			live := context.Background()
			assert.Equal(t, apperrors.KindCaptureFailed, apperrors.KindOf(classifyStep(live, "element capture", err, apperrors.KindInternal)))
		})
	}
}

func TestClassifyStep(t *testing.T) {
	live := context.Background()
	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	boom := errors.New("net::ERR_NAME_NOT_RESOLVED")

	assert.NoError(t, classifyStep(live, "navigation", nil, apperrors.KindNavigation))

	err := classifyStep(live, "navigation", boom, apperrors.KindNavigation)
	assert.Equal(t, apperrors.KindNavigation, apperrors.KindOf(err))
	assert.ErrorIs(t, err, boom)

	err = classifyStep(expired, "navigation", boom, apperrors.KindNavigation)
	assert.Equal(t, apperrors.KindTimeout, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "navigation timed out")

	err = classifyStep(live, "capture", boom, apperrors.KindInternal)
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	failed := apperrors.CaptureFailed("empty")
	err = classifyStep(live, "element capture", failed, apperrors.KindInternal)
	assert.Same(t, failed, err)
}
