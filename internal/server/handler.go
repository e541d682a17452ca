package server

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/options"
)

// Capturer produces a screenshot for a validated request.
type Capturer interface {
	Capture(ctx context.Context, req schemas.ScreenshotRequest) (*schemas.ScreenshotResult, error)
}

// screenshot handles GET /. Validation happens before the capturer is
// touched; failures are attached to the context for errorHandler.
func screenshot(capturer Capturer, parser options.Parser) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := parser.ParseRequest(c.Request.URL.Query())
		if err != nil {
			_ = c.Error(err)
			return
		}

		result, err := capturer.Capture(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			return
		}

		if req.Base64 {
			writeBase64(c, result.Data)
			return
		}

		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Content-Length", strconv.Itoa(len(result.Data)))
		c.Data(http.StatusOK, result.ContentType(), result.Data)
	}
}

// writeBase64 streams data as standard base64 text. The headers are flushed
// first so the response goes out chunked, without a Content-Length.
func writeBase64(c *gin.Context, data []byte) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	enc := base64.NewEncoder(base64.StdEncoding, c.Writer)
	if _, err := enc.Write(data); err != nil {
		_ = c.Error(err)
		return
	}
	if err := enc.Close(); err != nil {
		_ = c.Error(err)
		return
	}
	c.Writer.Flush()
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
