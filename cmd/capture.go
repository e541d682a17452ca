package cmd

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pageshot/internal/capture"
	"github.com/xkilldash9x/pageshot/internal/config"
	"github.com/xkilldash9x/pageshot/internal/observability"
	"github.com/xkilldash9x/pageshot/internal/options"
)

// osWriteFile is replaced in tests.
var osWriteFile = os.WriteFile

type captureFlags struct {
	selector string
	fullPage bool
	base64   bool
	typ      string
	quality  int
	timeout  int
	output   string
}

// values renders the flags as the query parameters the HTTP endpoint
// accepts, so both entry points share one parser.
func (f captureFlags) values(cmd *cobra.Command, target string) url.Values {
	q := url.Values{options.ParamURL: {target}}
	if f.selector != "" {
		q.Set(options.ParamSelector, f.selector)
	}
	if f.fullPage {
		q.Set(options.ParamFullPage, "1")
	}
	if f.base64 {
		q.Set(options.ParamBase64, "1")
	}
	if f.typ != "" {
		q.Set(options.ParamType, f.typ)
	}
	if cmd.Flags().Changed("quality") {
		q.Set(options.ParamQuality, strconv.Itoa(f.quality))
	}
	if cmd.Flags().Changed("timeout") {
		q.Set(options.ParamTimeout, strconv.Itoa(f.timeout))
	}
	return q
}

func newCaptureCmd() *cobra.Command {
	var flags captureFlags

	captureCmd := &cobra.Command{
		Use:   "capture <url>",
		Short: "Take a single screenshot and write it to a file or stdout",
		Example: `  pageshot capture https://example.com -o example.png
  pageshot capture https://example.com --type jpeg --quality 80 --full-page -o page.jpg
  pageshot capture https://example.com --selector '#main' --base64`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			return runCapture(cmd, cfg, flags.values(cmd, args[0]), flags.output)
		},
	}

	captureCmd.Flags().StringVarP(&flags.selector, "selector", "s", "", "CSS selector of the element to capture")
	captureCmd.Flags().BoolVar(&flags.fullPage, "full-page", false, "capture the whole scrollable page")
	captureCmd.Flags().BoolVar(&flags.base64, "base64", false, "write base64 text instead of image bytes")
	captureCmd.Flags().StringVarP(&flags.typ, "type", "t", "", "image type: png or jpeg (default png)")
	captureCmd.Flags().IntVarP(&flags.quality, "quality", "q", 0, "jpeg quality 0-100")
	captureCmd.Flags().IntVar(&flags.timeout, "timeout", 0, "navigation and capture timeout in milliseconds")
	captureCmd.Flags().StringVarP(&flags.output, "output", "o", "-", "output file, - for stdout")
	return captureCmd
}

func runCapture(cmd *cobra.Command, cfg *config.Config, query url.Values, output string) error {
	logger := observability.GetLogger()

	req, err := options.Parser{MaxTimeout: cfg.Capture.MaxTimeout}.ParseRequest(query)
	if err != nil {
		return err
	}

	svc := capture.NewService(newLauncher(cfg.Browser, logger), cfg.Capture, logger)
	result, err := svc.Capture(cmd.Context(), req)
	if err != nil {
		return err
	}

	data := result.Data
	if req.Base64 {
		data = []byte(base64.StdEncoding.EncodeToString(result.Data))
	}

	if output == "" || output == "-" {
		return writeAll(cmd.OutOrStdout(), data)
	}

	path, err := homedir.Expand(output)
	if err != nil {
		return fmt.Errorf("failed to expand output path %q: %w", output, err)
	}
	if err := osWriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	logger.Info("Screenshot written.", zap.String("path", path), zap.String("content_type", result.ContentType()), zap.Int("bytes", len(data)))
	return nil
}

func writeAll(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}
