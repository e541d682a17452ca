package cmd

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pageshot/api/schemas"
	"github.com/xkilldash9x/pageshot/internal/browser"
	"github.com/xkilldash9x/pageshot/internal/capture"
	"github.com/xkilldash9x/pageshot/internal/config"
	"github.com/xkilldash9x/pageshot/internal/observability"
	"github.com/xkilldash9x/pageshot/internal/server"
)

// newLauncher is swapped out in tests so commands run without Chrome.
var newLauncher = func(cfg config.BrowserConfig, logger *zap.Logger) schemas.BrowserLauncher {
	return browser.NewLauncher(cfg, logger)
}

// flagBinding maps a command line flag onto a configuration key.
type flagBinding struct {
	key  string
	flag string
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		if err := v.BindPFlag(b.key, flags.Lookup(b.flag)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", b.flag, err)
		}
	}
	return nil
}

// browserFlags are persistent on the root command so serve and capture
// share one binding per key.
var browserFlags = []flagBinding{
	{"browser.headless", "headless"},
	{"browser.exec_path", "exec-path"},
	{"browser.no_sandbox", "no-sandbox"},
	{"browser.window_width", "window-width"},
	{"browser.window_height", "window-height"},
}

func addBrowserFlags(flags *pflag.FlagSet) {
	flags.Bool("headless", true, "run the browser without a window")
	flags.String("exec-path", "", "path to the Chrome or Chromium binary")
	flags.Bool("no-sandbox", true, "disable the Chrome sandbox (needed in most containers)")
	flags.Int("window-width", 1280, "viewport width in CSS pixels")
	flags.Int("window-height", 720, "viewport height in CSS pixels")
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the screenshot HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	serveCmd.Flags().String("addr", ":3000", "address to listen on")
	serveCmd.Flags().Int("max-concurrency", 4, "maximum number of simultaneous captures")
	serveCmd.Flags().Duration("default-timeout", schemas.DefaultCaptureTimeout, "navigation and capture timeout when a request sets none")
	serveCmd.Flags().Bool("rate-limit", false, "enable the global request rate limiter")
	serveCmd.Flags().Bool("auth", false, "require HMAC signed bearer tokens (secret from PAGESHOT_AUTH_SECRET)")

	bindings := []flagBinding{
		{"server.addr", "addr"},
		{"capture.max_concurrency", "max-concurrency"},
		{"capture.default_timeout", "default-timeout"},
		{"server.rate_limit.enabled", "rate-limit"},
		{"server.auth.enabled", "auth"},
	}
	if err := bindFlags(v, serveCmd.Flags(), bindings); err != nil {
		panic(err)
	}
	return serveCmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	logger := observability.GetLogger()
	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := capture.NewService(newLauncher(cfg.Browser, logger), cfg.Capture, logger)
	srv := server.New(cfg, svc, logger)

	logger.Info("Starting pageshot server.",
		zap.String("version", Version),
		zap.String("addr", cfg.Server.Addr),
		zap.Int("max_concurrency", cfg.Capture.MaxConcurrency),
		zap.Bool("auth", cfg.Server.Auth.Enabled),
		zap.Bool("rate_limit", cfg.Server.RateLimit.Enabled),
	)
	if err := srv.Run(cmd.Context()); err != nil {
		return err
	}
	logger.Info("Server stopped.")
	return nil
}
