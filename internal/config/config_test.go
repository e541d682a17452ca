// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "pageshot", cfg.Logger.ServiceName)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.WindowWidth)
	assert.Equal(t, 30*time.Second, cfg.Capture.DefaultTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Capture.MaxTimeout)
	assert.Equal(t, 4, cfg.Capture.MaxConcurrency)
	assert.False(t, cfg.Server.Auth.Enabled)
	assert.False(t, cfg.Server.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate(), "defaults must validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Core Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()

		noAddr := *cfg
		noAddr.Server.Addr = ""
		err := noAddr.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.addr is required")

		badWindow := *cfg
		badWindow.Browser.WindowHeight = 0
		err = badWindow.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive integers")

		badLaunch := *cfg
		badLaunch.Browser.LaunchTimeout = 0
		err = badLaunch.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.launch_timeout")

		noShutdown := *cfg
		noShutdown.Server.ShutdownTimeout = 0
		err = noShutdown.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.shutdown_timeout")
	})

	t.Run("Capture Validation", func(t *testing.T) {
		valid := CaptureConfig{DefaultTimeout: 30 * time.Second, MaxTimeout: time.Minute, MaxConcurrency: 2}
		assert.NoError(t, valid.Validate())

		noWorkers := valid
		noWorkers.MaxConcurrency = 0
		err := noWorkers.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "capture.max_concurrency must be a positive integer")

		inverted := valid
		inverted.MaxTimeout = 10 * time.Second
		err = inverted.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be shorter")

		noDefault := valid
		noDefault.DefaultTimeout = 0
		assert.Error(t, noDefault.Validate())
	})

	t.Run("Rate Limit Validation", func(t *testing.T) {
		disabled := RateLimitConfig{}
		assert.NoError(t, disabled.Validate(), "a disabled limiter needs no settings")

		valid := RateLimitConfig{Enabled: true, RequestsPerSecond: 2, Burst: 1}
		assert.NoError(t, valid.Validate())

		noRate := valid
		noRate.RequestsPerSecond = 0
		err := noRate.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requests_per_second must be greater than 0")

		noBurst := valid
		noBurst.Burst = 0
		err = noBurst.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "burst must be greater than 0")
	})

	t.Run("Auth Validation", func(t *testing.T) {
		assert.NoError(t, (&AuthConfig{}).Validate())
		assert.NoError(t, (&AuthConfig{Enabled: true, Secret: "s3cret"}).Validate())

		err := (&AuthConfig{Enabled: true}).Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PAGESHOT_AUTH_SECRET")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
server:
  addr: "127.0.0.1:9000"
browser:
  window_width: 1920
  window_height: 1080
  args: ["--lang=en-US"]
capture:
  max_concurrency: 8
  default_timeout: 10s
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
		assert.Equal(t, 1920, cfg.Browser.WindowWidth)
		assert.Equal(t, []string{"--lang=en-US"}, cfg.Browser.Args)
		assert.Equal(t, 8, cfg.Capture.MaxConcurrency)
		assert.Equal(t, 10*time.Second, cfg.Capture.DefaultTimeout)
		// Untouched keys keep their defaults.
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("capture.max_concurrency", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "capture.max_concurrency must be a positive integer")
	})

	t.Run("Auth Secret From Environment", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("server.auth.enabled", true)

		t.Setenv("PAGESHOT_AUTH_SECRET", "env-secret-123")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "env-secret-123", cfg.Server.Auth.Secret)
	})

	t.Run("Auth Enabled Without Secret", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("server.auth.enabled", true)

		_, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.auth configuration invalid")
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/pageshot.log
server:
  read_timeout: 5s
  rate_limit:
    enabled: true
    requests_per_second: 0.5
    burst: 3
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/var/log/pageshot.log", cfg.Logger.LogFile)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 0.5, cfg.Server.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Server.RateLimit.Burst)
}
