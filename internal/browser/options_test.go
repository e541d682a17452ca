// internal/browser/options_test.go
package browser

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/pageshot/internal/config"
)

func TestAllocatorFlags(t *testing.T) {
	t.Run("Headless", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{Headless: true})
		assert.Equal(t, true, flags["headless"])
		assert.Equal(t, true, flags["disable-gpu"])
		assert.NotContains(t, flags, "no-sandbox")
	})

	t.Run("HeadlessDisabled", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{Headless: false})
		assert.Equal(t, false, flags["headless"])
		assert.NotContains(t, flags, "disable-gpu")
	})

	t.Run("NoSandbox", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{NoSandbox: true})
		assert.Equal(t, true, flags["no-sandbox"])
		assert.Equal(t, true, flags["disable-setuid-sandbox"])
	})

	t.Run("IgnoreTLSErrors", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{IgnoreTLSErrors: true})
		assert.Equal(t, true, flags["ignore-certificate-errors"])
		assert.Equal(t, true, flags["allow-insecure-localhost"])
	})

	t.Run("CustomArgsOverrideDefaults", func(t *testing.T) {
		flags := allocatorFlags(config.BrowserConfig{
			Headless: true,
			Args:     []string{"--lang=en-US", "--disable-extensions", "--headless=new", "--"},
		})
		assert.Equal(t, "en-US", flags["lang"])
		assert.Equal(t, true, flags["disable-extensions"])
		assert.Equal(t, "new", flags["headless"])
		assert.NotContains(t, flags, "")
	})
}

func TestAllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions) + len(allocatorFlags(config.BrowserConfig{}))

	assert.Len(t, AllocatorOptions(config.BrowserConfig{}), base)

	opts := AllocatorOptions(config.BrowserConfig{
		WindowWidth:  800,
		WindowHeight: 600,
		UserAgent:    "pageshot-test",
		ExecPath:     "/usr/bin/chromium",
	})
	assert.Len(t, opts, base+3)
}
