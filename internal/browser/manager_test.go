// File: internal/browser/manager_test.go
package browser

import (
	"context"
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/panelops/teller/internal/config"
)

func TestExecOptions(t *testing.T) {
	t.Parallel()

	base := config.BrowserConfig{}

	t.Run("always includes stability flags", func(t *testing.T) {
		t.Parallel()
		opts := execOptions(base)
		// Defaults plus NoSandbox and disable-dev-shm-usage.
		assert.Greater(t, len(opts), len(chromedp.DefaultExecAllocatorOptions))
	})

	t.Run("headless and gpu flags are additive", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Headless = true
		cfg.DisableGPU = true
		withFlags := execOptions(cfg)
		without := execOptions(base)
		assert.Equal(t, len(without)+2, len(withFlags))
	})

	t.Run("extra args accept bare and key=value forms", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Args = []string{"--no-zygote", "window-size=1920,1080"}
		opts := execOptions(cfg)
		assert.Equal(t, len(execOptions(base))+2, len(opts))
	})
}

func TestManagerShutdownIdempotent(t *testing.T) {
	t.Parallel()

	m := NewManager(context.Background(), config.Default().Browser, zap.NewNop())
	// Browser never launched (no session requested); Shutdown must
	// still release the allocator and tolerate repeat calls.
	m.Shutdown()
	m.Shutdown()
}
