// File: internal/browser/manager.go
package browser

import (
	"context"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
	"github.com/panelops/teller/internal/config"
)

// Manager owns the Chrome exec allocator and provisions isolated
// sessions from it. Each session gets its own browser context (tab);
// there is no pooling or reuse across requests.
type Manager struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger

	shutdownOnce sync.Once
}

var _ schemas.SessionFactory = (*Manager)(nil)

// NewManager builds the allocator from configuration. The browser
// process itself starts lazily with the first session.
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) *Manager {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOptions(cfg)...)
	return &Manager{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		cfg:         cfg,
		logger:      logger.Named("browser_manager"),
	}
}

// execOptions translates the application config into chromedp allocator options.
func execOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		// Required on hardened systems and inside containers.
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if cfg.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}

	for _, arg := range cfg.Args {
		if !strings.Contains(arg, "=") {
			opts = append(opts, chromedp.Flag(strings.TrimPrefix(arg, "--"), true))
			continue
		}
		parts := strings.SplitN(arg, "=", 2)
		opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), parts[1]))
	}
	return opts
}

// NewSession provisions a fresh, exclusively-owned browser session.
// The caller must Close it; the manager does not track sessions because
// each one's lifetime is bounded by a single request.
func (m *Manager) NewSession(ctx context.Context) (schemas.PanelSession, error) {
	s, err := newSession(ctx, m.allocCtx, m.cfg, m.logger)
	if err != nil {
		return nil, err
	}
	m.logger.Info("New browser session created.", zap.String("session_id", s.ID()))
	return s, nil
}

// Shutdown releases the allocator and with it any remaining browser
// processes. Idempotent.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.logger.Info("Shutting down browser manager.")
		m.allocCancel()
	})
}
