// File: internal/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
	"github.com/panelops/teller/internal/config"
)

// Session is one live browser tab implementing schemas.PanelSession.
// It is owned by exactly one request at a time and destroyed at the
// request's end.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	logger *zap.Logger

	closeOnce sync.Once
}

var _ schemas.PanelSession = (*Session)(nil)

// newSession creates the chromedp context and connects the target.
func newSession(parentCtx context.Context, allocCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Session, error) {
	sessionID := uuid.New().String()

	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		id:     sessionID,
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: logger.With(zap.String("session_id", sessionID)),
	}

	// Running an empty task list forces target creation and the CDP
	// connection, surfacing launch failures here instead of mid-step.
	initCtx, initCancel := CombineContext(ctx, parentCtx)
	defer initCancel()
	if err := chromedp.Run(initCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize browser target: %w", err)
	}

	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Close terminates the session. Safe to call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing browser session.")
		s.cancel()
	})
	return nil
}

// runActions executes chromedp actions, respecting both the session
// lifetime and the incoming request context.
func (s *Session) runActions(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the given absolute URL.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating to URL", zap.String("url", url))

	navTimeout := s.cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	navCtx, cancel := context.WithTimeout(ctx, navTimeout)
	defer cancel()

	if err := s.runActions(navCtx, chromedp.Navigate(url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation to %s timed out after %s: %w", url, navTimeout, err)
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the element is present and visible.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.runActions(waitCtx, chromedp.WaitVisible(selector, chromedp.BySearch)); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("element '%s' did not become visible within %s: %w", selector, timeout, err)
		}
		return fmt.Errorf("wait for '%s' failed: %w", selector, err)
	}
	return nil
}

// WaitClickable blocks until the element is both visible and enabled.
func (s *Session) WaitClickable(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tasks := chromedp.Tasks{
		chromedp.WaitVisible(selector, chromedp.BySearch),
		chromedp.WaitEnabled(selector, chromedp.BySearch),
	}
	if err := s.runActions(waitCtx, tasks); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("element '%s' did not become clickable within %s: %w", selector, timeout, err)
		}
		return fmt.Errorf("wait for clickable '%s' failed: %w", selector, err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.logger.Debug("Clicking element", zap.String("selector", selector))
	if err := s.runActions(ctx, chromedp.Click(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("click failed for selector '%s': %w", selector, err)
	}
	return nil
}

// SendKeys types text into the element matching the selector.
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	s.logger.Debug("Typing into element", zap.String("selector", selector), zap.Int("text_length", len(text)))
	if err := s.runActions(ctx, chromedp.SendKeys(selector, text, chromedp.BySearch)); err != nil {
		return fmt.Errorf("type failed for selector '%s': %w", selector, err)
	}
	return nil
}

// Clear empties the value of the input matching the selector.
func (s *Session) Clear(ctx context.Context, selector string) error {
	if err := s.runActions(ctx, chromedp.Clear(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("clear failed for selector '%s': %w", selector, err)
	}
	return nil
}

// ScrollIntoView scrolls the element into the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, selector string) error {
	if err := s.runActions(ctx, chromedp.ScrollIntoView(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("scroll failed for selector '%s': %w", selector, err)
	}
	return nil
}

// TextContents returns the rendered text of every element matching the
// XPath selector, in document order. No matches is an empty slice.
func (s *Session) TextContents(ctx context.Context, selector string) ([]string, error) {
	script := fmt.Sprintf(`
		(function(xpath) {
			const out = [];
			const snap = document.evaluate(xpath, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
			for (let i = 0; i < snap.snapshotLength; i++) {
				const node = snap.snapshotItem(i);
				out.push((node.innerText !== undefined ? node.innerText : node.textContent) || "");
			}
			return out;
		})(%s);`, jsonEncode(selector))

	var texts []string
	if err := s.evaluate(ctx, script, &texts); err != nil {
		return nil, fmt.Errorf("failed to collect text for '%s': %w", selector, err)
	}
	return texts, nil
}

// NodeCount reports how many elements currently match the XPath selector.
func (s *Session) NodeCount(ctx context.Context, selector string) (int, error) {
	script := fmt.Sprintf(`
		document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength;`,
		jsonEncode(selector))

	var count int
	if err := s.evaluate(ctx, script, &count); err != nil {
		return 0, fmt.Errorf("failed to count nodes for '%s': %w", selector, err)
	}
	return count, nil
}

// evaluate runs a script in the page, awaiting promises and returning
// the result by value.
func (s *Session) evaluate(ctx context.Context, script string, res interface{}) error {
	evalCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	return s.runActions(evalCtx,
		chromedp.Evaluate(script, res, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
		}),
	)
}

// Screenshot captures the current viewport as PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	shotCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := s.runActions(shotCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}

// PageSource returns the serialized markup of the current page.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	srcCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := s.runActions(srcCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("page source capture failed: %w", err)
	}
	return html, nil
}

// jsonEncode safely encodes a value (especially strings) for JS injection.
func jsonEncode(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `""`
	}
	return string(b)
}

// CombineContext creates a context canceled when either parent is
// canceled, tying operations to both the session lifecycle and the
// caller's deadline.
func CombineContext(parentCtx, secondaryCtx context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(parentCtx)

	go func() {
		select {
		case <-secondaryCtx.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}
