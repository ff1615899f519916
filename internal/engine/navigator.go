// File: internal/engine/navigator.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panelops/teller/api/schemas"
)

// ErrNavigationTimeout marks a menu control that never became
// interactable within its wait bound. Fatal to the request.
var ErrNavigationTimeout = errors.New("navigation timeout")

// timeoutArtifactTag names artifacts from navigation failures; there is
// no client context yet at this point in the flow.
const timeoutArtifactTag = "timeout"

// navigateToClientList drives the two menu transitions into the
// Down-line view: "Client List", then "Down-line" nested under it. A
// short settle pause between transitions absorbs client-side rendering
// latency before the clickability wait is issued; the wait itself is
// the gate.
func (e *Engine) navigateToClientList(ctx context.Context, s schemas.PanelSession) error {
	e.logger.Debug("Navigating to the Down-line section.")

	if err := e.clickWhenClickable(ctx, s, selClientListMenu, "Client List"); err != nil {
		return err
	}
	if err := settle(ctx, e.cfg.SettleDelay); err != nil {
		return err
	}
	if err := e.clickWhenClickable(ctx, s, selDownlineMenu, "Down-line"); err != nil {
		return err
	}
	return nil
}

// clickWhenClickable waits for a menu control and clicks it. A wait
// timeout captures a diagnostic artifact and propagates as
// ErrNavigationTimeout.
func (e *Engine) clickWhenClickable(ctx context.Context, s schemas.PanelSession, selector, label string) error {
	if err := s.WaitClickable(ctx, selector, e.cfg.ElementWaitTimeout); err != nil {
		e.capture(ctx, s, timeoutArtifactTag)
		return fmt.Errorf("%w: '%s' menu control never became clickable: %v", ErrNavigationTimeout, label, err)
	}
	if err := s.Click(ctx, selector); err != nil {
		return fmt.Errorf("failed to click '%s': %w", label, err)
	}
	return nil
}

// settle pauses for a fixed delay while honoring cancellation.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
