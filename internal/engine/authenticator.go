// File: internal/engine/authenticator.go
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// authenticate establishes an admin session at the panel URL: navigate,
// wait for the login form, fill both fields, trigger the login control.
// No post-login verification happens here; a failed login surfaces as a
// navigation timeout in the next step.
func (e *Engine) authenticate(ctx context.Context, s schemas.PanelSession, panelURL string, id schemas.AdminIdentity) error {
	e.logger.Debug("Authenticating against panel.", zap.String("url", panelURL), zap.String("admin", id.Username))

	if err := s.Navigate(ctx, panelURL); err != nil {
		return fmt.Errorf("failed to open panel: %w", err)
	}

	if err := s.WaitVisible(ctx, selUsernameInput, e.cfg.LoginWaitTimeout); err != nil {
		return fmt.Errorf("login form did not appear: %w", err)
	}

	if err := s.SendKeys(ctx, selUsernameInput, id.Username); err != nil {
		return fmt.Errorf("failed to enter admin username: %w", err)
	}
	if err := s.SendKeys(ctx, selPasswordInput, id.Password); err != nil {
		return fmt.Errorf("failed to enter admin password: %w", err)
	}
	if err := s.Click(ctx, selLoginButton); err != nil {
		return fmt.Errorf("failed to trigger login: %w", err)
	}

	return nil
}
