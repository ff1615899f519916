// File: internal/engine/executor.go
package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// outcome is the executor's explicit result. Expected negative results
// are values, not errors, so the orchestration can thread them into the
// final status.
type outcome int

const (
	outcomeApplied outcome = iota
	outcomeRowNotFound
	outcomeFailed
)

// executeTransaction performs the deposit or withdrawal inside the
// located client's row. Interaction failures are recovered locally: an
// artifact tagged "<username>_<action>" is captured and outcomeFailed
// reported; nothing propagates. Transactions are never retried.
func (e *Engine) executeTransaction(ctx context.Context, s schemas.PanelSession, username string, amount float64, action schemas.ActionType) outcome {
	e.logger.Debug("Performing transaction.",
		zap.String("client", username),
		zap.String("action", string(action)),
		zap.String("amount", schemas.FormatAmount(amount)))

	out, err := e.performTransaction(ctx, s, username, amount, action)
	if err != nil {
		e.logger.Warn("Transaction step failed.",
			zap.String("client", username),
			zap.String("action", string(action)),
			zap.Error(err))
		e.capture(ctx, s, fmt.Sprintf("%s_%s", username, action))
		return outcomeFailed
	}
	return out
}

func (e *Engine) performTransaction(ctx context.Context, s schemas.PanelSession, username string, amount float64, action schemas.ActionType) (outcome, error) {
	// Scan rows in document order; the first containing the username wins.
	rows, err := s.TextContents(ctx, selTableRows)
	if err != nil {
		return outcomeFailed, fmt.Errorf("failed to enumerate table rows: %w", err)
	}

	needle := strings.ToLower(username)
	rowIndex := 0 // 1-based; 0 means no match
	for i, text := range rows {
		if strings.Contains(strings.ToLower(text), needle) {
			rowIndex = i + 1
			break
		}
	}
	if rowIndex == 0 {
		return outcomeRowNotFound, nil
	}

	rowSel := rowSelector(rowIndex)
	var controlSel string
	switch action {
	case schemas.ActionDeposit:
		controlSel = depositControlSelector(rowSel)
	case schemas.ActionWithdraw:
		controlSel = withdrawControlSelector(rowSel)
	default:
		// The engine validates the action before a session exists;
		// reaching this is a contract violation.
		return outcomeFailed, fmt.Errorf("invalid action type: %s", action)
	}

	if err := s.ScrollIntoView(ctx, controlSel); err != nil {
		return outcomeFailed, fmt.Errorf("failed to scroll %s control into view: %w", action, err)
	}
	if err := s.WaitClickable(ctx, controlSel, e.cfg.ElementWaitTimeout); err != nil {
		return outcomeFailed, fmt.Errorf("%s control never became clickable: %w", action, err)
	}
	if err := s.Click(ctx, controlSel); err != nil {
		return outcomeFailed, fmt.Errorf("failed to click %s control: %w", action, err)
	}

	if err := s.WaitVisible(ctx, selAmountInput, e.cfg.ElementWaitTimeout); err != nil {
		return outcomeFailed, fmt.Errorf("amount input did not appear: %w", err)
	}
	if err := s.Clear(ctx, selAmountInput); err != nil {
		return outcomeFailed, fmt.Errorf("failed to clear amount input: %w", err)
	}
	if err := s.SendKeys(ctx, selAmountInput, schemas.FormatAmount(amount)); err != nil {
		return outcomeFailed, fmt.Errorf("failed to enter amount: %w", err)
	}

	if err := s.WaitClickable(ctx, selUpdateButton, e.cfg.ElementWaitTimeout); err != nil {
		return outcomeFailed, fmt.Errorf("submit control never became clickable: %w", err)
	}
	if err := s.Click(ctx, selUpdateButton); err != nil {
		return outcomeFailed, fmt.Errorf("failed to submit transaction: %w", err)
	}

	return outcomeApplied, nil
}
