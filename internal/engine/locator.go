// File: internal/engine/locator.go
package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// locateClient submits the username into the Down-line search and scans
// the rendered results for a case-insensitive substring match. This is
// a local-recovery boundary: any failure, including "no match", captures
// an artifact tagged with the username and reports false instead of
// aborting the request.
func (e *Engine) locateClient(ctx context.Context, s schemas.PanelSession, username string) bool {
	e.logger.Debug("Searching for client.", zap.String("client", username))

	found, err := e.searchAndScan(ctx, s, username)
	if err != nil {
		e.logger.Warn("Client search failed.", zap.String("client", username), zap.Error(err))
		e.capture(ctx, s, username)
		return false
	}
	if !found {
		e.logger.Info("Client not present in search results.", zap.String("client", username))
		e.capture(ctx, s, username)
	}
	return found
}

func (e *Engine) searchAndScan(ctx context.Context, s schemas.PanelSession, username string) (bool, error) {
	if err := s.WaitVisible(ctx, selSearchInput, e.cfg.ElementWaitTimeout); err != nil {
		return false, err
	}
	if err := s.Clear(ctx, selSearchInput); err != nil {
		return false, err
	}
	if err := s.SendKeys(ctx, selSearchInput, username); err != nil {
		return false, err
	}
	if err := s.WaitClickable(ctx, selSearchButton, e.cfg.ElementWaitTimeout); err != nil {
		return false, err
	}
	if err := s.Click(ctx, selSearchButton); err != nil {
		return false, err
	}

	candidates := candidateSelector(username)
	e.awaitResults(ctx, s, candidates)

	texts, err := s.TextContents(ctx, candidates)
	if err != nil {
		return false, err
	}

	needle := strings.ToLower(username)
	for _, text := range texts {
		if strings.Contains(strings.ToLower(text), needle) {
			return true, nil
		}
	}
	return false, nil
}

// awaitResults polls the candidate count until it is non-zero and has
// stopped changing, or the settle deadline passes. This replaces a
// blind post-search sleep; the scan runs either way, so the poll is
// best-effort and swallows transient evaluation errors.
func (e *Engine) awaitResults(ctx context.Context, s schemas.PanelSession, selector string) {
	interval := e.cfg.SettlePollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	deadline := time.Now().Add(e.cfg.SettleDeadline)

	last := -1
	for time.Now().Before(deadline) {
		count, err := s.NodeCount(ctx, selector)
		if err == nil && count > 0 && count == last {
			return
		}
		if err == nil {
			last = count
		}
		if settle(ctx, interval) != nil {
			return
		}
	}
}
