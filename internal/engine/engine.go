// File: internal/engine/engine.go
// The automation engine sequences one browser-driven transaction:
// resolve credentials, authenticate, navigate to the Down-line view,
// locate the client, execute the deposit or withdrawal, and map every
// step outcome into a single TransactionResult. It owns exactly one
// session per run and guarantees teardown on all paths.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
	"github.com/panelops/teller/internal/config"
)

const sessionCloseGrace = 10 * time.Second

// Engine orchestrates the linear per-request workflow. Dependencies
// arrive as interfaces so the whole flow is testable without a browser.
type Engine struct {
	resolver schemas.CredentialResolver
	sessions schemas.SessionFactory
	sink     schemas.ArtifactSink
	journal  schemas.TransactionJournal // optional; nil disables journaling
	cfg      config.BrowserConfig
	logger   *zap.Logger
}

// New wires an Engine. The journal may be nil; everything else is required.
func New(
	resolver schemas.CredentialResolver,
	sessions schemas.SessionFactory,
	sink schemas.ArtifactSink,
	journal schemas.TransactionJournal,
	cfg config.BrowserConfig,
	logger *zap.Logger,
) (*Engine, error) {
	if resolver == nil || sessions == nil || sink == nil || logger == nil {
		return nil, fmt.Errorf("cannot initialize engine with nil dependencies")
	}
	return &Engine{
		resolver: resolver,
		sessions: sessions,
		sink:     sink,
		journal:  journal,
		cfg:      cfg,
		logger:   logger.Named("engine"),
	}, nil
}

// Run executes one transaction request end to end and always returns a
// structured result, never a raw error. Credentials and the action type
// are validated before any session exists; from session creation on,
// teardown is guaranteed by defer.
func (e *Engine) Run(ctx context.Context, req schemas.TransactionRequest) schemas.TransactionResult {
	requestID := uuid.New().String()
	log := e.logger.With(
		zap.String("request_id", requestID),
		zap.String("panel_url", req.PanelURL),
		zap.String("client", req.ClientUsername))

	log.Info("Processing transaction request.",
		zap.String("action", string(req.Action)),
		zap.String("amount", schemas.FormatAmount(req.Amount)))

	res := e.run(ctx, log, req)

	if res.Status == schemas.StatusSuccess {
		log.Info("Transaction request finished.", zap.String("message", res.Message))
	} else {
		log.Warn("Transaction request failed.", zap.String("message", res.Message))
	}

	e.record(ctx, log, requestID, req, res)
	return res
}

func (e *Engine) run(ctx context.Context, log *zap.Logger, req schemas.TransactionRequest) schemas.TransactionResult {
	identity, err := e.resolver.Resolve(req.PanelURL)
	if err != nil {
		return schemas.Errorf("Admin credentials not found for URL: %s", req.PanelURL)
	}

	action, err := schemas.ParseActionType(string(req.Action))
	if err != nil {
		return schemas.Errorf("Invalid action type: %s", req.Action)
	}

	session, err := e.sessions.NewSession(ctx)
	if err != nil {
		log.Error("Failed to provision browser session.", zap.Error(err))
		return schemas.Errorf("%v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), sessionCloseGrace)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			log.Warn("Session teardown reported an error.", zap.Error(err))
		}
	}()

	if err := e.authenticate(ctx, session, req.PanelURL, identity); err != nil {
		return schemas.Errorf("%v", err)
	}

	if err := e.navigateToClientList(ctx, session); err != nil {
		return schemas.Errorf("%v", err)
	}

	if !e.locateClient(ctx, session, req.ClientUsername) {
		return schemas.Errorf("Client '%s' not found", req.ClientUsername)
	}

	switch e.executeTransaction(ctx, session, req.ClientUsername, req.Amount, action) {
	case outcomeApplied:
		return schemas.Successf("%s ₹%s for %s complete",
			action.Title(), schemas.FormatAmount(req.Amount), req.ClientUsername)
	case outcomeRowNotFound:
		return schemas.Errorf("Client '%s' not found in results table", req.ClientUsername)
	default:
		return schemas.Errorf("Failed to %s for %s", action, req.ClientUsername)
	}
}

// capture stores a diagnostic artifact for the current page state.
// Capture problems are logged and otherwise ignored; evidence
// collection must never change the outcome of a run.
func (e *Engine) capture(ctx context.Context, s schemas.PanelSession, tag string) {
	artifact := schemas.DiagnosticArtifact{Tag: tag, CapturedAt: time.Now()}

	if shot, err := s.Screenshot(ctx); err != nil {
		e.logger.Debug("Screenshot capture failed.", zap.String("tag", tag), zap.Error(err))
	} else {
		artifact.Screenshot = shot
	}
	if src, err := s.PageSource(ctx); err != nil {
		e.logger.Debug("Page source capture failed.", zap.String("tag", tag), zap.Error(err))
	} else {
		artifact.PageSource = src
	}

	if err := e.sink.Capture(ctx, artifact); err != nil {
		e.logger.Warn("Failed to store diagnostic artifact.", zap.String("tag", tag), zap.Error(err))
	}
}

// record journals the finished run, best effort.
func (e *Engine) record(ctx context.Context, log *zap.Logger, requestID string, req schemas.TransactionRequest, res schemas.TransactionResult) {
	if e.journal == nil {
		return
	}
	if err := e.journal.Record(ctx, requestID, req, res); err != nil {
		log.Warn("Failed to journal transaction result.", zap.Error(err))
	}
}
