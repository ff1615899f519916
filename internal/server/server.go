// File: internal/server/server.go
// Package server exposes the transaction engine over HTTP. One endpoint,
// POST /process, accepts a transaction request and returns the engine's
// result verbatim. The server throttles inbound requests and caps the
// number of concurrently live browser sessions.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/panelops/teller/api/schemas"
	"github.com/panelops/teller/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Runner is the engine surface the server depends on.
type Runner interface {
	Run(ctx context.Context, req schemas.TransactionRequest) schemas.TransactionResult
}

// Server is the inbound HTTP endpoint.
type Server struct {
	cfg      config.ServerConfig
	engine   Runner
	logger   *zap.Logger
	limiter  *rate.Limiter
	sessions *semaphore.Weighted
	httpSrv  *http.Server
}

// New builds a server around the given engine.
func New(cfg config.ServerConfig, engine Runner, logger *zap.Logger) (*Server, error) {
	if engine == nil || logger == nil {
		return nil, errors.New("cannot initialize server with nil dependencies")
	}

	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 1
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		logger:   logger.Named("server"),
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		sessions: semaphore.NewWeighted(maxSessions),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the routing for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe blocks until the context is cancelled, then shuts the
// listener down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP endpoint listening.", zap.String("addr", s.cfg.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP endpoint.")
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleProcess decodes one transaction request, runs it through the
// engine under the session cap, and writes the result back unchanged.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeResult(w, http.StatusMethodNotAllowed, schemas.Errorf("method not allowed"))
		return
	}

	if !s.limiter.Allow() {
		s.writeResult(w, http.StatusTooManyRequests, schemas.Errorf("too many requests"))
		return
	}

	var req schemas.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResult(w, http.StatusBadRequest, schemas.Errorf("malformed request body"))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeResult(w, http.StatusBadRequest, schemas.Errorf("%v", err))
		return
	}

	if err := s.sessions.Acquire(r.Context(), 1); err != nil {
		s.writeResult(w, http.StatusServiceUnavailable, schemas.Errorf("request cancelled while waiting for a session slot"))
		return
	}
	defer s.sessions.Release(1)

	// Engine outcomes, success or error, are payload content; the HTTP
	// status stays 200 so callers branch on the result status field.
	res := s.engine.Run(r.Context(), req)
	s.writeResult(w, http.StatusOK, res)
}

func (s *Server) writeResult(w http.ResponseWriter, status int, res schemas.TransactionResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Warn("Failed to encode response.", zap.Error(err))
	}
}
