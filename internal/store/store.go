// File: internal/store/store.go
// Package store persists finished transaction results to PostgreSQL.
// The journal is an audit trail only; the engine treats it as
// best-effort and a write failure never alters a transaction outcome.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// DBPool abstracts pgxpool.Pool so the store can be tested against a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Store is the PostgreSQL transaction journal.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a journal store and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const createTransactionsTable = `
    CREATE TABLE IF NOT EXISTS transactions (
        request_id      TEXT PRIMARY KEY,
        panel_url       TEXT NOT NULL,
        client_username TEXT NOT NULL,
        amount          DOUBLE PRECISION NOT NULL,
        action          TEXT NOT NULL,
        status          TEXT NOT NULL,
        message         TEXT NOT NULL,
        recorded_at     TIMESTAMPTZ NOT NULL
    );
`

// EnsureSchema creates the journal table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createTransactionsTable); err != nil {
		return fmt.Errorf("failed to create transactions table: %w", err)
	}
	return nil
}

// Record inserts one finished transaction. Replays of the same request
// ID are rejected by the primary key; each request is journaled once.
func (s *Store) Record(ctx context.Context, requestID string, req schemas.TransactionRequest, res schemas.TransactionResult) error {
	query := `
        INSERT INTO transactions (request_id, panel_url, client_username, amount, action, status, message, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
    `

	tag, err := s.pool.Exec(ctx, query,
		requestID, req.PanelURL, req.ClientUsername, req.Amount,
		string(req.Action), string(res.Status), res.Message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert transaction record: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("unexpected rows affected for transaction record: %d", tag.RowsAffected())
	}

	s.log.Debug("Journaled transaction.",
		zap.String("request_id", requestID),
		zap.String("status", string(res.Status)))
	return nil
}

// JournalEntry is one row of the audit trail.
type JournalEntry struct {
	RequestID      string                `json:"request_id"`
	PanelURL       string                `json:"panel_url"`
	ClientUsername string                `json:"client_username"`
	Amount         float64               `json:"amount"`
	Action         schemas.ActionType    `json:"action"`
	Status         schemas.ResultStatus  `json:"status"`
	Message        string                `json:"message"`
	RecordedAt     time.Time             `json:"recorded_at"`
}

// RecentResults returns the newest journal entries, up to limit.
func (s *Store) RecentResults(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
        SELECT request_id, panel_url, client_username, amount, action, status, message, recorded_at
        FROM transactions
        ORDER BY recorded_at DESC
        LIMIT $1;
    `
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var action, status string
		if err := rows.Scan(&e.RequestID, &e.PanelURL, &e.ClientUsername, &e.Amount,
			&action, &status, &e.Message, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		e.Action = schemas.ActionType(action)
		e.Status = schemas.ResultStatus(status)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return entries, nil
}
