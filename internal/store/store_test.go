// File: internal/store/store_test.go
package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/panelops/teller/api/schemas"
)

// flexibleSQLMatcher builds a whitespace-insensitive regex so the mock
// expectations survive query reformatting.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

// ArgumentMatcherFunc is a helper to create inline mock matchers.
type ArgumentMatcherFunc func(interface{}) bool

func (f ArgumentMatcherFunc) Match(v interface{}) bool {
	return f(v)
}

// anyTime accepts any value, used for timestamps we cannot predict.
var anyTime = ArgumentMatcherFunc(func(v interface{}) bool {
	return true
})

const sqlInsertTransaction = `
    INSERT INTO transactions (request_id, panel_url, client_username, amount, action, status, message, recorded_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

func testRequest() schemas.TransactionRequest {
	return schemas.TransactionRequest{
		PanelURL:       "https://panel.example/admin",
		ClientUsername: "alice99",
		Amount:         500,
		Action:         schemas.ActionDeposit,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("should return error if ping fails", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		pingErr := errors.New("database unavailable")
		mockPool.ExpectPing().WillReturnError(pingErr)

		_, err = New(context.Background(), mockPool, zap.NewNop())
		require.Error(t, err)
		assert.ErrorIs(t, err, pingErr)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should create store when ping succeeds", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing()

		s, err := New(context.Background(), mockPool, zap.NewNop())
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestEnsureSchema(t *testing.T) {
	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectPing()
	mockPool.ExpectExec(flexibleSQLMatcher(`CREATE TABLE IF NOT EXISTS transactions`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	s, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("should insert one row per finished request", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing()
		s, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		requestID := uuid.New().String()
		req := testRequest()
		res := schemas.Successf("Deposit ₹500 for alice99 complete")

		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertTransaction)).
			WithArgs(requestID, req.PanelURL, req.ClientUsername, req.Amount,
				"deposit", "success", res.Message, anyTime).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, s.Record(ctx, requestID, req, res))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("should propagate insert errors", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectPing()
		s, err := New(ctx, mockPool, zap.NewNop())
		require.NoError(t, err)

		insertErr := errors.New("connection reset")
		mockPool.ExpectExec(flexibleSQLMatcher(sqlInsertTransaction)).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(insertErr)

		err = s.Record(ctx, uuid.New().String(), testRequest(), schemas.Errorf("boom"))
		assert.ErrorIs(t, err, insertErr)
	})
}

func TestRecentResults(t *testing.T) {
	ctx := context.Background()

	mockPool, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectPing()
	s, err := New(ctx, mockPool, zap.NewNop())
	require.NoError(t, err)

	recordedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"request_id", "panel_url", "client_username", "amount", "action", "status", "message", "recorded_at",
	}).AddRow(
		"req-1", "https://panel.example/admin", "alice99", 500.0,
		"deposit", "success", "Deposit ₹500 for alice99 complete", recordedAt,
	).AddRow(
		"req-2", "https://panel.example/admin", "bob", 100.0,
		"withdraw", "error", "Client 'bob' not found", recordedAt.Add(-time.Minute),
	)

	mockPool.ExpectQuery(flexibleSQLMatcher(`SELECT request_id, panel_url, client_username, amount, action, status, message, recorded_at FROM transactions`)).
		WithArgs(10).
		WillReturnRows(rows)

	entries, err := s.RecentResults(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "req-1", entries[0].RequestID)
	assert.Equal(t, schemas.ActionDeposit, entries[0].Action)
	assert.Equal(t, schemas.StatusSuccess, entries[0].Status)
	assert.Equal(t, schemas.StatusError, entries[1].Status)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
