package webhooklog

import (
	"context"
	"errors"
	"testing"

	apperrors "lead-qualifier/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "postgres")), mock
}

var attemptColumns = []string{
	"idempotency_key", "attempt", "created_at", "success",
	"lead_name", "lead_email", "status_code", "error", "duration_ms",
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS lead_delivery_attempts`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Append(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	a := createTestAttempt(2)

	mock.ExpectExec(`INSERT INTO lead_delivery_attempts`).
		WithArgs(a.IdempotencyKey, 2, a.Timestamp, true, "Maria Souza", "maria@example.com",
			sqlmock.AnyArg(), sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Append(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendFailure(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectExec(`INSERT INTO lead_delivery_attempts`).
		WillReturnError(errors.New("connection reset"))

	err := store.Append(context.Background(), createTestAttempt(1))
	require.Error(t, err)
	stdErr, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDeliveryLogWriteFailed, stdErr.Code)
}

func TestPostgresStore_ListNewestFirst(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	failed := createTestAttempt(2)

	mock.ExpectQuery(`(?s)SELECT .* FROM lead_delivery_attempts.*ORDER BY created_at DESC, id DESC.*LIMIT \$1`).
		WithArgs(DefaultLimit).
		WillReturnRows(sqlmock.NewRows(attemptColumns).
			AddRow(failed.IdempotencyKey, 2, failed.Timestamp, false, "Maria Souza", "maria@example.com",
				503, "HTTP 503: Service Unavailable", 15000).
			AddRow(failed.IdempotencyKey, 1, baseTime, false, "Maria Souza", "maria@example.com",
				nil, "context deadline exceeded", 15001))

	entries, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 2, entries[0].Attempt)
	require.NotNil(t, entries[0].StatusCode)
	assert.Equal(t, 503, *entries[0].StatusCode)
	assert.Nil(t, entries[1].StatusCode)
	require.NotNil(t, entries[1].Error)
	assert.Equal(t, "context deadline exceeded", *entries[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEmpty(t *testing.T) {
	store, mock := newTestPostgresStore(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(attemptColumns))

	entries, err := store.List(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
