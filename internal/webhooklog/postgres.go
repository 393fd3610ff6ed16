// internal/webhooklog/postgres.go
package webhooklog

import (
	"context"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"

	"github.com/jmoiron/sqlx"
)

const createAttemptsTable = `
CREATE TABLE IF NOT EXISTS lead_delivery_attempts (
	id              BIGSERIAL PRIMARY KEY,
	idempotency_key UUID NOT NULL,
	attempt         INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	success         BOOLEAN NOT NULL,
	lead_name       TEXT NOT NULL,
	lead_email      TEXT NOT NULL,
	status_code     INTEGER,
	error           TEXT,
	duration_ms     BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS lead_delivery_attempts_created_at_idx
	ON lead_delivery_attempts (created_at DESC)`

// PostgresStore keeps every attempt; nothing is ever updated or removed.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createAttemptsTable); err != nil {
		return apperrors.NewQueryExecutionFailedError("create lead_delivery_attempts", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, a models.DeliveryAttempt) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO lead_delivery_attempts
			(idempotency_key, attempt, created_at, success, lead_name, lead_email, status_code, error, duration_ms)
		VALUES
			(:idempotency_key, :attempt, :created_at, :success, :lead_name, :lead_email, :status_code, :error, :duration_ms)`,
		a,
	)
	if err != nil {
		return apperrors.NewDeliveryLogWriteFailedError(err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]models.DeliveryAttempt, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var out []models.DeliveryAttempt
	err := s.db.SelectContext(ctx, &out, `
		SELECT idempotency_key, attempt, created_at, success, lead_name, lead_email, status_code, error, duration_ms
		FROM lead_delivery_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list lead_delivery_attempts", err)
	}
	if out == nil {
		out = []models.DeliveryAttempt{}
	}
	return out, nil
}
