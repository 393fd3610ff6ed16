// internal/common/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"lead-qualifier/internal/common/config"
	apperrors "lead-qualifier/internal/common/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresClient holds the pool shared by the catalog and webhook log stores.
type PostgresClient struct {
	DB *sqlx.DB
}

// NewPostgres opens a PostgreSQL pool; the connection is verified lazily by Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	return nil
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// GetDB returns the underlying *sqlx.DB
func (c *PostgresClient) GetDB() *sqlx.DB {
	return c.DB
}
