// internal/catalog/postgres_store.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const createFundsTable = `
CREATE TABLE IF NOT EXISTS lead_funds (
	id            TEXT PRIMARY KEY,
	nome          TEXT NOT NULL,
	tipo          TEXT NOT NULL,
	ativo         BOOLEAN NOT NULL DEFAULT TRUE,
	criterios     JSONB NOT NULL DEFAULT '{}',
	atualizado_em TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStore keeps funds in the lead_funds table; criterios is a jsonb
// document so new criteria keys need no migration.
type PostgresStore struct {
	db *sqlx.DB
}

type fundRow struct {
	ID           string    `db:"id"`
	Nome         string    `db:"nome"`
	Tipo         string    `db:"tipo"`
	Ativo        bool      `db:"ativo"`
	Criterios    []byte    `db:"criterios"`
	AtualizadoEm time.Time `db:"atualizado_em"`
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createFundsTable); err != nil {
		return apperrors.NewQueryExecutionFailedError("create lead_funds", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Fund, error) {
	var rows []fundRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, nome, tipo, ativo, criterios, atualizado_em FROM lead_funds ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewCatalogReadFailedError(err)
	}

	out := make([]models.Fund, 0, len(rows))
	for _, r := range rows {
		f, err := r.toFund()
		if err != nil {
			return nil, apperrors.NewCatalogReadFailedError(err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Fund, error) {
	var r fundRow
	err := s.db.GetContext(ctx, &r,
		`SELECT id, nome, tipo, ativo, criterios, atualizado_em FROM lead_funds WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Fund{}, apperrors.NewFundNotFoundError(id)
	}
	if err != nil {
		return models.Fund{}, apperrors.NewCatalogReadFailedError(err)
	}

	f, err := r.toFund()
	if err != nil {
		return models.Fund{}, apperrors.NewCatalogReadFailedError(err)
	}
	return f, nil
}

func (s *PostgresStore) Insert(ctx context.Context, fund models.Fund) error {
	criterios, err := json.Marshal(fund.Criterios)
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lead_funds (id, nome, tipo, ativo, criterios, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		fund.ID, fund.Nome, string(fund.Tipo), fund.Ativo, criterios, fund.AtualizadoEm,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.NewFundAlreadyExistsError(fund.ID)
	}
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, fund models.Fund) error {
	criterios, err := json.Marshal(fund.Criterios)
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lead_funds (id, nome, tipo, ativo, criterios, atualizado_em)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			nome = EXCLUDED.nome,
			tipo = EXCLUDED.tipo,
			ativo = EXCLUDED.ativo,
			criterios = EXCLUDED.criterios,
			atualizado_em = EXCLUDED.atualizado_em`,
		fund.ID, fund.Nome, string(fund.Tipo), fund.Ativo, criterios, fund.AtualizadoEm,
	)
	if err != nil {
		return apperrors.NewCatalogWriteFailedError(fund.ID, err)
	}
	return nil
}

func (r fundRow) toFund() (models.Fund, error) {
	f := models.Fund{
		ID: r.ID,
		FundSpec: models.FundSpec{
			Nome:  r.Nome,
			Tipo:  models.FundTipo(r.Tipo),
			Ativo: r.Ativo,
		},
		AtualizadoEm: r.AtualizadoEm.UTC(),
	}
	if len(r.Criterios) > 0 {
		if err := json.Unmarshal(r.Criterios, &f.Criterios); err != nil {
			return f, fmt.Errorf("fund %s criterios: %w", r.ID, err)
		}
	}
	return f, nil
}
