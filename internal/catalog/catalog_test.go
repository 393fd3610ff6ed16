package catalog

import (
	"context"
	"testing"
	"time"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestCatalog(t *testing.T) (*Catalog, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	c := New(store, logger.NewTestLogger(t))
	c.now = func() time.Time { return fixedNow }
	return c, store
}

func createTestSpec() models.FundSpec {
	return models.FundSpec{
		Nome:  "Fundo Teste (Sul)",
		Tipo:  models.TipoConstitucional,
		Ativo: true,
		Criterios: models.Criterios{
			Regioes: []string{"Sul"},
		},
	}
}

func invalidSpecMessage(t *testing.T, err error) string {
	t.Helper()
	require.ErrorIs(t, err, apperrors.ErrInvalidFundSpec)
	stdErr, ok := apperrors.AsStandard(err)
	require.True(t, ok)
	return stdErr.Message
}

// ==========================
// Create
// ==========================

func TestCatalog_Create_Success(t *testing.T) {
	c, store := newTestCatalog(t)
	ctx := context.Background()

	fund, err := c.Create(ctx, "FUNDO_SUL", createTestSpec())
	require.NoError(t, err)
	assert.Equal(t, "FUNDO_SUL", fund.ID)
	assert.Equal(t, fixedNow, fund.AtualizadoEm)

	stored, err := store.Get(ctx, "FUNDO_SUL")
	require.NoError(t, err)
	assert.Equal(t, fund, stored)
}

func TestCatalog_Create_Duplicate(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Create(ctx, "FUNDO_SUL", createTestSpec())
	require.NoError(t, err)

	_, err = c.Create(ctx, "FUNDO_SUL", createTestSpec())
	assert.ErrorIs(t, err, apperrors.ErrFundAlreadyExists)
}

func TestCatalog_Create_RejectsInvalidSpec(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		mutate  func(*models.FundSpec)
		wantMsg string
	}{
		{"id with dash", "FUNDO-SUL", nil, msgInvalidID},
		{"id with space", "FUNDO SUL", nil, msgInvalidID},
		{"id too long", "ABCDEFGHIJABCDEFGHIJABCDEFGHIJX", nil, msgInvalidID},
		{"empty id", "", nil, msgInvalidID},
		{"name with markup", "FUNDO_SUL", func(s *models.FundSpec) { s.Nome = "Fundo <b>" }, msgInvalidName},
		{"name with slash", "FUNDO_SUL", func(s *models.FundSpec) { s.Nome = "Fundo A/B" }, msgInvalidName},
		{"empty name", "FUNDO_SUL", func(s *models.FundSpec) { s.Nome = "" }, msgInvalidName},
		{"unknown tipo", "FUNDO_SUL", func(s *models.FundSpec) { s.Tipo = "anjo" }, msgInvalidTipo},
		{
			"unknown garantia", "FUNDO_SUL",
			func(s *models.FundSpec) { s.Criterios.Garantias = []string{"Ouro"} },
			"Critérios do fundo inválidos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCatalog(t)
			spec := createTestSpec()
			if tt.mutate != nil {
				tt.mutate(&spec)
			}

			_, err := c.Create(context.Background(), tt.id, spec)
			assert.Contains(t, invalidSpecMessage(t, err), tt.wantMsg)
		})
	}
}

func TestCatalog_Create_AcceptsAccentsAndPunctuation(t *testing.T) {
	c, _ := newTestCatalog(t)
	spec := createTestSpec()
	spec.Nome = "Crédito Solidário & Cia. (Região Sul), 2025_v1-b"

	_, err := c.Create(context.Background(), "CREDITO_SOLIDARIO", spec)
	assert.NoError(t, err)
}

// ==========================
// Update / Deactivate
// ==========================

func TestCatalog_Update_ReplacesWholeRecord(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Create(ctx, "FUNDO_SUL", createTestSpec())
	require.NoError(t, err)

	spec := models.FundSpec{
		Nome:  "Fundo Teste",
		Tipo:  models.TipoDesenvolvimento,
		Ativo: true,
		Criterios: models.Criterios{
			ExigeCNPJ: true,
			Garantias: []string{models.GarantiaEquipamento},
		},
	}
	updated, err := c.Update(ctx, "FUNDO_SUL", spec)
	require.NoError(t, err)

	got, err := c.Get(ctx, "FUNDO_SUL")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Empty(t, got.Criterios.Regioes)
	assert.Equal(t, models.TipoDesenvolvimento, got.Tipo)
}

func TestCatalog_Update_Missing(t *testing.T) {
	c, _ := newTestCatalog(t)

	_, err := c.Update(context.Background(), "NAO_EXISTE", createTestSpec())
	assert.ErrorIs(t, err, apperrors.ErrFundNotFound)
}

func TestCatalog_Upsert(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, created, err := c.Upsert(ctx, "FUNDO_SUL", createTestSpec())
	require.NoError(t, err)
	assert.True(t, created)

	spec := createTestSpec()
	spec.Nome = "Fundo Renomeado"
	fund, created, err := c.Upsert(ctx, "FUNDO_SUL", spec)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Fundo Renomeado", fund.Nome)
}

func TestCatalog_Deactivate_KeepsRecord(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.Create(ctx, "FUNDO_SUL", createTestSpec())
	require.NoError(t, err)
	_, err = c.Create(ctx, "FUNDO_NORTE", createTestSpec())
	require.NoError(t, err)

	fund, err := c.Deactivate(ctx, "FUNDO_SUL")
	require.NoError(t, err)
	assert.False(t, fund.Ativo)

	got, err := c.Get(ctx, "FUNDO_SUL")
	require.NoError(t, err)
	assert.False(t, got.Ativo)

	all, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := c.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "FUNDO_NORTE", active[0].ID)
}

func TestCatalog_Deactivate_Missing(t *testing.T) {
	c, _ := newTestCatalog(t)

	_, err := c.Deactivate(context.Background(), "NAO_EXISTE")
	assert.ErrorIs(t, err, apperrors.ErrFundNotFound)
}

func TestCatalog_List_OrderedByID(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	for _, id := range []string{"ZETA", "ALFA", "MEIO"} {
		_, err := c.Create(ctx, id, createTestSpec())
		require.NoError(t, err)
	}

	all, err := c.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, f := range all {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"ALFA", "MEIO", "ZETA"}, ids)
}

// ==========================
// Store isolation
// ==========================

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	spec := createTestSpec()
	require.NoError(t, store.Put(ctx, models.Fund{ID: "FUNDO_SUL", FundSpec: spec}))

	got, err := store.Get(ctx, "FUNDO_SUL")
	require.NoError(t, err)
	got.Criterios.Regioes[0] = "Norte"

	again, err := store.Get(ctx, "FUNDO_SUL")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sul"}, again.Criterios.Regioes)
}

// ==========================
// Seed
// ==========================

func TestSeed_SkipsExisting(t *testing.T) {
	c, store := newTestCatalog(t)
	ctx := context.Background()

	spec := createTestSpec()
	spec.Nome = "Editado pelo admin"
	require.NoError(t, store.Put(ctx, models.Fund{ID: "BNB_FNE", FundSpec: spec}))

	inserted, err := Seed(ctx, store, DefaultFunds())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultFunds())-1, inserted)

	got, err := c.Get(ctx, "BNB_FNE")
	require.NoError(t, err)
	assert.Equal(t, "Editado pelo admin", got.Nome)
}

func TestDefaultFunds_AreValid(t *testing.T) {
	v := NewValidator()
	funds := DefaultFunds()
	assert.Len(t, funds, 15)

	byTipo := map[models.FundTipo]int{}
	for _, f := range funds {
		assert.NoError(t, validateFund(v, f), f.ID)
		assert.True(t, f.Ativo, f.ID)
		byTipo[f.Tipo]++
	}
	assert.Equal(t, 3, byTipo[models.TipoConstitucional])
	assert.Equal(t, 1, byTipo[models.TipoDesenvolvimento])
	assert.Equal(t, 8, byTipo[models.TipoPrivado])
	assert.Equal(t, 3, byTipo[models.TipoPF])
}
