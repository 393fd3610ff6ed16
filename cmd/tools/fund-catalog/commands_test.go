package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"lead-qualifier/internal/catalog"
	"lead-qualifier/internal/models"
	"lead-qualifier/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, funds []models.Fund) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fundos.json")
	require.NoError(t, registry.Export(path, "test", funds))
	return path
}

func TestPrintFunds(t *testing.T) {
	funds := catalog.DefaultFunds()
	funds[0].Ativo = false

	var buf bytes.Buffer
	require.NoError(t, printFunds(&buf, funds, true))
	assert.NotContains(t, buf.String(), funds[0].ID+" ")
	assert.Contains(t, buf.String(), "BASA_FNO")
}

func TestValidateFunds(t *testing.T) {
	funds := catalog.DefaultFunds()
	assert.Empty(t, validateFunds(funds))

	funds[1].Tipo = "hibrido"
	problems := validateFunds(funds)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], funds[1].ID)
}

func TestEvaluate(t *testing.T) {
	raw := map[string]interface{}{
		"nome":              "João Lima",
		"nome_empresa":      "Lima Equipamentos",
		"email":             "joao@example.com",
		"whatsapp":          "81988887777",
		"como_chegou":       "google",
		"situacao_empresa":  "cnpj_antigo",
		"faturamento_renda": ">80",
		"local":             "Nordeste",
		"municipio_estado":  "Recife/PE",
		"segmento":          []interface{}{"Industria_Atacado"},
		"razao":             []interface{}{"Ampliacao"},
		"garantia":          []interface{}{"Equipamento"},
	}

	result, err := evaluate(raw, catalog.DefaultFunds())
	require.NoError(t, err)
	assert.Contains(t, result.RecommendedIDs(), "BNB_FNE")

	delete(raw, "email")
	_, err = evaluate(raw, catalog.DefaultFunds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestListCommand(t *testing.T) {
	path := writeSeed(t, catalog.DefaultFunds())

	cmd := listCmd()
	cmd.Flags().String("seed", path, "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "MULTIPLIQUE")
}
