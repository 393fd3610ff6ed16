package profile

import (
	"errors"
	"strings"
	"testing"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestSubmission() models.Submission {
	return models.Submission{
		Nome:             "Maria Souza",
		NomeEmpresa:      "Souza Agro LTDA",
		Email:            "maria@example.com",
		Whatsapp:         "(81) 99999-8888",
		ComoChegou:       "instagram",
		SituacaoEmpresa:  models.SituacaoCNPJAntigo,
		FaturamentoRenda: ">80",
		Local:            "Nordeste",
		MunicipioEstado:  "Recife/PE",
		Segmento:         []string{"Agro"},
		Razao:            []string{"Ampliacao"},
		Garantia:         []string{models.GarantiaEquipamento},
	}
}

func createTestRaw() map[string]interface{} {
	return map[string]interface{}{
		"nome":              "Maria Souza",
		"nome_empresa":      "Souza Agro LTDA",
		"email":             "maria@example.com",
		"whatsapp":          "81999998888",
		"como_chegou":       "google",
		"situacao_empresa":  "cnpj_novo",
		"faturamento_renda": "10-80",
		"local":             "Sul",
		"municipio_estado":  "Curitiba/PR",
		"segmento":          []interface{}{"Tecnologia"},
		"razao":             []interface{}{"Giro"},
		"garantia":          []interface{}{"Recebiveis"},
		"campo_extra":       "ignorado",
	}
}

func newTestValidator(t *testing.T) *Validator {
	return NewValidator(logger.NewTestLogger(t))
}

func validationErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	return verrs
}

// ==========================
// Happy Path
// ==========================

func TestValidator_Validate_Success(t *testing.T) {
	p, err := newTestValidator(t).Validate(createTestSubmission())
	require.NoError(t, err)

	assert.Equal(t, "5581999998888", p.Whatsapp)
	assert.Equal(t, models.SituacaoCNPJAntigo, p.SituacaoEmpresa)
	assert.Equal(t, []string{models.GarantiaEquipamento}, p.GarantiaDetalhada)
}

func TestValidator_ValidateRaw_Success(t *testing.T) {
	p, err := newTestValidator(t).ValidateRaw(createTestRaw())
	require.NoError(t, err)

	assert.Equal(t, "Maria Souza", p.Nome)
	assert.Equal(t, []string{"Tecnologia"}, p.Segmento)
	assert.Equal(t, "5581999998888", p.Whatsapp)
}

func TestValidator_ValidateRaw_WrongShape(t *testing.T) {
	raw := createTestRaw()
	raw["segmento"] = "Tecnologia"
	raw["nome"] = 42

	_, err := newTestValidator(t).ValidateRaw(raw)
	verrs := validationErrors(t, err)
	assert.True(t, verrs.Has("segmento", CodeInvalidType))
	assert.True(t, verrs.Has("nome", CodeInvalidType))
}

// ==========================
// Allow-list Sanitization
// ==========================

func TestValidator_OffListValueFailsLikeMissing(t *testing.T) {
	fields := []struct {
		name  string
		set   func(*models.Submission, bool)
		field string
	}{
		{"situacao", func(s *models.Submission, off bool) {
			s.SituacaoEmpresa = map[bool]string{true: "cnpj_fake", false: ""}[off]
		}, "situacao_empresa"},
		{"local", func(s *models.Submission, off bool) {
			s.Local = map[bool]string{true: "Atlantida", false: ""}[off]
		}, "local"},
		{"segmento", func(s *models.Submission, off bool) {
			s.Segmento = map[bool][]string{true: {"<script>"}, false: nil}[off]
		}, "segmento"},
		{"garantia", func(s *models.Submission, off bool) {
			s.Garantia = map[bool][]string{true: {"Ouro"}, false: nil}[off]
		}, "garantia"},
	}

	v := newTestValidator(t)
	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			offList := createTestSubmission()
			f.set(&offList, true)
			omitted := createTestSubmission()
			f.set(&omitted, false)

			_, errOff := v.Validate(offList)
			_, errOmitted := v.Validate(omitted)

			assert.Equal(t, validationErrors(t, errOmitted), validationErrors(t, errOff))
			assert.True(t, validationErrors(t, errOff).Has(f.field, CodeMissingRequired))
		})
	}
}

func TestValidator_FiltersMixedLists(t *testing.T) {
	sub := createTestSubmission()
	sub.Razao = []string{"Giro", "Roubo", "Giro", " Ampliacao "}

	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"Giro", "Ampliacao"}, p.Razao)
}

func TestValidator_RevenueVocabularyFollowsPersonType(t *testing.T) {
	sub := createTestSubmission()
	sub.FaturamentoRenda = "acima_50k"

	_, err := newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("faturamento_renda", CodeMissingRequired))

	sub.SituacaoEmpresa = models.SituacaoPessoaFisica
	sub.NomeEmpresa = ""
	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, "acima_50k", p.FaturamentoRenda)
}

// ==========================
// Cross-field Rules
// ==========================

func TestValidator_RecuperacaoJudicial(t *testing.T) {
	sub := createTestSubmission()
	sub.SituacaoEmpresa = models.SituacaoRecuperacaoJudicial

	_, err := newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("recuperacao_judicial_homologada", CodeMissingRequired))

	sub.RecuperacaoJudicialHomologada = models.RecuperacaoNaoHomologada
	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, models.SituacaoRJNaoHomologada, p.SituacaoEmpresa)
	assert.False(t, p.HasLegalEntity())
}

func TestValidator_ImplantacaoForcesNoRevenue(t *testing.T) {
	sub := createTestSubmission()
	sub.SituacaoEmpresa = models.SituacaoImplantacao
	sub.FaturamentoRenda = ""

	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, models.FaturamentoNaoTem, p.FaturamentoRenda)
}

func TestValidator_CompanyNameRequired(t *testing.T) {
	sub := createTestSubmission()
	sub.NomeEmpresa = "   "

	_, err := newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("nome_empresa", CodeMissingRequired))
}

func TestValidator_ComoChegouDetails(t *testing.T) {
	sub := createTestSubmission()
	sub.ComoChegou = "outros"

	_, err := newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("outros_detalhes", CodeMissingRequired))

	sub.OutrosDetalhes = "podcast"
	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, "outros (podcast)", p.ComoChegou)

	sub.ComoChegou = "indicacao"
	_, err = newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("indicacao_detalhes", CodeMissingRequired))
}

func TestValidator_OutrosRequireText(t *testing.T) {
	sub := createTestSubmission()
	sub.Segmento = []string{"Outros"}
	sub.Razao = []string{"Outros"}

	_, err := newTestValidator(t).Validate(sub)
	verrs := validationErrors(t, err)
	assert.True(t, verrs.Has("segmento_outros", CodeMissingRequired))
	assert.True(t, verrs.Has("razao_outros", CodeMissingRequired))
}

func TestValidator_MunicipioRequired(t *testing.T) {
	sub := createTestSubmission()
	sub.MunicipioEstado = ""

	_, err := newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("municipio_estado", CodeMissingRequired))
}

func TestValidator_ImovelExpandsSubtypes(t *testing.T) {
	sub := createTestSubmission()
	sub.Garantia = []string{"Veiculo", "Imovel"}

	_, err := newTestValidator(t).Validate(sub)
	assert.True(t, validationErrors(t, err).Has("tipos_imovel", CodeMissingRequired))

	sub.TiposImovel = []string{"Residencial", "Rural", "Castelo"}
	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"Veiculo", "Imovel Residencial", "Imovel Rural"}, p.GarantiaDetalhada)
	assert.Equal(t, []string{"Residencial", "Rural"}, p.TiposImovel)
	assert.Equal(t, []string{"Veiculo", "Imovel"}, p.Garantia)
}

func TestValidator_LegacyTipoImovel(t *testing.T) {
	sub := createTestSubmission()
	sub.Garantia = []string{"Imovel"}
	sub.TipoImovel = "Comercial"

	p, err := newTestValidator(t).Validate(sub)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comercial"}, p.TiposImovel)
}

// ==========================
// Text and Format Rules
// ==========================

func TestValidator_TextRejectedNotStripped(t *testing.T) {
	tests := []struct {
		name  string
		set   func(*models.Submission)
		field string
		code  string
	}{
		{"markup", func(s *models.Submission) { s.Nome = "<b>Maria</b>" }, "nome", CodeForbiddenChars},
		{"too long", func(s *models.Submission) { s.Instagram = strings.Repeat("a", 51) }, "instagram", CodeTooLong},
		{"bad email", func(s *models.Submission) { s.Email = "maria@" }, "email", CodeInvalidFormat},
		{"short phone", func(s *models.Submission) { s.Whatsapp = "12345" }, "whatsapp", CodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := createTestSubmission()
			tt.set(&sub)
			_, err := newTestValidator(t).Validate(sub)
			assert.True(t, validationErrors(t, err).Has(tt.field, tt.code))
		})
	}
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	_, err := newTestValidator(t).Validate(models.Submission{})
	verrs := validationErrors(t, err)

	assert.GreaterOrEqual(t, len(verrs), 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestNormalizeWhatsapp(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"81999998888", "5581999998888", true},
		{"(11) 3333-4444", "551133334444", true},
		{"+55 81 99999-8888", "5581999998888", true},
		{"5581999998888123", "5581999998888", true},
		{"999", "55999", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeWhatsapp(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestValidationErrors_StandardError(t *testing.T) {
	verrs := ValidationErrors{{Field: "email", Code: CodeInvalidFormat, Message: "E-mail inválido"}}
	std := verrs.StandardError()

	assert.Equal(t, apperrors.ErrCodeValidationFailed, std.Code)
	assert.False(t, std.Retryable)
	assert.Contains(t, std.Details, "email")
}
