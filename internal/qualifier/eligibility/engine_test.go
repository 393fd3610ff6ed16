package eligibility

import (
	"testing"

	"lead-qualifier/internal/catalog"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var privadoIDs = []string{"ASIA", "DAICOVAL", "F3", "MULTIPLIQUE", "SAFRA", "SB", "SIFRA", "SOFISA"}

func createTestProfile() models.Profile {
	return models.Profile{
		Nome:             "Maria Souza",
		NomeEmpresa:      "Souza Agro Ltda",
		Email:            "maria@example.com",
		Whatsapp:         "5581999998888",
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

func createPFProfile() models.Profile {
	p := createTestProfile()
	p.NomeEmpresa = ""
	p.SituacaoEmpresa = models.SituacaoPessoaFisica
	p.FaturamentoRenda = "15k_50k"
	p.Garantia = []string{models.GarantiaImovel}
	p.TiposImovel = []string{models.TipoImovelResidencial}
	return p
}

func newTestEngine(t *testing.T) *Engine {
	return NewEngine(logger.NewTestLogger(t))
}

func verdicts(list []models.FundVerdict) map[string]string {
	out := make(map[string]string, len(list))
	for _, v := range list {
		out[v.ID] = v.Motivo
	}
	return out
}

func assertPartition(t *testing.T, res models.EligibilityResult, funds []models.Fund) {
	t.Helper()
	rec := verdicts(res.Eligibility.Recomendados)
	nao := verdicts(res.Eligibility.NaoElegiveis)
	assert.Len(t, res.Eligibility.Recomendados, len(rec), "recommended ids must be unique")
	assert.Len(t, res.Eligibility.NaoElegiveis, len(nao), "ineligible ids must be unique")

	for _, f := range funds {
		if !f.Ativo {
			continue
		}
		_, inRec := rec[f.ID]
		_, inNao := nao[f.ID]
		assert.True(t, inRec != inNao, "fund %s must be in exactly one list", f.ID)
	}
	assert.Len(t, res.FundosAlcancaveis, len(res.Eligibility.Recomendados))
	assert.Len(t, res.FundosNaoAlcancaveis, len(res.Eligibility.NaoElegiveis))
}

// ==========================
// Scenarios
// ==========================

func TestEngine_CompanyInNordesteWithEquipment(t *testing.T) {
	funds := catalog.DefaultFunds()
	res := newTestEngine(t).Evaluate(createTestProfile(), 655, funds)
	assertPartition(t, res, funds)

	rec := verdicts(res.Eligibility.Recomendados)
	nao := verdicts(res.Eligibility.NaoElegiveis)

	assert.Equal(t, "Região compatível com fundo constitucional", rec["BNB_FNE"])
	assert.Equal(t, "Fora da região de atuação do BASA - FNO.", nao["BASA_FNO"])
	assert.Equal(t, "Fora da região de atuação do FCO - via Banco do Brasil.", nao["FCO_BB"])
	assert.Equal(t, "CNPJ + garantia equipamento", rec["BNDES"])

	for _, id := range []string{"ASIA", "SB", "SIFRA", "F3"} {
		assert.Equal(t, "Garantia não aceita pelo fundo.", nao[id], id)
	}
	for _, id := range []string{"MULTIPLIQUE", "SAFRA", "SOFISA", "DAICOVAL"} {
		assert.Equal(t, "Faturamento e garantias adequadas", rec[id], id)
	}
	for _, id := range []string{"TCASH", "CASHME", "GALERIA"} {
		assert.Equal(t, "Exige pessoa física com imóvel residencial como garantia.", nao[id], id)
	}
	assert.Empty(t, res.Eligibility.PossiveisAtipicos)
	assert.Empty(t, res.Skipped)
}

func TestEngine_IndividualWithResidentialProperty(t *testing.T) {
	funds := catalog.DefaultFunds()
	res := newTestEngine(t).Evaluate(createPFProfile(), 500, funds)
	assertPartition(t, res, funds)

	rec := verdicts(res.Eligibility.Recomendados)
	nao := verdicts(res.Eligibility.NaoElegiveis)

	for _, id := range []string{"TCASH", "CASHME", "GALERIA"} {
		assert.Equal(t, "PF com imóvel residencial", rec[id], id)
	}
	for _, id := range privadoIDs {
		assert.Equal(t, "Fundos privados são para empresas.", nao[id], id)
	}
	assert.Equal(t, "Exige CNPJ.", nao["BNDES"])

	short := verdicts(res.FundosNaoAlcancaveis)
	assert.Equal(t, "Pessoa física", short["ASIA"])
	assert.Equal(t, "Sem CNPJ", short["BNDES"])
}

func TestEngine_IndividualWithoutResidentialProperty(t *testing.T) {
	p := createPFProfile()
	p.TiposImovel = []string{"Comercial"}

	res := newTestEngine(t).Evaluate(p, 500, catalog.DefaultFunds())
	nao := verdicts(res.Eligibility.NaoElegiveis)
	short := verdicts(res.FundosNaoAlcancaveis)

	assert.Equal(t, "Exige imóvel residencial como garantia.", nao["TCASH"])
	assert.Equal(t, "Sem imóvel residencial", short["TCASH"])

	p.Garantia = []string{models.GarantiaVeiculo}
	p.TiposImovel = nil
	res = newTestEngine(t).Evaluate(p, 500, catalog.DefaultFunds())
	assert.Equal(t, "Exige imóvel residencial como garantia.", verdicts(res.Eligibility.NaoElegiveis)["GALERIA"])
}

func TestEngine_RevenueCheckWinsOverCollateral(t *testing.T) {
	p := createTestProfile()
	p.SituacaoEmpresa = models.SituacaoCNPJNovo
	p.FaturamentoRenda = "<10"
	p.Garantia = []string{models.GarantiaRecebiveis}

	funds := catalog.DefaultFunds()
	res := newTestEngine(t).Evaluate(p, 400, funds)
	assertPartition(t, res, funds)

	nao := verdicts(res.Eligibility.NaoElegiveis)
	short := verdicts(res.FundosNaoAlcancaveis)
	for _, id := range privadoIDs {
		assert.Equal(t, "Faturamento abaixo do piso mínimo.", nao[id], id)
		assert.Equal(t, "Faturamento insuficiente", short[id], id)
	}
}

func TestEngine_CompanyUnderJudicialRecovery(t *testing.T) {
	p := createTestProfile()
	p.SituacaoEmpresa = models.SituacaoRJHomologada

	res := newTestEngine(t).Evaluate(p, 300, catalog.DefaultFunds())
	nao := verdicts(res.Eligibility.NaoElegiveis)

	assert.Equal(t, "Exige CNPJ.", nao["BNDES"])
	for _, id := range privadoIDs {
		assert.Equal(t, "Fundos privados exigem CNPJ.", nao[id], id)
	}
}

func TestEngine_DesenvolvimentoChecksEntityBeforeCollateral(t *testing.T) {
	p := createPFProfile()
	p.Garantia = []string{models.GarantiaVeiculo}

	res := newTestEngine(t).Evaluate(p, 300, catalog.DefaultFunds())
	assert.Equal(t, "Exige CNPJ.", verdicts(res.Eligibility.NaoElegiveis)["BNDES"])

	p = createTestProfile()
	p.Garantia = []string{models.GarantiaVeiculo}
	res = newTestEngine(t).Evaluate(p, 300, catalog.DefaultFunds())
	assert.Equal(t, "Exige garantia em equipamentos.", verdicts(res.Eligibility.NaoElegiveis)["BNDES"])
	assert.Equal(t, "Garantia inadequada", verdicts(res.FundosNaoAlcancaveis)["BNDES"])
}

func TestEngine_BareCriteriaKeepTipoRules(t *testing.T) {
	desenvolvimento := models.Fund{ID: "DESENV", FundSpec: models.FundSpec{
		Nome: "Desenvolvimento", Tipo: models.TipoDesenvolvimento, Ativo: true,
	}}
	homeEquity := models.Fund{ID: "HOME", FundSpec: models.FundSpec{
		Nome: "Home Equity", Tipo: models.TipoPF, Ativo: true,
	}}
	funds := []models.Fund{desenvolvimento, homeEquity}

	companyWithVehicle := createTestProfile()
	companyWithVehicle.Garantia = []string{models.GarantiaVeiculo}

	individualWithVehicle := createPFProfile()
	individualWithVehicle.Garantia = []string{models.GarantiaVeiculo}
	individualWithVehicle.TiposImovel = nil

	individualWithLand := createPFProfile()
	individualWithLand.TiposImovel = []string{"Terreno"}

	tests := []struct {
		name        string
		profile     models.Profile
		recommended []string
		rejected    map[string]string
	}{
		{
			name:        "company with equipment",
			profile:     createTestProfile(),
			recommended: []string{"DESENV"},
			rejected:    map[string]string{"HOME": "Exige pessoa física com imóvel residencial como garantia."},
		},
		{
			name:    "company without equipment",
			profile: companyWithVehicle,
			rejected: map[string]string{
				"DESENV": "Exige garantia em equipamentos.",
				"HOME":   "Exige pessoa física com imóvel residencial como garantia.",
			},
		},
		{
			name:        "individual with residential property",
			profile:     createPFProfile(),
			recommended: []string{"HOME"},
			rejected:    map[string]string{"DESENV": "Exige CNPJ."},
		},
		{
			name:    "individual without property",
			profile: individualWithVehicle,
			rejected: map[string]string{
				"DESENV": "Exige CNPJ.",
				"HOME":   "Exige imóvel residencial como garantia.",
			},
		},
		{
			name:    "individual with non-residential property",
			profile: individualWithLand,
			rejected: map[string]string{
				"DESENV": "Exige CNPJ.",
				"HOME":   "Exige imóvel residencial como garantia.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestEngine(t).Evaluate(tt.profile, 500, funds)
			assertPartition(t, res, funds)

			recommended := verdicts(res.Eligibility.Recomendados)
			assert.Len(t, recommended, len(tt.recommended))
			for _, id := range tt.recommended {
				assert.Contains(t, recommended, id)
			}
			rejected := verdicts(res.Eligibility.NaoElegiveis)
			for id, motivo := range tt.rejected {
				assert.Equal(t, motivo, rejected[id])
			}
		})
	}
}

func TestEngine_WildcardCollateralLiftsDefault(t *testing.T) {
	fund := models.Fund{ID: "DESENV", FundSpec: models.FundSpec{
		Nome: "Desenvolvimento", Tipo: models.TipoDesenvolvimento, Ativo: true,
		Criterios: models.Criterios{Garantias: []string{models.RegiaoTodas}},
	}}
	p := createTestProfile()
	p.Garantia = []string{models.GarantiaVeiculo}

	res := newTestEngine(t).Evaluate(p, 500, []models.Fund{fund})
	assert.Contains(t, verdicts(res.Eligibility.Recomendados), "DESENV")

	res = newTestEngine(t).Evaluate(createPFProfile(), 500, []models.Fund{fund})
	assert.Equal(t, "Exige CNPJ.", verdicts(res.Eligibility.NaoElegiveis)["DESENV"])
}

// ==========================
// Privado floors
// ==========================

func TestEngine_SegmentFloors(t *testing.T) {
	tests := []struct {
		name     string
		revenue  string
		segmento []string
		want     bool
	}{
		{"construtora above its floor", "10-80", []string{"Construtora"}, true},
		{"other segment below catch-all floor", "10-80", []string{"Agro"}, false},
		{"most favourable segment wins", "10-80", []string{"Agro", "Construtora"}, true},
		{"large company clears catch-all", ">80", []string{"Agro"}, true},
	}

	var multiplique []models.Fund
	for _, f := range catalog.DefaultFunds() {
		if f.ID == "MULTIPLIQUE" {
			multiplique = append(multiplique, f)
		}
	}
	require.Len(t, multiplique, 1)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createTestProfile()
			p.FaturamentoRenda = tt.revenue
			p.Segmento = tt.segmento

			res := newTestEngine(t).Evaluate(p, 500, multiplique)
			assert.Equal(t, tt.want, len(res.Eligibility.Recomendados) == 1)
		})
	}
}

func TestEngine_CollateralFloor(t *testing.T) {
	fund := models.Fund{ID: "VEIC", FundSpec: models.FundSpec{
		Nome: "Veículos", Tipo: models.TipoPrivado, Ativo: true,
		Criterios: models.Criterios{
			PisosGarantia: map[string]decimal.Decimal{models.GarantiaVeiculo: decimal.NewFromInt(100)},
		},
	}}
	p := createTestProfile()
	p.FaturamentoRenda = "10-80"
	p.Garantia = []string{models.GarantiaVeiculo}

	res := newTestEngine(t).Evaluate(p, 500, []models.Fund{fund})
	assert.Equal(t, "Garantia não aceita pelo fundo.", verdicts(res.Eligibility.NaoElegiveis)["VEIC"])

	p.Garantia = []string{models.GarantiaVeiculo, models.GarantiaEstoque}
	res = newTestEngine(t).Evaluate(p, 500, []models.Fund{fund})
	assert.Contains(t, verdicts(res.Eligibility.Recomendados), "VEIC")
}

func TestEngine_PrivadoWithoutListRejectsMissingCollateral(t *testing.T) {
	p := createTestProfile()
	p.Garantia = []string{models.GarantiaNenhuma}

	res := newTestEngine(t).Evaluate(p, 500, catalog.DefaultFunds())
	assert.Equal(t, "Garantia não aceita pelo fundo.", verdicts(res.Eligibility.NaoElegiveis)["SAFRA"])
}

// ==========================
// Catalog handling
// ==========================

func TestEngine_SkipsInactiveAndUnknownFunds(t *testing.T) {
	funds := catalog.DefaultFunds()
	funds[0].Ativo = false
	funds = append(funds, models.Fund{ID: "ANJO", FundSpec: models.FundSpec{
		Nome: "Anjo", Tipo: "anjo", Ativo: true,
	}})

	res := newTestEngine(t).Evaluate(createTestProfile(), 655, funds)

	assert.Equal(t, []string{"ANJO"}, res.Skipped)
	all := len(res.Eligibility.Recomendados) + len(res.Eligibility.NaoElegiveis)
	assert.Equal(t, 14, all)
	assert.NotContains(t, verdicts(res.Eligibility.Recomendados), funds[0].ID)
	assert.NotContains(t, verdicts(res.Eligibility.NaoElegiveis), funds[0].ID)
}

func TestEngine_DuplicateFundCountsOnce(t *testing.T) {
	funds := catalog.DefaultFunds()
	funds = append(funds, funds[0])

	res := newTestEngine(t).Evaluate(createTestProfile(), 655, funds)
	assertPartition(t, res, funds[:15])
	assert.Equal(t, 15, len(res.Eligibility.Recomendados)+len(res.Eligibility.NaoElegiveis))
}

func TestEngine_WildcardRegion(t *testing.T) {
	fund := models.Fund{ID: "NACIONAL", FundSpec: models.FundSpec{
		Nome: "Nacional", Tipo: models.TipoConstitucional, Ativo: true,
		Criterios: models.Criterios{Regioes: []string{models.RegiaoTodas}},
	}}
	p := createTestProfile()
	p.Local = "Sul"

	res := newTestEngine(t).Evaluate(p, 500, []models.Fund{fund})
	assert.Contains(t, verdicts(res.Eligibility.Recomendados), "NACIONAL")
}

func TestEngine_AdminCriteriaNarrowEligibleFunds(t *testing.T) {
	fund := models.Fund{ID: "AGRO_NE", FundSpec: models.FundSpec{
		Nome: "Agro Nordeste", Tipo: models.TipoConstitucional, Ativo: true,
		Criterios: models.Criterios{
			Regioes:   []string{"Nordeste"},
			Segmentos: []string{"Agro"},
			Razoes:    []string{"Safra_Agro"},
		},
	}}

	res := newTestEngine(t).Evaluate(createTestProfile(), 500, []models.Fund{fund})
	assert.Equal(t, "Razões Ampliacao não aceitas.", verdicts(res.Eligibility.NaoElegiveis)["AGRO_NE"])

	p := createTestProfile()
	p.Razao = []string{"Ampliacao", "Safra_Agro"}
	res = newTestEngine(t).Evaluate(p, 500, []models.Fund{fund})
	assert.Contains(t, verdicts(res.Eligibility.Recomendados), "AGRO_NE")
}

func TestEngine_RegisterCustomEvaluator(t *testing.T) {
	e := newTestEngine(t)
	e.Register("anjo", EvaluatorFunc(func(f models.Fund, p models.Profile) Verdict {
		return eligible("Investidor anjo disponível")
	}))

	funds := []models.Fund{{ID: "ANJO", FundSpec: models.FundSpec{Nome: "Anjo", Tipo: "anjo", Ativo: true}}}
	res := e.Evaluate(createTestProfile(), 500, funds)
	assert.Equal(t, "Investidor anjo disponível", verdicts(res.Eligibility.Recomendados)["ANJO"])
	assert.Empty(t, res.Skipped)
}

// ==========================
// Properties
// ==========================

func TestEngine_PartitionHoldsForEveryProfile(t *testing.T) {
	funds := catalog.DefaultFunds()
	e := newTestEngine(t)

	for _, situacao := range models.SituacaoValues {
		for _, local := range models.LocalValues {
			for _, garantia := range models.GarantiaValues {
				p := createTestProfile()
				p.SituacaoEmpresa = situacao
				p.Local = local
				p.Garantia = []string{garantia}
				if garantia == models.GarantiaImovel {
					p.TiposImovel = []string{models.TipoImovelResidencial}
				}
				assertPartition(t, e.Evaluate(p, 400, funds), funds)
			}
		}
	}
}

func TestEngine_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	funds := catalog.DefaultFunds()

	first := e.Evaluate(createTestProfile(), 655, funds)
	second := e.Evaluate(createTestProfile(), 655, funds)
	assert.Equal(t, first.Eligibility, second.Eligibility)
	assert.Equal(t, first.Analise, second.Analise)
	assert.True(t, first.Aprovabilidade.Equal(second.Aprovabilidade))
}

func TestApprovability_Clamp(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{-500, "75.0"},
		{0, "85.0"},
		{100, "95.0"},
		{130, "98.0"},
		{655, "98.0"},
		{800, "98.0"},
	}

	for _, tt := range tests {
		got := Approvability(tt.score)
		assert.Equal(t, tt.want, got.StringFixed(1), "score %d", tt.score)
		assert.True(t, got.GreaterThanOrEqual(decimal.NewFromInt(75)))
		assert.True(t, got.LessThanOrEqual(decimal.NewFromInt(98)))
	}
}

func TestNarrative(t *testing.T) {
	p := createTestProfile()
	p.Segmento = []string{"Agro", "Tecnologia"}

	assert.Equal(t,
		"Análise baseada no perfil: cnpj_antigo, faturamento: >80. Localização: Nordeste. "+
			"Segmento: Agro, Tecnologia. Score final: 655/800 pontos (98.0% de aprovabilidade).",
		Narrative(p, 655))

	pf := createPFProfile()
	assert.Contains(t, Narrative(pf, 0), "pessoa_fisica, renda informada: 15k_50k.")
	assert.Contains(t, Narrative(pf, 0), "(85.0% de aprovabilidade)")
}

func TestEngine_Analise(t *testing.T) {
	res := newTestEngine(t).Evaluate(createTestProfile(), 655, catalog.DefaultFunds())

	assert.Equal(t, "98.0", res.Analise.ChanceEmprestimo)
	assert.Equal(t, 655, res.Analise.Pontuacao.ScoreTotal)
	assert.Equal(t, "81.9", res.Analise.Pontuacao.ScorePorcentagem)
	assert.Len(t, res.Analise.Pontuacao.Etapas, 8)
	assert.Equal(t, 655, res.Score)
}
