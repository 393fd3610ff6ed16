// internal/qualifier/eligibility/engine.go
package eligibility

import (
	"fmt"
	"strings"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/metrics"
	"lead-qualifier/internal/models"
	"lead-qualifier/internal/qualifier/scoring"

	"github.com/shopspring/decimal"
)

var (
	chanceFloor = decimal.NewFromInt(75)
	chanceCap   = decimal.NewFromInt(98)
	chanceBase  = decimal.NewFromInt(85)
	chanceSlope = decimal.RequireFromString("0.8")
	stepCount   = decimal.NewFromInt(scoring.Steps)
)

// Engine dispatches every fund to the evaluator registered for its tipo.
// It holds no per-request state and is safe for concurrent use once all
// evaluators are registered.
type Engine struct {
	evaluators map[models.FundTipo]Evaluator
	logger     logger.Logger
}

// NewEngine returns an engine with the four built-in fund categories.
func NewEngine(log logger.Logger) *Engine {
	e := &Engine{
		evaluators: make(map[models.FundTipo]Evaluator),
		logger:     logger.ForComponent(log, "eligibility-engine"),
	}
	e.Register(models.TipoConstitucional, EvaluatorFunc(evaluateConstitucional))
	e.Register(models.TipoDesenvolvimento, EvaluatorFunc(evaluateDesenvolvimento))
	e.Register(models.TipoPrivado, EvaluatorFunc(evaluatePrivado))
	e.Register(models.TipoPF, EvaluatorFunc(evaluatePF))
	return e
}

// Register adds or replaces the evaluator for a fund tipo.
func (e *Engine) Register(tipo models.FundTipo, ev Evaluator) {
	e.evaluators[tipo] = ev
}

// Evaluate places every active fund of the snapshot in exactly one of the
// recommended or ineligible lists. Funds whose tipo has no evaluator are
// skipped and reported in Skipped.
func (e *Engine) Evaluate(p models.Profile, score int, funds []models.Fund) models.EligibilityResult {
	res := models.EligibilityResult{
		Eligibility: models.Eligibility{
			Recomendados:      []models.FundVerdict{},
			PossiveisAtipicos: []models.FundVerdict{},
			NaoElegiveis:      []models.FundVerdict{},
		},
		FundosAlcancaveis:    []models.FundVerdict{},
		FundosNaoAlcancaveis: []models.FundVerdict{},
		Score:                score,
	}

	seen := make(map[string]struct{}, len(funds))
	for _, fund := range funds {
		if !fund.Ativo {
			continue
		}
		if _, dup := seen[fund.ID]; dup {
			continue
		}

		ev, ok := e.evaluators[fund.Tipo]
		if !ok {
			err := apperrors.NewCatalogInconsistencyError(fund.ID, fmt.Sprintf("no evaluator for tipo %q", fund.Tipo))
			e.logger.Warn("fund skipped", map[string]interface{}{
				"fundId": fund.ID,
				"error":  err.Error(),
			})
			res.Skipped = append(res.Skipped, fund.ID)
			continue
		}
		seen[fund.ID] = struct{}{}

		v := ev.Evaluate(fund, p)
		if v.Eligible {
			v = applyCriteria(fund.Criterios, p, v)
		}

		if v.Eligible {
			res.Eligibility.Recomendados = append(res.Eligibility.Recomendados,
				models.FundVerdict{ID: fund.ID, Nome: fund.Nome, Motivo: v.Motivo})
			res.FundosAlcancaveis = append(res.FundosAlcancaveis,
				models.FundVerdict{ID: fund.ID, Nome: fund.Nome, Motivo: v.Resumo})
			metrics.FundVerdicts.WithLabelValues(fund.ID, "recomendado").Inc()
			continue
		}
		res.Eligibility.NaoElegiveis = append(res.Eligibility.NaoElegiveis,
			models.FundVerdict{ID: fund.ID, Nome: fund.Nome, Motivo: v.Motivo})
		res.FundosNaoAlcancaveis = append(res.FundosNaoAlcancaveis,
			models.FundVerdict{ID: fund.ID, Nome: fund.Nome, Motivo: v.Resumo})
		metrics.FundVerdicts.WithLabelValues(fund.ID, "nao_elegivel").Inc()
	}

	res.Aprovabilidade = Approvability(score)
	res.Analise = models.Analise{
		Descritiva:       Narrative(p, score),
		ChanceEmprestimo: res.Aprovabilidade.StringFixed(1),
		Pontuacao: models.Pontuacao{
			ScoreTotal:       score,
			ScorePorcentagem: scoring.Percentage(score),
			Descricao:        scoring.Descricao,
			Etapas:           scoring.Breakdown(p),
		},
	}

	metrics.LeadEvaluations.Inc()
	e.logger.Debug("lead evaluated", map[string]interface{}{
		"score":        score,
		"recomendados": len(res.Eligibility.Recomendados),
		"naoElegiveis": len(res.Eligibility.NaoElegiveis),
		"skipped":      len(res.Skipped),
	})
	return res
}

// applyCriteria narrows an eligible verdict with the optional admin criteria
// shared by every tipo.
func applyCriteria(c models.Criterios, p models.Profile, v Verdict) Verdict {
	if !accepts(c.SituacaoEmpresa, p.SituacaoEmpresa) {
		return rejected(fmt.Sprintf("Situação empresarial '%s' não aceita.", p.SituacaoEmpresa), "Situação não aceita")
	}
	if !accepts(c.FaturamentoRenda, p.FaturamentoRenda) {
		return rejected(fmt.Sprintf("Faturamento/renda '%s' não aceito.", p.FaturamentoRenda), "Faturamento não aceito")
	}
	if !acceptsAny(c.Segmentos, p.Segmento) {
		return rejected(fmt.Sprintf("Segmentos %s não aceitos.", strings.Join(p.Segmento, ", ")), "Segmento não aceito")
	}
	if !acceptsAny(c.Razoes, p.Razao) {
		return rejected(fmt.Sprintf("Razões %s não aceitas.", strings.Join(p.Razao, ", ")), "Razão não aceita")
	}
	return v
}

func acceptsAny(allowed, values []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, v := range values {
		if accepts(allowed, v) {
			return true
		}
	}
	return false
}

// Approvability is clamp(75, 98, score/8*0.8 + 85).
func Approvability(score int) decimal.Decimal {
	v := decimal.NewFromInt(int64(score)).Div(stepCount).Mul(chanceSlope).Add(chanceBase)
	return decimal.Min(chanceCap, decimal.Max(chanceFloor, v))
}

// Narrative is the human-readable analysis line. Every selected segment is
// listed.
func Narrative(p models.Profile, score int) string {
	var b strings.Builder
	b.WriteString("Análise baseada no perfil: ")
	b.WriteString(p.SituacaoEmpresa)
	if p.IsPessoaFisica() {
		b.WriteString(", renda informada: ")
	} else {
		b.WriteString(", faturamento: ")
	}
	b.WriteString(p.FaturamentoRenda)
	fmt.Fprintf(&b, ". Localização: %s. Segmento: %s. Score final: %d/%d pontos (%s%% de aprovabilidade).",
		p.Local, strings.Join(p.Segmento, ", "), score, scoring.MaxTotal, Approvability(score).StringFixed(1))
	return b.String()
}
