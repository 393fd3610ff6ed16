// internal/qualifier/scoring/scoring.go
package scoring

import (
	"lead-qualifier/internal/models"

	"github.com/shopspring/decimal"
)

const (
	Steps    = 8
	StepMax  = 100
	MaxTotal = Steps * StepMax
)

// Descricao explains the aggregate to the applicant.
const Descricao = "Score calculado com base em 8 critérios: situação empresarial, dados pessoais, " +
	"canal de aquisição, faturamento/renda, localização, segmento, razão do projeto e garantias oferecidas."

var criterios = [Steps]string{
	"Situação empresarial",
	"Dados pessoais",
	"Canal de aquisição",
	"Faturamento/renda",
	"Localização",
	"Segmento",
	"Razão do projeto",
	"Garantias oferecidas",
}

var (
	situacaoScores = map[string]int{
		models.SituacaoCNPJAntigo:   100,
		models.SituacaoCNPJNovo:     80,
		models.SituacaoImplantacao:  60,
		models.SituacaoPessoaFisica: 40,
	}

	// Company revenue and personal income brackets share one table.
	faturamentoScores = map[string]int{
		">300":                   100,
		">80":                    90,
		"10-80":                  70,
		"<10":                    50,
		models.FaturamentoNaoTem: 30,
		"acima_50k":              100,
		"15k_50k":                90,
		"5k_15k":                 70,
		"ate_5k":                 50,
	}

	localScores = map[string]int{
		"Nordeste":     90,
		"Norte":        90,
		"Centro-Oeste": 90,
		"Sudeste":      100,
		"Sul":          100,
	}

	segmentoScores = map[string]int{
		"Agro":                 90,
		"Industria_Atacado":    90,
		"Construtora":          90,
		"Tecnologia":           85,
		"Servicos_Financeiros": 85,
	}

	garantiaWeights = map[string]int{
		models.GarantiaImovel:      40,
		models.GarantiaRecebiveis:  35,
		models.GarantiaVeiculo:     30,
		models.GarantiaEquipamento: 25,
		models.GarantiaCartaFianca: 20,
	}
)

const (
	segmentoDefault = 70
	razaoWeight     = 30
)

// Step scores a single questionnaire step (1-8). Unknown steps and values
// outside the allow-lists score 0.
func Step(step int, p models.Profile) int {
	switch step {
	case 1:
		return situacaoScores[p.SituacaoEmpresa]
	case 2:
		if p.Nome != "" && p.Email != "" && p.Whatsapp != "" {
			return StepMax
		}
		return 0
	case 3:
		if p.ComoChegou != "" {
			return StepMax
		}
		return 0
	case 4:
		return faturamentoScores[p.FaturamentoRenda]
	case 5:
		return localScores[p.Local]
	case 6:
		best := 0
		for _, s := range p.Segmento {
			if !models.SegmentoValues.Contains(s) {
				continue
			}
			score, ok := segmentoScores[s]
			if !ok {
				score = segmentoDefault
			}
			if score > best {
				best = score
			}
		}
		return best
	case 7:
		return capped(razaoWeight * len(models.RazaoValues.Filter(p.Razao)))
	case 8:
		total := 0
		for _, g := range models.GarantiaValues.Filter(p.Garantia) {
			total += garantiaWeights[g]
		}
		return capped(total)
	}
	return 0
}

// Skipped reports whether the applicant never sees the step, so it does not
// count toward the running total.
func Skipped(step int, p models.Profile) bool {
	return step == 4 && p.SituacaoEmpresa == models.SituacaoImplantacao
}

// Breakdown returns every step's score, including skipped ones.
func Breakdown(p models.Profile) []models.StepScore {
	out := make([]models.StepScore, 0, Steps)
	for step := 1; step <= Steps; step++ {
		out = append(out, models.StepScore{
			Step:     step,
			Criterio: criterios[step-1],
			Score:    Step(step, p),
			Max:      StepMax,
		})
	}
	return out
}

// Aggregate is the running total threaded into eligibility evaluation.
func Aggregate(p models.Profile) int {
	total := 0
	for step := 1; step <= Steps; step++ {
		if Skipped(step, p) {
			continue
		}
		total += Step(step, p)
	}
	return total
}

// Percentage renders score as a share of MaxTotal with one decimal.
func Percentage(score int) string {
	return decimal.NewFromInt(int64(score)).
		Div(decimal.NewFromInt(MaxTotal)).
		Mul(decimal.NewFromInt(100)).
		StringFixed(1)
}

func capped(v int) int {
	if v > StepMax {
		return StepMax
	}
	return v
}
