// internal/models/eligibility.go
package models

import "github.com/shopspring/decimal"

type StepScore struct {
	Step     int    `json:"step"`
	Criterio string `json:"criterio"`
	Score    int    `json:"score"`
	Max      int    `json:"max"`
}

type FundVerdict struct {
	ID     string `json:"id"`
	Nome   string `json:"nome,omitempty"`
	Motivo string `json:"motivo"`
}

type Eligibility struct {
	Recomendados      []FundVerdict `json:"recomendados"`
	PossiveisAtipicos []FundVerdict `json:"possiveis_atipicos"`
	NaoElegiveis      []FundVerdict `json:"nao_elegiveis"`
}

type Pontuacao struct {
	ScoreTotal       int         `json:"score_total"`
	ScorePorcentagem string      `json:"score_porcentagem"`
	Descricao        string      `json:"descricao"`
	Etapas           []StepScore `json:"etapas,omitempty"`
}

type Analise struct {
	Descritiva       string    `json:"descritiva"`
	ChanceEmprestimo string    `json:"chance_emprestimo"`
	Pontuacao        Pontuacao `json:"pontuacao"`
}

type EligibilityResult struct {
	Eligibility          Eligibility     `json:"eligibility"`
	Analise              Analise         `json:"analise"`
	FundosAlcancaveis    []FundVerdict   `json:"fundos_alcancaveis"`
	FundosNaoAlcancaveis []FundVerdict   `json:"fundos_nao_alcancaveis"`
	Score                int             `json:"score"`
	Aprovabilidade       decimal.Decimal `json:"aprovabilidade"`
	Skipped              []string        `json:"skipped,omitempty"`
}

// RecommendedIDs returns the recommended fund ids in evaluation order.
func (r EligibilityResult) RecommendedIDs() []string {
	ids := make([]string, 0, len(r.Eligibility.Recomendados))
	for _, v := range r.Eligibility.Recomendados {
		ids = append(ids, v.ID)
	}
	return ids
}
