// internal/qualifier/eligibility/evaluators.go
package eligibility

import (
	"fmt"
	"slices"
	"strings"

	"lead-qualifier/internal/models"

	"github.com/shopspring/decimal"
)

// Verdict is one fund's outcome. Motivo is the full sentence shown to the
// applicant; Resumo is the short label used in the reachable/unreachable
// summaries.
type Verdict struct {
	Eligible bool
	Motivo   string
	Resumo   string
}

func eligible(motivo string) Verdict {
	return Verdict{Eligible: true, Motivo: motivo, Resumo: motivo}
}

func rejected(motivo, resumo string) Verdict {
	return Verdict{Motivo: motivo, Resumo: resumo}
}

// Evaluator decides one fund category.
type Evaluator interface {
	Evaluate(fund models.Fund, p models.Profile) Verdict
}

type EvaluatorFunc func(fund models.Fund, p models.Profile) Verdict

func (f EvaluatorFunc) Evaluate(fund models.Fund, p models.Profile) Verdict {
	return f(fund, p)
}

var defaultRevenueFloor = decimal.NewFromInt(10)

// Revenue bracket midpoints, in millions.
var revenueMidpoints = map[string]decimal.Decimal{
	"<10":   decimal.NewFromInt(5),
	"10-80": decimal.NewFromInt(45),
	">80":   decimal.NewFromInt(150),
	">300":  decimal.NewFromInt(500),
}

// RevenueMidpoint maps a CNPJ revenue bracket to a number; anything else is 0.
func RevenueMidpoint(bracket string) decimal.Decimal {
	if v, ok := revenueMidpoints[bracket]; ok {
		return v
	}
	return decimal.Zero
}

var garantiaLabels = map[string]string{
	models.GarantiaImovel:      "imóveis",
	models.GarantiaVeiculo:     "veículos",
	models.GarantiaEquipamento: "equipamentos",
	models.GarantiaRecebiveis:  "recebíveis",
	models.GarantiaCartaFianca: "carta fiança",
	models.GarantiaEstoque:     "estoque",
}

// constitucional: the applicant's region must be served by the fund.
func evaluateConstitucional(fund models.Fund, p models.Profile) Verdict {
	if accepts(fund.Criterios.Regioes, p.Local) {
		return eligible("Região compatível com fundo constitucional")
	}
	return rejected(fmt.Sprintf("Fora da região de atuação do %s.", fund.Nome), "Região incompatível")
}

// desenvolvimento: legal entity first, then the required collateral. The
// entity check holds whatever exige_cnpj says; a fund without a garantias
// list wants equipment, and "todos" accepts any.
func evaluateDesenvolvimento(fund models.Fund, p models.Profile) Verdict {
	if !p.HasLegalEntity() {
		return rejected("Exige CNPJ.", "Sem CNPJ")
	}

	required := withoutWildcard(orDefault(fund.Criterios.Garantias, models.GarantiaEquipamento))
	if len(required) == 0 {
		return eligible("CNPJ + garantia")
	}
	for _, g := range required {
		if p.HasGarantia(g) {
			return eligible("CNPJ + garantia " + strings.ToLower(g))
		}
	}
	return rejected(fmt.Sprintf("Exige garantia em %s.", describeGarantias(required)), "Garantia inadequada")
}

// privado: companies only; the revenue floor is checked before collateral.
func evaluatePrivado(fund models.Fund, p models.Profile) Verdict {
	if p.IsPessoaFisica() {
		return rejected("Fundos privados são para empresas.", "Pessoa física")
	}
	if !p.HasLegalEntity() {
		return rejected("Fundos privados exigem CNPJ.", "Sem CNPJ")
	}

	revenue := RevenueMidpoint(p.FaturamentoRenda)
	if revenue.LessThan(revenueFloor(fund.Criterios, p.Segmento)) {
		return rejected("Faturamento abaixo do piso mínimo.", "Faturamento insuficiente")
	}

	for _, g := range p.Garantia {
		if acceptsCollateral(fund.Criterios, g, revenue) {
			return eligible("Faturamento e garantias adequadas")
		}
	}
	return rejected("Garantia não aceita pelo fundo.", "Garantia inadequada")
}

// pf: individuals pledging an accepted kind of property. A fund without a
// garantias list wants real estate, and real estate without a tipo_imovel
// list must be residential. "todos" lifts either constraint.
func evaluatePF(fund models.Fund, p models.Profile) Verdict {
	c := fund.Criterios
	required := withoutWildcard(orDefault(c.Garantias, models.GarantiaImovel))
	tipos := c.TipoImovel
	if slices.Contains(required, models.GarantiaImovel) {
		tipos = orDefault(tipos, models.TipoImovelResidencial)
	}
	tipos = withoutWildcard(tipos)
	wants := describeHomeEquity(required, tipos)

	if !p.IsPessoaFisica() {
		return rejected(fmt.Sprintf("Exige pessoa física com %s como garantia.", wants), "Pessoa jurídica")
	}

	hasGarantia := len(required) == 0
	for _, g := range required {
		if p.HasGarantia(g) {
			hasGarantia = true
			break
		}
	}
	hasTipo := len(tipos) == 0
	if !hasTipo && p.HasGarantia(models.GarantiaImovel) {
		for _, t := range tipos {
			if p.HasTipoImovel(t) {
				hasTipo = true
				break
			}
		}
	}

	if hasGarantia && hasTipo {
		return eligible("PF com " + wants)
	}
	return rejected(fmt.Sprintf("Exige %s como garantia.", wants), "Sem "+wants)
}

// revenueFloor is the fund's base floor raised by the segment floors. An
// applicant in several segments gets the most favourable one.
func revenueFloor(c models.Criterios, segmentos []string) decimal.Decimal {
	base := defaultRevenueFloor
	if c.PisoFaturamento.Valid {
		base = c.PisoFaturamento.Decimal
	}
	if len(c.PisosSegmento) == 0 || len(segmentos) == 0 {
		return base
	}

	var best *decimal.Decimal
	for _, s := range segmentos {
		floor := base
		v, ok := c.PisosSegmento[s]
		if !ok {
			v, ok = c.PisosSegmento[models.PisoCatchAll]
		}
		if ok {
			floor = decimal.Max(base, v)
		}
		if best == nil || floor.LessThan(*best) {
			f := floor
			best = &f
		}
	}
	return *best
}

// acceptsCollateral reports whether one pledged asset counts for the fund at
// the applicant's revenue. An empty list accepts any real collateral.
func acceptsCollateral(c models.Criterios, garantia string, revenue decimal.Decimal) bool {
	if garantia == models.GarantiaNenhuma || garantia == models.GarantiaNaoSei {
		return false
	}
	if !accepts(c.Garantias, garantia) {
		return false
	}
	if floor, ok := c.PisosGarantia[garantia]; ok && revenue.LessThan(floor) {
		return false
	}
	return true
}

// accepts treats an empty set and the "todos" wildcard as no constraint.
func accepts(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == models.RegiaoTodas || a == value {
			return true
		}
	}
	return false
}

func withoutWildcard(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == models.RegiaoTodas {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// orDefault returns values, or fallback when values is empty.
func orDefault(values []string, fallback ...string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

func describeGarantias(garantias []string) string {
	labels := make([]string, 0, len(garantias))
	for _, g := range garantias {
		if l, ok := garantiaLabels[g]; ok {
			labels = append(labels, l)
		} else {
			labels = append(labels, strings.ToLower(g))
		}
	}
	return strings.Join(labels, " ou ")
}

func describeHomeEquity(garantias, tipos []string) string {
	if len(tipos) > 0 {
		lower := make([]string, 0, len(tipos))
		for _, t := range tipos {
			lower = append(lower, strings.ToLower(t))
		}
		return "imóvel " + strings.Join(lower, " ou ")
	}
	if len(garantias) > 0 {
		return describeGarantias(garantias)
	}
	return "garantia"
}
