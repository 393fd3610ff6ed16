// internal/models/fund.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type FundTipo string

const (
	TipoConstitucional  FundTipo = "constitucional"
	TipoDesenvolvimento FundTipo = "desenvolvimento"
	TipoPrivado         FundTipo = "privado"
	TipoPF              FundTipo = "pf"
)

var FundTipos = []FundTipo{TipoConstitucional, TipoPrivado, TipoDesenvolvimento, TipoPF}

// PisoCatchAll keys the fallback entry in Criterios.PisosSegmento.
const PisoCatchAll = "*"

// Criterios is the admin-editable criteria document of a fund. Which fields
// matter depends on the fund's tipo; empty sets mean "no constraint".
type Criterios struct {
	Regioes          []string                   `json:"regioes,omitempty"`
	SituacaoEmpresa  []string                   `json:"situacao_empresa,omitempty"`
	FaturamentoRenda []string                   `json:"faturamento_renda,omitempty"`
	Segmentos        []string                   `json:"segmentos,omitempty"`
	Razoes           []string                   `json:"razoes,omitempty"`
	Garantias        []string                   `json:"garantias,omitempty" validate:"dive,oneof=Imovel Veiculo Equipamento Recebiveis CartaFianca Estoque NaoSei Nenhuma todos"`
	TipoImovel       []string                   `json:"tipo_imovel,omitempty" validate:"dive,oneof=Residencial Comercial Industrial Rural Terreno todos"`
	ExigeCNPJ        bool                       `json:"exige_cnpj,omitempty"`
	PisoFaturamento  decimal.NullDecimal        `json:"piso_faturamento"`
	PisosSegmento    map[string]decimal.Decimal `json:"pisos_segmento,omitempty"`
	PisosGarantia    map[string]decimal.Decimal `json:"pisos_garantia,omitempty"`
}

// FundSpec is everything about a fund except its identity.
type FundSpec struct {
	Nome      string    `json:"nome" validate:"required,max=100,fundname"`
	Tipo      FundTipo  `json:"tipo" validate:"required,oneof=constitucional privado desenvolvimento pf"`
	Ativo     bool      `json:"ativo"`
	Criterios Criterios `json:"criterios"`
}

type Fund struct {
	ID string `json:"id" validate:"required,fundid"`
	FundSpec
	AtualizadoEm time.Time `json:"atualizado_em,omitempty"`
}

// Clone returns a deep copy so stored records never share slices or maps
// with callers.
func (f Fund) Clone() Fund {
	out := f
	c := &out.Criterios
	c.Regioes = cloneStrings(f.Criterios.Regioes)
	c.SituacaoEmpresa = cloneStrings(f.Criterios.SituacaoEmpresa)
	c.FaturamentoRenda = cloneStrings(f.Criterios.FaturamentoRenda)
	c.Segmentos = cloneStrings(f.Criterios.Segmentos)
	c.Razoes = cloneStrings(f.Criterios.Razoes)
	c.Garantias = cloneStrings(f.Criterios.Garantias)
	c.TipoImovel = cloneStrings(f.Criterios.TipoImovel)
	c.PisosSegmento = cloneFloors(f.Criterios.PisosSegmento)
	c.PisosGarantia = cloneFloors(f.Criterios.PisosGarantia)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneFloors(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	if in == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// CatalogSeed is the on-disk format of configs/fundos_criterios.json.
type CatalogSeed struct {
	Versao            string `json:"versao"`
	UltimaAtualizacao string `json:"ultima_atualizacao,omitempty"`
	Fundos            []Fund `json:"fundos"`
}
