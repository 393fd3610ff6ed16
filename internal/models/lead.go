// internal/models/lead.go
package models

import "strings"

const (
	SituacaoCNPJAntigo          = "cnpj_antigo"
	SituacaoCNPJNovo            = "cnpj_novo"
	SituacaoImplantacao         = "implantacao"
	SituacaoPessoaFisica        = "pessoa_fisica"
	SituacaoRecuperacaoJudicial = "recuperacao_judicial"
	SituacaoRJHomologada        = "recuperacao_judicial_homologada"
	SituacaoRJNaoHomologada     = "recuperacao_judicial_nao_homologada"
	RecuperacaoHomologada       = "homologada"
	RecuperacaoNaoHomologada    = "nao_homologada"
	ComoChegouOutros            = "outros"
	ComoChegouIndicacao         = "indicacao"
	FaturamentoNaoTem           = "nao_tem"
	GarantiaImovel              = "Imovel"
	GarantiaEquipamento         = "Equipamento"
	GarantiaVeiculo             = "Veiculo"
	GarantiaRecebiveis          = "Recebiveis"
	GarantiaCartaFianca         = "CartaFianca"
	GarantiaEstoque             = "Estoque"
	GarantiaNenhuma             = "Nenhuma"
	GarantiaNaoSei              = "NaoSei"
	TipoImovelResidencial       = "Residencial"
	SegmentoOutros              = "Outros"
	RazaoOutros                 = "Outros"
	RegiaoTodas                 = "todos"
)

// AllowList is a closed vocabulary for an enumerated answer.
type AllowList []string

func (a AllowList) Contains(v string) bool {
	for _, item := range a {
		if item == v {
			return true
		}
	}
	return false
}

// Filter keeps allowed values in first-seen order and drops duplicates.
func (a AllowList) Filter(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if !a.Contains(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var (
	ComoChegouValues = AllowList{
		"instagram", "google", "linkedin", "facebook", "youtube", "whatsapp", "site", ComoChegouIndicacao, "eventos", ComoChegouOutros,
	}

	SituacaoValues = AllowList{
		SituacaoCNPJAntigo, SituacaoCNPJNovo, SituacaoImplantacao, SituacaoPessoaFisica,
		SituacaoRecuperacaoJudicial, SituacaoRJHomologada, SituacaoRJNaoHomologada,
	}

	RecuperacaoValues = AllowList{RecuperacaoHomologada, RecuperacaoNaoHomologada}

	FaturamentoCNPJValues = AllowList{"<10", "10-80", ">80", ">300", FaturamentoNaoTem}
	FaturamentoPFValues   = AllowList{"ate_5k", "5k_15k", "15k_50k", "acima_50k", FaturamentoNaoTem}
	FaturamentoValues     = AllowList{"<10", "10-80", ">80", ">300", "ate_5k", "5k_15k", "15k_50k", "acima_50k", FaturamentoNaoTem}

	LocalValues = AllowList{"Nordeste", "Norte", "Centro-Oeste", "Sudeste", "Sul"}

	SegmentoValues = AllowList{
		"Agro", "Industria_Atacado", "Construtora", "Tecnologia", "Servicos_Financeiros",
		"Saude", "Educacao", "Servico_Publico", "Varejo", SegmentoOutros,
	}

	RazaoValues = AllowList{
		"Implantacao", "Ampliacao", "Giro", "Financiamento_Ativo",
		"Modernizacao_Tecnologia", "Aquisicao", "Safra_Agro", RazaoOutros,
	}

	GarantiaValues = AllowList{
		GarantiaImovel, GarantiaVeiculo, GarantiaEquipamento, GarantiaRecebiveis,
		GarantiaCartaFianca, GarantiaEstoque, GarantiaNaoSei, GarantiaNenhuma,
	}

	TipoImovelValues = AllowList{"Residencial", "Comercial", "Industrial", "Rural", "Terreno"}
)

// Submission is the raw questionnaire payload as posted by the form.
type Submission struct {
	Nome                          string   `json:"nome"`
	NomeEmpresa                   string   `json:"nome_empresa,omitempty"`
	Email                         string   `json:"email"`
	Whatsapp                      string   `json:"whatsapp"`
	Instagram                     string   `json:"instagram,omitempty"`
	ComoChegou                    string   `json:"como_chegou"`
	IndicacaoDetalhes             string   `json:"indicacao_detalhes,omitempty"`
	OutrosDetalhes                string   `json:"outros_detalhes,omitempty"`
	SituacaoEmpresa               string   `json:"situacao_empresa"`
	RecuperacaoJudicialHomologada string   `json:"recuperacao_judicial_homologada,omitempty"`
	FaturamentoRenda              string   `json:"faturamento_renda"`
	Local                         string   `json:"local"`
	MunicipioEstado               string   `json:"municipio_estado,omitempty"`
	Segmento                      []string `json:"segmento"`
	SegmentoOutros                string   `json:"segmento_outros,omitempty"`
	Razao                         []string `json:"razao"`
	RazaoOutros                   string   `json:"razao_outros,omitempty"`
	Garantia                      []string `json:"garantia"`
	TiposImovel                   []string `json:"tipos_imovel,omitempty"`
	TipoImovel                    string   `json:"tipo_imovel,omitempty"`
}

// Profile is a validated, normalized applicant profile. Values are never
// mutated after validation; callers copy before changing anything.
type Profile struct {
	Nome              string   `json:"nome"`
	NomeEmpresa       string   `json:"nome_empresa,omitempty"`
	Email             string   `json:"email"`
	Whatsapp          string   `json:"whatsapp"`
	Instagram         string   `json:"instagram,omitempty"`
	ComoChegou        string   `json:"como_chegou"`
	IndicacaoDetalhes string   `json:"indicacao_detalhes,omitempty"`
	OutrosDetalhes    string   `json:"outros_detalhes,omitempty"`
	SituacaoEmpresa   string   `json:"situacao_empresa"`
	FaturamentoRenda  string   `json:"faturamento_renda"`
	Local             string   `json:"local"`
	MunicipioEstado   string   `json:"municipio_estado,omitempty"`
	Segmento          []string `json:"segmento"`
	SegmentoOutros    string   `json:"segmento_outros,omitempty"`
	Razao             []string `json:"razao"`
	RazaoOutros       string   `json:"razao_outros,omitempty"`
	Garantia          []string `json:"garantia"`
	TiposImovel       []string `json:"tipos_imovel,omitempty"`
	GarantiaDetalhada []string `json:"garantia_detalhada,omitempty"`
}

func (p Profile) IsPessoaFisica() bool {
	return p.SituacaoEmpresa == SituacaoPessoaFisica
}

// HasLegalEntity reports whether the applicant operates through a company
// that lenders accept as a borrower. Companies under judicial recovery do not.
func (p Profile) HasLegalEntity() bool {
	switch p.SituacaoEmpresa {
	case SituacaoCNPJAntigo, SituacaoCNPJNovo, SituacaoImplantacao:
		return true
	}
	return false
}

func (p Profile) HasGarantia(g string) bool {
	return AllowList(p.Garantia).Contains(g)
}

func (p Profile) HasTipoImovel(t string) bool {
	return AllowList(p.TiposImovel).Contains(t)
}

// Payload is the profile as forwarded to the sink: collateral is expanded
// into its detailed form and the property sub-types are carried alongside.
func (p Profile) Payload() LeadPayload {
	garantia := p.GarantiaDetalhada
	if len(garantia) == 0 {
		garantia = p.Garantia
	}
	return LeadPayload{
		Profile:              p,
		Garantia:             append([]string(nil), garantia...),
		TiposImovelDetalhado: append([]string(nil), p.TiposImovel...),
	}
}

type LeadPayload struct {
	Profile
	Garantia             []string `json:"garantia"`
	TiposImovelDetalhado []string `json:"tipos_imovel_detalhado"`
}

// RequiresCompanyName reports whether a situacao value describes a company.
func RequiresCompanyName(situacao string) bool {
	switch situacao {
	case SituacaoCNPJAntigo, SituacaoCNPJNovo, SituacaoImplantacao,
		SituacaoRecuperacaoJudicial, SituacaoRJHomologada, SituacaoRJNaoHomologada:
		return true
	}
	return false
}
