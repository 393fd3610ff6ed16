// internal/qualifier/profile/validator.go
package profile

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/metrics"
	"lead-qualifier/internal/models"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	whatsappPattern = regexp.MustCompile(`^55\d{10,11}$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// textLimits are the maximum lengths (in characters) of free-text answers.
var textLimits = []struct {
	field string
	max   int
	get   func(*models.Submission) *string
}{
	{"nome", 150, func(s *models.Submission) *string { return &s.Nome }},
	{"nome_empresa", 200, func(s *models.Submission) *string { return &s.NomeEmpresa }},
	{"email", 100, func(s *models.Submission) *string { return &s.Email }},
	{"whatsapp", 20, func(s *models.Submission) *string { return &s.Whatsapp }},
	{"instagram", 50, func(s *models.Submission) *string { return &s.Instagram }},
	{"indicacao_detalhes", 200, func(s *models.Submission) *string { return &s.IndicacaoDetalhes }},
	{"outros_detalhes", 200, func(s *models.Submission) *string { return &s.OutrosDetalhes }},
	{"municipio_estado", 100, func(s *models.Submission) *string { return &s.MunicipioEstado }},
	{"segmento_outros", 200, func(s *models.Submission) *string { return &s.SegmentoOutros }},
	{"razao_outros", 200, func(s *models.Submission) *string { return &s.RazaoOutros }},
}

type Validator struct {
	logger logger.Logger
}

func NewValidator(log logger.Logger) *Validator {
	return &Validator{logger: logger.ForComponent(log, "profile-validator")}
}

// Decode checks the raw document's shape and maps it onto a Submission.
func (v *Validator) Decode(raw map[string]interface{}) (models.Submission, error) {
	var sub models.Submission

	res, err := submissionSchema.Validate(raw)
	if err != nil {
		return sub, err
	}
	if !res.Valid {
		errs := make(ValidationErrors, 0, len(res.Errors))
		for _, e := range res.Errors {
			errs = append(errs, FieldError{Field: e.Field, Code: CodeInvalidType, Message: "Tipo de valor inválido"})
		}
		return sub, errs
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return sub, fmt.Errorf("encode submission: %w", err)
	}
	if err := json.Unmarshal(data, &sub); err != nil {
		return sub, fmt.Errorf("decode submission: %w", err)
	}
	return sub, nil
}

// ValidateRaw is Decode followed by Validate.
func (v *Validator) ValidateRaw(raw map[string]interface{}) (models.Profile, error) {
	sub, err := v.Decode(raw)
	if err != nil {
		v.record(err)
		return models.Profile{}, err
	}
	return v.Validate(sub)
}

// Validate sanitizes a submission into a Profile. Off-list enum values are
// dropped before the required checks, so they fail exactly like a missing
// answer. Every violation is reported at once.
func (v *Validator) Validate(sub models.Submission) (models.Profile, error) {
	p, errs := compile(sub)
	if len(errs) > 0 {
		v.logger.Info("submission rejected", map[string]interface{}{
			"fields": errs.Fields(),
		})
		v.record(errs)
		return models.Profile{}, errs
	}
	v.record(nil)
	return p, nil
}

func (v *Validator) record(err error) {
	result := "valid"
	if err != nil {
		result = "invalid"
	}
	metrics.LeadValidations.WithLabelValues(result).Inc()
}

func compile(sub models.Submission) (models.Profile, ValidationErrors) {
	var errs ValidationErrors
	add := func(field, code, msg string) {
		errs = append(errs, FieldError{Field: field, Code: code, Message: msg})
	}

	for _, t := range textLimits {
		val := t.get(&sub)
		*val = strings.TrimSpace(*val)
		if utf8.RuneCountInString(*val) > t.max {
			add(t.field, CodeTooLong, fmt.Sprintf("Texto muito longo (máximo %d caracteres)", t.max))
		}
		if strings.ContainsAny(*val, "<>") {
			add(t.field, CodeForbiddenChars, "Caracteres não permitidos")
		}
	}

	p := models.Profile{
		Nome:              sub.Nome,
		NomeEmpresa:       sub.NomeEmpresa,
		Email:             sub.Email,
		Instagram:         sub.Instagram,
		IndicacaoDetalhes: sub.IndicacaoDetalhes,
		OutrosDetalhes:    sub.OutrosDetalhes,
		MunicipioEstado:   sub.MunicipioEstado,
		SegmentoOutros:    sub.SegmentoOutros,
		RazaoOutros:       sub.RazaoOutros,
		ComoChegou:        pick(models.ComoChegouValues, sub.ComoChegou),
		Local:             pick(models.LocalValues, sub.Local),
		Segmento:          models.SegmentoValues.Filter(sub.Segmento),
		Razao:             models.RazaoValues.Filter(sub.Razao),
		Garantia:          models.GarantiaValues.Filter(sub.Garantia),
	}

	tipos := sub.TiposImovel
	if len(tipos) == 0 && sub.TipoImovel != "" {
		tipos = []string{sub.TipoImovel}
	}
	p.TiposImovel = models.TipoImovelValues.Filter(tipos)

	situacao := pick(models.SituacaoValues, sub.SituacaoEmpresa)
	if situacao == models.SituacaoRecuperacaoJudicial {
		status := pick(models.RecuperacaoValues, sub.RecuperacaoJudicialHomologada)
		if status == "" {
			add("recuperacao_judicial_homologada", CodeMissingRequired,
				"Informe se a recuperação judicial é homologada")
		} else {
			situacao = situacao + "_" + status
		}
	}
	p.SituacaoEmpresa = situacao

	switch {
	case situacao == models.SituacaoImplantacao:
		p.FaturamentoRenda = models.FaturamentoNaoTem
	case situacao == models.SituacaoPessoaFisica:
		p.FaturamentoRenda = pick(models.FaturamentoPFValues, sub.FaturamentoRenda)
	case situacao == "":
		p.FaturamentoRenda = pick(models.FaturamentoValues, sub.FaturamentoRenda)
	default:
		p.FaturamentoRenda = pick(models.FaturamentoCNPJValues, sub.FaturamentoRenda)
	}

	required := []struct {
		field   string
		present bool
	}{
		{"nome", p.Nome != ""},
		{"email", p.Email != ""},
		{"whatsapp", sub.Whatsapp != ""},
		{"como_chegou", p.ComoChegou != ""},
		{"situacao_empresa", p.SituacaoEmpresa != ""},
		{"faturamento_renda", p.FaturamentoRenda != ""},
		{"local", p.Local != ""},
		{"segmento", len(p.Segmento) > 0},
		{"razao", len(p.Razao) > 0},
		{"garantia", len(p.Garantia) > 0},
	}
	for _, r := range required {
		if !r.present {
			add(r.field, CodeMissingRequired, "Campo obrigatório")
		}
	}

	if p.Email != "" && !emailPattern.MatchString(p.Email) {
		add("email", CodeInvalidFormat, "E-mail inválido")
	}
	if sub.Whatsapp != "" {
		phone, ok := NormalizeWhatsapp(sub.Whatsapp)
		if !ok {
			add("whatsapp", CodeInvalidFormat, "WhatsApp deve conter DDD e número (10 ou 11 dígitos)")
		}
		p.Whatsapp = phone
	}

	if models.RequiresCompanyName(p.SituacaoEmpresa) && p.NomeEmpresa == "" {
		add("nome_empresa", CodeMissingRequired, "Informe o nome da empresa")
	}
	switch p.ComoChegou {
	case models.ComoChegouOutros:
		if p.OutrosDetalhes == "" {
			add("outros_detalhes", CodeMissingRequired, "Conte como chegou até nós")
		} else {
			p.ComoChegou = fmt.Sprintf("%s (%s)", models.ComoChegouOutros, p.OutrosDetalhes)
		}
	case models.ComoChegouIndicacao:
		if p.IndicacaoDetalhes == "" {
			add("indicacao_detalhes", CodeMissingRequired, "Informe quem indicou")
		}
	}
	if models.AllowList(p.Segmento).Contains(models.SegmentoOutros) && p.SegmentoOutros == "" {
		add("segmento_outros", CodeMissingRequired, "Descreva o segmento")
	}
	if models.AllowList(p.Razao).Contains(models.RazaoOutros) && p.RazaoOutros == "" {
		add("razao_outros", CodeMissingRequired, "Descreva a razão do projeto")
	}
	if p.Local != "" && p.MunicipioEstado == "" {
		add("municipio_estado", CodeMissingRequired, "Informe município e estado")
	}
	if p.HasGarantia(models.GarantiaImovel) && len(p.TiposImovel) == 0 {
		add("tipos_imovel", CodeMissingRequired, "Selecione o tipo de imóvel")
	}

	if len(errs) > 0 {
		return models.Profile{}, errs
	}

	p.GarantiaDetalhada = expandGarantia(p.Garantia, p.TiposImovel)
	return p, nil
}

// NormalizeWhatsapp keeps digits, cuts to 13, prefixes the country code when
// the number fits a national window and checks the final shape.
func NormalizeWhatsapp(raw string) (string, bool) {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) > 13 {
		digits = digits[:13]
	}
	if !strings.HasPrefix(digits, "55") && len(digits) <= 11 {
		digits = "55" + digits
	}
	return digits, whatsappPattern.MatchString(digits)
}

// expandGarantia replaces the bare property tag with one entry per property
// type, keeping the order the applicant chose.
func expandGarantia(garantia, tipos []string) []string {
	out := make([]string, 0, len(garantia)+len(tipos))
	for _, g := range garantia {
		if g != models.GarantiaImovel {
			out = append(out, g)
			continue
		}
		for _, t := range tipos {
			out = append(out, models.GarantiaImovel+" "+t)
		}
	}
	return out
}

func pick(allowed models.AllowList, value string) string {
	value = strings.TrimSpace(value)
	if allowed.Contains(value) {
		return value
	}
	return ""
}
