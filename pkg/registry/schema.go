// pkg/registry/schema.go
package registry

import "lead-qualifier/internal/common/validation"

// seedSchema checks the document shape only; field semantics (allowed tipos,
// id and name patterns) are enforced by the catalog on import.
var seedSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["versao", "fundos"],
  "properties": {
    "versao": {"type": "string", "minLength": 1},
    "ultima_atualizacao": {"type": "string"},
    "fundos": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "nome", "tipo", "ativo"],
        "properties": {
          "id": {"type": "string", "minLength": 1, "maxLength": 30},
          "nome": {"type": "string", "minLength": 1, "maxLength": 100},
          "tipo": {"type": "string"},
          "ativo": {"type": "boolean"},
          "criterios": {
            "type": "object",
            "properties": {
              "regioes": {"type": "array", "items": {"type": "string"}},
              "situacao_empresa": {"type": "array", "items": {"type": "string"}},
              "faturamento_renda": {"type": "array", "items": {"type": "string"}},
              "segmentos": {"type": "array", "items": {"type": "string"}},
              "razoes": {"type": "array", "items": {"type": "string"}},
              "garantias": {"type": "array", "items": {"type": "string"}},
              "tipo_imovel": {"type": "array", "items": {"type": "string"}},
              "exige_cnpj": {"type": "boolean"},
              "piso_faturamento": {"type": ["string", "number", "null"]},
              "pisos_segmento": {"type": "object"},
              "pisos_garantia": {"type": "object"}
            }
          }
        }
      }
    }
  }
}`)
