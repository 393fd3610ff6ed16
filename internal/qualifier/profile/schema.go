// internal/qualifier/profile/schema.go
package profile

import "lead-qualifier/internal/common/validation"

// submissionSchema only pins down value shapes; vocabularies and cross-field
// rules are checked by Validate.
var submissionSchema = validation.MustCompile(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "text": {"type": ["string", "null"]},
    "tags": {"type": ["array", "null"], "items": {"type": "string"}}
  },
  "properties": {
    "nome": {"$ref": "#/definitions/text"},
    "nome_empresa": {"$ref": "#/definitions/text"},
    "email": {"$ref": "#/definitions/text"},
    "whatsapp": {"$ref": "#/definitions/text"},
    "instagram": {"$ref": "#/definitions/text"},
    "como_chegou": {"$ref": "#/definitions/text"},
    "indicacao_detalhes": {"$ref": "#/definitions/text"},
    "outros_detalhes": {"$ref": "#/definitions/text"},
    "situacao_empresa": {"$ref": "#/definitions/text"},
    "recuperacao_judicial_homologada": {"$ref": "#/definitions/text"},
    "faturamento_renda": {"$ref": "#/definitions/text"},
    "local": {"$ref": "#/definitions/text"},
    "municipio_estado": {"$ref": "#/definitions/text"},
    "segmento": {"$ref": "#/definitions/tags"},
    "segmento_outros": {"$ref": "#/definitions/text"},
    "razao": {"$ref": "#/definitions/tags"},
    "razao_outros": {"$ref": "#/definitions/text"},
    "garantia": {"$ref": "#/definitions/tags"},
    "tipos_imovel": {"$ref": "#/definitions/tags"},
    "tipo_imovel": {"$ref": "#/definitions/text"}
  }
}`)
