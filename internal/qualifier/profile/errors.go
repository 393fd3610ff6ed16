// internal/qualifier/profile/errors.go
package profile

import (
	"strings"

	apperrors "lead-qualifier/internal/common/errors"
)

// Field error codes.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodeInvalidType     = "INVALID_TYPE"
	CodeTooLong         = "TOO_LONG"
	CodeForbiddenChars  = "FORBIDDEN_CHARACTERS"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors collects every violation found in one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() error {
	return apperrors.ErrValidationFailed
}

// Has reports whether field failed with code.
func (v ValidationErrors) Has(field, code string) bool {
	for _, e := range v {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

func (v ValidationErrors) Fields() []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		out = append(out, e.Field)
	}
	return out
}

// StandardError converts the collection for the worker error handler.
func (v ValidationErrors) StandardError() *apperrors.StandardError {
	return apperrors.NewValidationFailedError(v.Error()).WithMetadata("fieldErrors", []FieldError(v))
}
