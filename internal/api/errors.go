// internal/api/errors.go
package api

import (
	"errors"
	"net/http"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/models"
	"lead-qualifier/internal/qualifier/profile"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error          string               `json:"error"`
	Message        string               `json:"message"`
	Details        string               `json:"details,omitempty"`
	Fields         []profile.FieldError `json:"fields,omitempty"`
	StatusCode     int                  `json:"status_code,omitempty"`
	IdempotencyKey string               `json:"idempotency_key,omitempty"`
}

func malformedBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorBody{
		Error:   "malformed_body",
		Message: "Corpo da requisição inválido",
	})
}

// deliveryFailed reports an exhausted submission. The sink's status and error
// text are included so the failure can be diagnosed from the response.
func deliveryFailed(c echo.Context, out models.DeliveryOutcome) error {
	return c.JSON(http.StatusBadGateway, errorBody{
		Error:          "Failed to forward to webhook",
		Message:        out.Message,
		Details:        out.Error,
		StatusCode:     out.StatusCode,
		IdempotencyKey: out.IdempotencyKey,
	})
}

// respondError maps domain errors onto status codes. Anything unrecognised is
// logged and answered with a bare 500.
func (h *Handler) respondError(c echo.Context, err error) error {
	var verrs profile.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, errorBody{
			Error:   "validation_failed",
			Message: "Dados inválidos",
			Fields:  verrs,
		})
	}

	stdErr, ok := apperrors.AsStandard(err)
	if ok {
		switch {
		case errors.Is(err, apperrors.ErrInvalidFundSpec), errors.Is(err, apperrors.ErrInvalidSinkURL):
			return c.JSON(http.StatusBadRequest, errorBody{Error: string(stdErr.Code), Message: stdErr.Message, Details: stdErr.Details})
		case errors.Is(err, apperrors.ErrFundNotFound):
			return c.JSON(http.StatusNotFound, errorBody{Error: string(stdErr.Code), Message: stdErr.Message})
		case errors.Is(err, apperrors.ErrFundAlreadyExists):
			return c.JSON(http.StatusConflict, errorBody{Error: string(stdErr.Code), Message: stdErr.Message})
		case errors.Is(err, apperrors.ErrDeliveryExhausted), errors.Is(err, apperrors.ErrNotProvisioned),
			errors.Is(err, apperrors.ErrPayloadTooLarge):
			return c.JSON(http.StatusBadGateway, errorBody{Error: string(stdErr.Code), Message: stdErr.Message, Details: stdErr.Details})
		}
	}

	h.logger.Error("request failed", map[string]interface{}{
		"path":  c.Path(),
		"error": err.Error(),
	})
	return c.JSON(http.StatusInternalServerError, errorBody{
		Error:   "internal_error",
		Message: "Erro interno do servidor",
	})
}
