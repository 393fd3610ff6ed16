// internal/api/handlers.go
package api

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"lead-qualifier/internal/models"
	"lead-qualifier/internal/webhooklog"

	"github.com/labstack/echo/v4"
)

type evaluateRequest struct {
	Lead  map[string]interface{} `json:"lead"`
	Score *int                   `json:"score,omitempty"`
}

type submitRequest struct {
	Lead map[string]interface{} `json:"lead"`
	Meta models.SubmissionMeta  `json:"meta"`
}

type createFundRequest struct {
	ID string `json:"id"`
	models.FundSpec
}

// newFundSpec is the bind target for admin writes: a fund is active unless
// the body says otherwise.
func newFundSpec() models.FundSpec {
	return models.FundSpec{Ativo: true}
}

type webhookUpdateRequest struct {
	WebhookURL string `json:"webhook_url"`
}

func (h *Handler) Health(c echo.Context) error {
	status := "healthy"
	checks := echo.Map{}

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := h.deps[name].Ping(c.Request().Context()); err != nil {
			status = "degraded"
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	resp := echo.Map{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   h.service,
	}
	if len(checks) > 0 {
		resp["checks"] = checks
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) FormConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"fields": echo.Map{
			"como_chegou":                     models.ComoChegouValues,
			"situacao_empresa":                models.SituacaoValues,
			"recuperacao_judicial_homologada": models.RecuperacaoValues,
			"faturamento_cnpj":                models.FaturamentoCNPJValues,
			"faturamento_pf":                  models.FaturamentoPFValues,
			"local":                           models.LocalValues,
			"segmento":                        models.SegmentoValues,
			"razao":                           models.RazaoValues,
			"garantia":                        models.GarantiaValues,
			"tipo_imovel":                     models.TipoImovelValues,
		},
		"webhook_url": h.svc.SinkURL(),
	})
}

func (h *Handler) ValidateLead(c echo.Context) error {
	var raw map[string]interface{}
	if err := c.Bind(&raw); err != nil {
		return malformedBody(c)
	}

	p, err := h.svc.Validate(raw)
	if err != nil {
		return h.respondError(c, err)
	}
	steps, score := h.svc.Score(p)
	return c.JSON(http.StatusOK, echo.Map{
		"valid":   true,
		"lead":    p,
		"score":   score,
		"etapas":  steps,
		"message": "Dados validados com sucesso",
	})
}

func (h *Handler) EvaluateLead(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil || req.Lead == nil {
		return malformedBody(c)
	}

	p, err := h.svc.Validate(req.Lead)
	if err != nil {
		return h.respondError(c, err)
	}
	_, score := h.svc.Score(p)
	if req.Score != nil {
		score = *req.Score
	}

	result, err := h.svc.Evaluate(c.Request().Context(), p, score)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) SubmitLead(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil || req.Lead == nil {
		return malformedBody(c)
	}
	if req.Meta.UserAgent == "" {
		req.Meta.UserAgent = c.Request().UserAgent()
	}

	p, err := h.svc.Validate(req.Lead)
	if err != nil {
		return h.respondError(c, err)
	}

	out, err := h.svc.Submit(c.Request().Context(), p, req.Meta)
	if err != nil {
		if out.IdempotencyKey != "" {
			return deliveryFailed(c, out)
		}
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) ListFunds(c echo.Context) error {
	funds, err := h.svc.ListFunds(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "fundos": funds})
}

func (h *Handler) GetFund(c echo.Context) error {
	fund, err := h.svc.GetFund(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "fundo": fund})
}

func (h *Handler) CreateFund(c echo.Context) error {
	req := createFundRequest{FundSpec: newFundSpec()}
	if err := c.Bind(&req); err != nil {
		return malformedBody(c)
	}

	fund, err := h.svc.CreateFund(c.Request().Context(), req.ID, req.FundSpec)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Fundo criado com sucesso",
		"fundo":   fund,
	})
}

func (h *Handler) UpdateFund(c echo.Context) error {
	spec := newFundSpec()
	if err := c.Bind(&spec); err != nil {
		return malformedBody(c)
	}

	fund, err := h.svc.UpdateFund(c.Request().Context(), c.Param("id"), spec)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Fundo atualizado com sucesso",
		"fundo":   fund,
	})
}

func (h *Handler) DeactivateFund(c echo.Context) error {
	fund, err := h.svc.DeactivateFund(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Fundo desativado com sucesso",
		"fundo":   fund,
	})
}

func (h *Handler) WebhookLogs(c echo.Context) error {
	limit := webhooklog.DefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_parameter", Message: "limit deve ser um inteiro positivo"})
		}
		limit = n
	}

	logs, err := h.svc.ListDeliveryAttempts(c.Request().Context(), limit)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "logs": logs})
}

func (h *Handler) UpdateWebhook(c echo.Context) error {
	var req webhookUpdateRequest
	if err := c.Bind(&req); err != nil {
		return malformedBody(c)
	}

	u, err := h.svc.UpdateSinkURL(c.Request().Context(), req.WebhookURL)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"message":         "Webhook URL atualizada com sucesso",
		"new_webhook_url": u,
	})
}

func (h *Handler) TestWebhook(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ProbeSink(c.Request().Context()))
}
