// internal/api/server.go
package api

import (
	"context"
	"net/http"

	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/delivery"
	"lead-qualifier/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Qualifier is the service behind every route.
type Qualifier interface {
	Validate(raw map[string]interface{}) (models.Profile, error)
	Score(p models.Profile) ([]models.StepScore, int)
	Evaluate(ctx context.Context, p models.Profile, score int) (models.EligibilityResult, error)
	Submit(ctx context.Context, p models.Profile, meta models.SubmissionMeta) (models.DeliveryOutcome, error)

	ListFunds(ctx context.Context) ([]models.Fund, error)
	GetFund(ctx context.Context, id string) (models.Fund, error)
	CreateFund(ctx context.Context, id string, spec models.FundSpec) (models.Fund, error)
	UpdateFund(ctx context.Context, id string, spec models.FundSpec) (models.Fund, error)
	DeactivateFund(ctx context.Context, id string) (models.Fund, error)

	ListDeliveryAttempts(ctx context.Context, limit int) ([]models.DeliveryAttempt, error)
	SinkURL() string
	UpdateSinkURL(ctx context.Context, raw string) (string, error)
	ProbeSink(ctx context.Context) delivery.ProbeResult
}

// Pinger is a dependency reported by the health route.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	svc     Qualifier
	service string
	deps    map[string]Pinger
	logger  logger.Logger
}

func NewHandler(svc Qualifier, serviceName string, deps map[string]Pinger, log logger.Logger) *Handler {
	return &Handler{
		svc:     svc,
		service: serviceName,
		deps:    deps,
		logger:  logger.ForComponent(log, "http-api"),
	}
}

// NewServer builds the echo instance with middleware and every route.
func NewServer(cfg config.HTTPConfig, h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(h.requestLogger())

	e.GET("/api/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	form := e.Group("/api/form")
	form.GET("/config", h.FormConfig)
	form.POST("/validate", h.ValidateLead)
	form.POST("/evaluate", h.EvaluateLead)
	form.POST("/submit", h.SubmitLead)

	admin := e.Group("/api/admin")
	admin.GET("/fundos", h.ListFunds)
	admin.GET("/fundos/:id", h.GetFund)
	admin.POST("/fundos", h.CreateFund)
	admin.PUT("/fundos/:id", h.UpdateFund)
	admin.DELETE("/fundos/:id", h.DeactivateFund)
	admin.GET("/webhook-logs", h.WebhookLogs)
	admin.POST("/webhook", h.UpdateWebhook)
	admin.POST("/webhook/test", h.TestWebhook)

	return e
}

func (h *Handler) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			h.logger.Debug("request", map[string]interface{}{
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latencyMs": v.Latency.Milliseconds(),
				"requestId": v.RequestID,
			})
			return nil
		},
	})
}
