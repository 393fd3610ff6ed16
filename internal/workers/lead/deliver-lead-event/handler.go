// internal/workers/lead/deliver-lead-event/handler.go
package deliverleadevent

import (
	"context"
	"encoding/json"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "deliver-lead-event"
)

// Deliverer sends an evaluated lead to the configured sink.
type Deliverer interface {
	Deliver(ctx context.Context, p models.Profile, result models.EligibilityResult, meta models.SubmissionMeta) (models.DeliveryOutcome, error)
}

type Handler struct {
	config     *Config
	deliverer  Deliverer
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, deliverer Deliverer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		deliverer:  deliverer,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) string {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.errHandler.HandleJobError(ctx, client, job,
			apperrors.NewValidationFailedError("invalid job variables: "+err.Error()))
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		return h.errHandler.HandleJobError(ctx, client, job, err)
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return ""
}

// Execute delivers the lead. The delivery budget is spent inside the
// pipeline, so a failed outcome is raised as a BPMN error carrying the
// idempotency key and attempt count rather than being retried by the broker.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Profile.Nome == "" || input.Profile.Email == "" {
		return nil, apperrors.NewValidationFailedError("profile is required")
	}

	out, err := h.deliverer.Deliver(ctx, input.Profile, input.Eligibility, input.Meta)
	if err != nil {
		if std, ok := apperrors.AsStandard(err); ok && out.IdempotencyKey != "" {
			return nil, std.WithMetadata("idempotencyKey", out.IdempotencyKey).
				WithMetadata("attempts", out.Attempts)
		}
		return nil, err
	}

	h.logger.Info("lead delivered", map[string]interface{}{
		"idempotencyKey": out.IdempotencyKey,
		"attempts":       out.Attempts,
	})
	return &Output{Outcome: out}, nil
}
