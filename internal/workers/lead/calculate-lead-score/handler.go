// internal/workers/lead/calculate-lead-score/handler.go
package calculateleadscore

import (
	"context"
	"encoding/json"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/qualifier/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-lead-score"
)

type Handler struct {
	config     *Config
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
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

func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input.Profile.SituacaoEmpresa == "" {
		return nil, apperrors.NewValidationFailedError("profile is required")
	}

	score := scoring.Aggregate(input.Profile)
	out := &Output{
		Steps:      scoring.Breakdown(input.Profile),
		Score:      score,
		Percentage: scoring.Percentage(score),
	}

	h.logger.Debug("score calculated", map[string]interface{}{
		"score": score,
		"steps": len(out.Steps),
	})
	return out, nil
}
