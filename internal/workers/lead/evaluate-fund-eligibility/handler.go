// internal/workers/lead/evaluate-fund-eligibility/handler.go
package evaluatefundeligibility

import (
	"context"
	"encoding/json"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"
	"lead-qualifier/internal/qualifier/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "evaluate-fund-eligibility"
)

// Evaluator matches a profile against the active fund catalog.
type Evaluator interface {
	Evaluate(ctx context.Context, p models.Profile, score int) (models.EligibilityResult, error)
}

type Handler struct {
	config     *Config
	evaluator  Evaluator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, evaluator Evaluator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		evaluator:  evaluator,
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

// Execute evaluates the profile. A missing score is recomputed from the
// profile so the task can run without the scoring step.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Profile.SituacaoEmpresa == "" {
		return nil, apperrors.NewValidationFailedError("profile is required")
	}

	score := scoring.Aggregate(input.Profile)
	if input.Score != nil {
		score = *input.Score
	}

	result, err := h.evaluator.Evaluate(ctx, input.Profile, score)
	if err != nil {
		return nil, err
	}

	if len(result.Skipped) > 0 {
		h.logger.Warn("funds skipped during evaluation", map[string]interface{}{
			"skipped": result.Skipped,
		})
	}

	recommended := result.RecommendedIDs()
	h.logger.Info("eligibility evaluated", map[string]interface{}{
		"score":       score,
		"recommended": recommended,
	})
	return &Output{
		Eligibility: result,
		Recommended: recommended,
		HasMatch:    len(recommended) > 0,
	}, nil
}
