// internal/workers/lead/validate-lead-profile/handler.go
package validateleadprofile

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"
	"lead-qualifier/internal/qualifier/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-lead-profile"
)

// Validator turns a raw questionnaire into a Profile.
type Validator interface {
	Validate(raw map[string]interface{}) (models.Profile, error)
}

type Handler struct {
	config     *Config
	validator  Validator
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, v Validator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		validator:  v,
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

// Execute validates the submission. Field violations come back as a
// VALIDATION_FAILED StandardError carrying every field error.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input.Submission == nil {
		return nil, apperrors.NewValidationFailedError("submission is required")
	}

	p, err := h.validator.Validate(input.Submission)
	if err != nil {
		var verrs profile.ValidationErrors
		if errors.As(err, &verrs) {
			h.logger.Info("submission rejected", map[string]interface{}{
				"fields": verrs.Fields(),
			})
			return nil, verrs.StandardError()
		}
		return nil, err
	}

	h.logger.Info("submission validated", map[string]interface{}{
		"situacao": p.SituacaoEmpresa,
		"local":    p.Local,
	})
	return &Output{Profile: p}, nil
}
