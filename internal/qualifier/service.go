// internal/qualifier/service.go
package qualifier

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"lead-qualifier/internal/catalog"
	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/delivery"
	"lead-qualifier/internal/models"
	"lead-qualifier/internal/qualifier/eligibility"
	"lead-qualifier/internal/qualifier/profile"
	"lead-qualifier/internal/qualifier/scoring"

	"github.com/go-playground/validator/v10"
)

// AttemptLog is the read side of the webhook log.
type AttemptLog interface {
	List(ctx context.Context, limit int) ([]models.DeliveryAttempt, error)
}

// Service is the single entry point used by the HTTP API, the workers and
// the CLI.
type Service struct {
	validator *profile.Validator
	catalog   *catalog.Catalog
	engine    *eligibility.Engine
	pipeline  *delivery.Pipeline
	target    *delivery.Target
	attempts  AttemptLog
	meta      *validator.Validate
	logger    logger.Logger
}

func NewService(
	v *profile.Validator,
	c *catalog.Catalog,
	engine *eligibility.Engine,
	pipeline *delivery.Pipeline,
	target *delivery.Target,
	attempts AttemptLog,
	log logger.Logger,
) *Service {
	return &Service{
		validator: v,
		catalog:   c,
		engine:    engine,
		pipeline:  pipeline,
		target:    target,
		attempts:  attempts,
		meta:      newMetaValidator(),
		logger:    logger.ForComponent(log, "qualifier"),
	}
}

func newMetaValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate turns a raw submission into a Profile.
func (s *Service) Validate(raw map[string]interface{}) (models.Profile, error) {
	return s.validator.ValidateRaw(raw)
}

// Score returns the per-step breakdown and the running total.
func (s *Service) Score(p models.Profile) ([]models.StepScore, int) {
	return scoring.Breakdown(p), scoring.Aggregate(p)
}

// Evaluate matches a profile against the active catalog. It has no side
// effects beyond metrics.
func (s *Service) Evaluate(ctx context.Context, p models.Profile, score int) (models.EligibilityResult, error) {
	funds, err := s.catalog.ListActive(ctx)
	if err != nil {
		return models.EligibilityResult{}, err
	}
	return s.engine.Evaluate(p, score, funds), nil
}

// ValidateMeta checks request metadata attached to a submission.
func (s *Service) ValidateMeta(meta models.SubmissionMeta) error {
	err := s.meta.Struct(meta)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(profile.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, profile.FieldError{
			Field:   "meta." + fe.Field(),
			Code:    profile.CodeInvalidFormat,
			Message: "Valor inválido",
		})
	}
	return out
}

// Submit scores and evaluates a validated profile, then delivers it. The
// outcome is returned on failure too so callers can show its message.
func (s *Service) Submit(ctx context.Context, p models.Profile, meta models.SubmissionMeta) (models.DeliveryOutcome, error) {
	if err := s.ValidateMeta(meta); err != nil {
		return models.DeliveryOutcome{}, err
	}

	score := scoring.Aggregate(p)
	result, err := s.Evaluate(ctx, p, score)
	if err != nil {
		return models.DeliveryOutcome{}, err
	}
	return s.pipeline.Submit(ctx, p, result, meta)
}

// Deliver sends an already evaluated profile.
func (s *Service) Deliver(ctx context.Context, p models.Profile, result models.EligibilityResult, meta models.SubmissionMeta) (models.DeliveryOutcome, error) {
	if err := s.ValidateMeta(meta); err != nil {
		return models.DeliveryOutcome{}, err
	}
	return s.pipeline.Submit(ctx, p, result, meta)
}

func (s *Service) ListFunds(ctx context.Context) ([]models.Fund, error) {
	return s.catalog.List(ctx)
}

func (s *Service) GetFund(ctx context.Context, id string) (models.Fund, error) {
	return s.catalog.Get(ctx, id)
}

func (s *Service) CreateFund(ctx context.Context, id string, spec models.FundSpec) (models.Fund, error) {
	return s.catalog.Create(ctx, id, spec)
}

func (s *Service) UpdateFund(ctx context.Context, id string, spec models.FundSpec) (models.Fund, error) {
	return s.catalog.Update(ctx, id, spec)
}

// UpsertFund replaces the whole record, creating it when absent.
func (s *Service) UpsertFund(ctx context.Context, id string, spec models.FundSpec) (models.Fund, bool, error) {
	return s.catalog.Upsert(ctx, id, spec)
}

func (s *Service) DeactivateFund(ctx context.Context, id string) (models.Fund, error) {
	return s.catalog.Deactivate(ctx, id)
}

// ListDeliveryAttempts returns the webhook log, newest first.
func (s *Service) ListDeliveryAttempts(ctx context.Context, limit int) ([]models.DeliveryAttempt, error) {
	return s.attempts.List(ctx, limit)
}

func (s *Service) SinkURL() string {
	return s.target.URL()
}

func (s *Service) UpdateSinkURL(ctx context.Context, raw string) (string, error) {
	return s.target.Update(ctx, raw)
}

func (s *Service) ProbeSink(ctx context.Context) delivery.ProbeResult {
	return s.pipeline.Probe(ctx)
}

// IsValidation reports whether err should be shown to the applicant as a
// field-level problem.
func IsValidation(err error) bool {
	return errors.Is(err, apperrors.ErrValidationFailed)
}
