// internal/webhooklog/recorder.go
package webhooklog

import (
	"context"

	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"
)

// Recorder writes to the primary store and fans out to the mirrors.
type Recorder struct {
	store   Store
	mirrors []Mirror
	logger  logger.Logger
}

func NewRecorder(store Store, log logger.Logger, mirrors ...Mirror) *Recorder {
	return &Recorder{
		store:   store,
		mirrors: mirrors,
		logger:  logger.ForComponent(log, "webhook-log"),
	}
}

// Append stores the attempt. Only a primary store failure is returned.
func (r *Recorder) Append(ctx context.Context, attempt models.DeliveryAttempt) error {
	if err := r.store.Append(ctx, attempt); err != nil {
		return err
	}

	for _, m := range r.mirrors {
		if err := m.Publish(ctx, attempt); err != nil {
			r.logger.Warn("delivery attempt mirror failed", map[string]interface{}{
				"mirror":         m.Name(),
				"idempotencyKey": attempt.IdempotencyKey,
				"attempt":        attempt.Attempt,
				"error":          err.Error(),
			})
		}
	}
	return nil
}

func (r *Recorder) List(ctx context.Context, limit int) ([]models.DeliveryAttempt, error) {
	return r.store.List(ctx, limit)
}
