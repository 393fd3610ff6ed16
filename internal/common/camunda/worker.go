// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/metrics"
	"lead-qualifier/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// JobHandler processes one job and reports the BPMN error code it raised,
// or "" when the job completed.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) string
}

// StartWorker opens a job worker for taskType when it is enabled. The returned
// worker is nil for disabled task types.
func StartWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	obs *observability.Observability,
	log logger.Logger,
) worker.JobWorker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	if !wcfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, handler, obs)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jw
}

// Instrument wraps a handler with the worker job metrics and one span per job.
func Instrument(taskType string, handler JobHandler, obs *observability.Observability) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		if obs == nil {
			obs = observability.NewNoop()
		}
		ctx, span := obs.StartSpan(context.Background(), "job "+taskType,
			attribute.String("zeebe.task_type", taskType),
			attribute.Int64("zeebe.job_key", job.GetKey()),
			attribute.Int64("zeebe.process_instance_key", job.GetProcessInstanceKey()),
		)
		defer span.End()

		start := time.Now()
		code := handler.Handle(client, job)
		elapsed := time.Since(start)

		status := "completed"
		if code != "" {
			status = "failed"
			span.SetStatus(codes.Error, code)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		obs.RecordJobProcessed(ctx, taskType, status)
		obs.RecordJobDuration(ctx, taskType, elapsed, status)
	}
}
