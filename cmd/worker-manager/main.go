// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lead-qualifier/internal/api"
	"lead-qualifier/internal/common/camunda"
	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/observability"

	cls "lead-qualifier/internal/workers/lead/calculate-lead-score"
	dle "lead-qualifier/internal/workers/lead/deliver-lead-event"
	efe "lead-qualifier/internal/workers/lead/evaluate-fund-eligibility"
	vlp "lead-qualifier/internal/workers/lead/validate-lead-profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead qualifier...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	if err != nil {
		zapLog.Warn("observability degraded", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}
	defer deps.Close()

	// --- Zeebe workers ---
	var workers []worker.JobWorker
	if anyWorkerEnabled(cfg) {
		zc, err := camunda.Connect(ctx, cfg.Camunda, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zc.Close()
		deps.pingers["zeebe"] = pingerFunc(zc.HealthCheck)
		zapLog.Info("Zeebe client connected successfully")

		workers = startWorkers(zc, cfg, deps, obs, log)
	}

	// --- HTTP API ---
	handler := api.NewHandler(deps.service, cfg.App.Name, deps.pingers, log)
	server := api.NewServer(cfg.HTTP, handler)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.Start(cfg.HTTP.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping observability", zap.Error(err))
	}

	zapLog.Info("Lead qualifier stopped gracefully")
}

func startWorkers(zc *camunda.Client, cfg *config.Config, deps *dependencies, obs *observability.Observability, log logger.Logger) []worker.JobWorker {
	client := zc.GetClient()
	var started []worker.JobWorker
	start := func(taskType string, h camunda.JobHandler) {
		if jw := camunda.StartWorker(client, taskType, config.GetWorkerConfig(cfg, taskType), h, obs, log); jw != nil {
			started = append(started, jw)
		}
	}

	start(vlp.TaskType, vlp.NewHandler(vlp.NewConfig(cfg.Workers[vlp.TaskType]), deps.service, log))
	start(cls.TaskType, cls.NewHandler(cls.NewConfig(cfg.Workers[cls.TaskType]), log))
	start(efe.TaskType, efe.NewHandler(efe.NewConfig(cfg.Workers[efe.TaskType]), deps.service, log))
	start(dle.TaskType, dle.NewHandler(dle.NewConfig(cfg.Workers[dle.TaskType]), deps.service, log))

	return started
}

func anyWorkerEnabled(cfg *config.Config) bool {
	for _, w := range cfg.Workers {
		if w.Enabled {
			return true
		}
	}
	return false
}
