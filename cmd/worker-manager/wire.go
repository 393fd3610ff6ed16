// cmd/worker-manager/wire.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"lead-qualifier/internal/api"
	"lead-qualifier/internal/catalog"
	"lead-qualifier/internal/common/aws"
	"lead-qualifier/internal/common/camunda"
	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/database"
	httpclient "lead-qualifier/internal/common/http"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/observability"
	"lead-qualifier/internal/delivery"
	"lead-qualifier/internal/qualifier"
	"lead-qualifier/internal/qualifier/eligibility"
	"lead-qualifier/internal/qualifier/profile"
	"lead-qualifier/internal/webhooklog"
	"lead-qualifier/pkg/registry"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type dependencies struct {
	service *qualifier.Service
	pingers map[string]api.Pinger
	closers []func() error
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// wire opens the backends the configuration selects and assembles the
// qualifier service on top of them.
func wire(ctx context.Context, cfg *config.Config, obs *observability.Observability, log logger.Logger) (*dependencies, error) {
	deps := &dependencies{pingers: make(map[string]api.Pinger)}
	retry := camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	if cfg.Catalog.Backend == config.BackendPostgres || cfg.WebhookLog.Backend == config.BackendPostgres {
		err := camunda.Retry(ctx, retry, log, "postgres connect", func(ctx context.Context) error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			return pg.Ping(ctx)
		})
		if err != nil {
			return deps, fmt.Errorf("postgres: %w", err)
		}
		deps.closers = append(deps.closers, pg.Close)
		deps.pingers["postgres"] = pg
	}

	// --- Init Redis ---
	var rc *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		var err error
		if rc, err = database.NewRedis(ctx, cfg.Database.Redis); err != nil {
			if cfg.Catalog.Backend == config.BackendRedis {
				return deps, fmt.Errorf("redis: %w", err)
			}
			log.Warn("redis unavailable, sink url kept in memory", map[string]interface{}{"error": err.Error()})
			rc = nil
		} else {
			deps.closers = append(deps.closers, rc.Close)
			deps.pingers["redis"] = rc
		}
	}

	// --- Fund catalog ---
	var store catalog.Store
	switch cfg.Catalog.Backend {
	case config.BackendPostgres:
		ps := catalog.NewPostgresStore(pg.GetDB())
		if err := ps.EnsureSchema(ctx); err != nil {
			return deps, err
		}
		store = ps
	case config.BackendRedis:
		store = catalog.NewRedisStore(rc.GetClient(), cfg.Catalog.KeyPrefix)
	default:
		store = catalog.NewMemoryStore()
	}
	funds := catalog.New(store, log)
	if err := seedCatalog(ctx, funds, store, cfg.Catalog.SeedPath, log); err != nil {
		return deps, err
	}

	// --- Webhook log ---
	var attempts webhooklog.Store
	if cfg.WebhookLog.Backend == config.BackendPostgres {
		ws := webhooklog.NewPostgresStore(pg.GetDB())
		if err := ws.EnsureSchema(ctx); err != nil {
			return deps, err
		}
		attempts = ws
	} else {
		attempts = webhooklog.NewMemoryRing(cfg.WebhookLog.Capacity)
	}

	var mirrors []webhooklog.Mirror
	if cfg.WebhookLog.ElasticsearchIndex != "" {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return deps, err
		}
		if err := es.EnsureIndex(ctx, cfg.WebhookLog.ElasticsearchIndex, webhooklog.IndexMapping); err != nil {
			log.Warn("webhook log index not ensured", map[string]interface{}{"error": err.Error()})
		}
		deps.pingers["elasticsearch"] = es
		mirrors = append(mirrors, webhooklog.NewElasticsearchMirror(es.Client, cfg.WebhookLog.ElasticsearchIndex))
	}
	if cfg.WebhookLog.KafkaTopic != "" {
		stream := webhooklog.NewKafkaStream(cfg.Kafka.Brokers, cfg.WebhookLog.KafkaTopic, config.GetDuration(cfg.Kafka.BatchTimeout))
		deps.closers = append(deps.closers, stream.Close)
		mirrors = append(mirrors, stream)
	}

	// --- Delivery ---
	var targetStore delivery.TargetStore = &delivery.MemoryTargetStore{}
	if rc != nil {
		targetStore = delivery.NewRedisTargetStore(rc.GetClient(), cfg.Catalog.KeyPrefix)
	}
	target := delivery.NewTarget(targetStore, cfg.Delivery.SinkURL, cfg.Delivery.AllowedDomains, log)
	if err := target.Init(ctx); err != nil {
		log.Warn("stored sink url unavailable, using configured one", map[string]interface{}{"error": err.Error()})
	}

	var alerter delivery.Alerter
	if cfg.Alerts.Enabled() {
		a, err := aws.NewAlerterFromConfig(ctx, cfg.Alerts, log)
		if err != nil {
			return deps, err
		}
		alerter = a
	}

	opts := delivery.OptionsFromConfig(cfg.Delivery)
	pipeline := delivery.NewPipeline(opts, target, httpclient.NewClient(opts.AttemptTimeout),
		webhooklog.NewRecorder(attempts, log, mirrors...), alerter, obs.Tracer(), log)

	deps.service = qualifier.NewService(
		profile.NewValidator(log),
		funds,
		eligibility.NewEngine(log),
		pipeline,
		target,
		attempts,
		log,
	)
	return deps, nil
}

// seedCatalog inserts the seed file's funds, or the built-in catalog when the
// file is absent. Existing records are left alone.
func seedCatalog(ctx context.Context, c *catalog.Catalog, store catalog.Store, path string, log logger.Logger) error {
	funds := catalog.DefaultFunds()
	source := "built-in"

	seed, err := registry.LoadSeed(path)
	switch {
	case err == nil:
		funds = seed.Fundos
		source = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("catalog seed: %w", err)
	}
	for _, f := range funds {
		if err := c.Validate(f); err != nil {
			return fmt.Errorf("catalog seed %s: %w", f.ID, err)
		}
	}

	inserted, err := catalog.Seed(ctx, store, funds)
	if err != nil {
		return err
	}
	log.Info("fund catalog seeded", map[string]interface{}{
		"source":   source,
		"funds":    len(funds),
		"inserted": inserted,
	})
	return nil
}
