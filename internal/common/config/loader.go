// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Well-known task types; their defaults are filled in by applyDefaults.
var knownWorkers = []string{
	"validate-lead-profile",
	"calculate-lead-score",
	"evaluate-fund-eligibility",
	"deliver-lead-event",
}

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return decode(v)
}

// LoadFromFile reads a single config file; used by the CLI and tests.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills secrets that are conventionally provided through
// plain environment variables rather than the nested key form.
func overrideEmptyConfig(cfg *Config) {
	overrides := []struct {
		target *string
		env    string
	}{
		{&cfg.Delivery.Secret, "WEBHOOK_SECRET"},
		{&cfg.Delivery.SinkURL, "WEBHOOK_URL"},
		{&cfg.Database.Postgres.User, "DB_USER"},
		{&cfg.Database.Postgres.Password, "DB_PASSWORD"},
		{&cfg.Database.Redis.Password, "REDIS_PASSWORD"},
	}
	for _, o := range overrides {
		if *o.target != "" {
			continue
		}
		if val := os.Getenv(o.env); val != "" {
			*o.target = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lead-qualifier"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}
	if cfg.Camunda.ConnectRetries == 0 {
		cfg.Camunda.ConnectRetries = 5
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.BodyLimit == "" {
		cfg.HTTP.BodyLimit = "10M"
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}

	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = BackendMemory
	}
	if cfg.Catalog.SeedPath == "" {
		cfg.Catalog.SeedPath = "configs/fundos_criterios.json"
	}
	if cfg.Catalog.KeyPrefix == "" {
		cfg.Catalog.KeyPrefix = "lead-qualifier"
	}

	if cfg.Delivery.AttemptTimeout == 0 {
		cfg.Delivery.AttemptTimeout = 15000
	}
	if cfg.Delivery.MaxAttempts == 0 {
		cfg.Delivery.MaxAttempts = 2
	}
	if cfg.Delivery.BackoffStep == 0 {
		cfg.Delivery.BackoffStep = 1000
	}
	if cfg.Delivery.MaxPayloadBytes == 0 {
		cfg.Delivery.MaxPayloadBytes = 10 * 1024 * 1024
	}
	if cfg.Delivery.Source == "" {
		cfg.Delivery.Source = "investiza-form-gamificado-v2"
	}
	if cfg.Delivery.UserAgent == "" {
		cfg.Delivery.UserAgent = "Investiza-Form/1.0"
	}
	if len(cfg.Delivery.AllowedDomains) == 0 {
		cfg.Delivery.AllowedDomains = []string{"2n8n.ominicrm.com", "webhook.site", "api.investiza.com"}
	}

	if cfg.WebhookLog.Backend == "" {
		cfg.WebhookLog.Backend = BackendMemory
	}
	if cfg.WebhookLog.Capacity == 0 {
		cfg.WebhookLog.Capacity = 100
	}

	if cfg.Alerts.Region == "" {
		cfg.Alerts.Region = "us-east-1"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.Observability.SampleRatio == 0 {
		cfg.Observability.SampleRatio = 1
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for _, name := range knownWorkers {
		if _, ok := cfg.Workers[name]; !ok {
			cfg.Workers[name] = WorkerConfig{}
		}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
	// The delivery job must outlive every attempt plus its backoff.
	minDelivery := cfg.Delivery.MaxAttempts * (cfg.Delivery.AttemptTimeout + cfg.Delivery.BackoffStep)
	if w := cfg.Workers["deliver-lead-event"]; w.Timeout < minDelivery {
		w.Timeout = minDelivery
		cfg.Workers["deliver-lead-event"] = w
	}
}

func validateConfig(cfg *Config) error {
	if anyWorkerEnabled(cfg) && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when a worker is enabled")
	}

	for _, backend := range []string{cfg.Catalog.Backend, cfg.WebhookLog.Backend} {
		switch backend {
		case BackendMemory, BackendRedis, BackendPostgres:
		default:
			return fmt.Errorf("unknown storage backend %q", backend)
		}
	}
	if cfg.WebhookLog.Backend == BackendRedis {
		return fmt.Errorf("webhook_log.backend must be memory or postgres")
	}

	if usesBackend(cfg, BackendPostgres) {
		pg := cfg.Database.Postgres
		if pg.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if pg.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if pg.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if cfg.Catalog.Backend == BackendRedis && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.WebhookLog.ElasticsearchIndex != "" && !cfg.Database.Elasticsearch.Configured() {
		return fmt.Errorf("database.elasticsearch.addresses is required when webhook_log.elasticsearch_index is set")
	}
	if cfg.WebhookLog.KafkaTopic != "" && len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when webhook_log.kafka_topic is set")
	}

	if cfg.Delivery.MaxAttempts < 1 {
		return fmt.Errorf("delivery.max_attempts must be at least 1")
	}
	if cfg.Alerts.SNS.Enabled && cfg.Alerts.SNS.TopicARN == "" {
		return fmt.Errorf("alerts.sns.topic_arn is required when sns alerts are enabled")
	}
	if cfg.Alerts.SES.Enabled && (cfg.Alerts.SES.FromEmail == "" || len(cfg.Alerts.SES.To) == 0) {
		return fmt.Errorf("alerts.ses.from_email and alerts.ses.to are required when ses alerts are enabled")
	}

	return nil
}

func usesBackend(cfg *Config, backend string) bool {
	return cfg.Catalog.Backend == backend || cfg.WebhookLog.Backend == backend
}

func anyWorkerEnabled(cfg *Config) bool {
	for _, w := range cfg.Workers {
		if w.Enabled {
			return true
		}
	}
	return false
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       false,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	return cfg.Workers[workerName].Enabled
}
