// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Kafka         KafkaConfig             `mapstructure:"kafka"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Catalog       CatalogConfig           `mapstructure:"catalog"`
	Delivery      DeliveryConfig          `mapstructure:"delivery"`
	WebhookLog    WebhookLogConfig        `mapstructure:"webhook_log"`
	Alerts        AlertsConfig            `mapstructure:"alerts"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	ConnectRetries int    `mapstructure:"connect_retries"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

func (e ElasticsearchConfig) Configured() bool {
	return len(e.Addresses) > 0
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	BatchTimeout int      `mapstructure:"batch_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Address     string   `mapstructure:"address"`
	BodyLimit   string   `mapstructure:"body_limit"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Catalog backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type CatalogConfig struct {
	Backend   string `mapstructure:"backend"`
	SeedPath  string `mapstructure:"seed_path"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DeliveryConfig drives the lead sink pipeline.
type DeliveryConfig struct {
	SinkURL         string   `mapstructure:"sink_url"`
	AttemptTimeout  int      `mapstructure:"attempt_timeout"` // milliseconds
	MaxAttempts     int      `mapstructure:"max_attempts"`
	BackoffStep     int      `mapstructure:"backoff_step"` // milliseconds
	Secret          string   `mapstructure:"secret"`
	MaxPayloadBytes int      `mapstructure:"max_payload_bytes"`
	AllowedDomains  []string `mapstructure:"allowed_domains"`
	Source          string   `mapstructure:"source"`
	UserAgent       string   `mapstructure:"user_agent"`
}

type WebhookLogConfig struct {
	Backend            string `mapstructure:"backend"`
	Capacity           int    `mapstructure:"capacity"`
	ElasticsearchIndex string `mapstructure:"elasticsearch_index"`
	KafkaTopic         string `mapstructure:"kafka_topic"`
}

type AlertsConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		To        []string `mapstructure:"to"`
	} `mapstructure:"ses"`
}

func (a AlertsConfig) Enabled() bool {
	return a.SNS.Enabled || a.SES.Enabled
}

type ObservabilityConfig struct {
	ServiceName    string  `mapstructure:"service_name"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
