// internal/workers/lead/deliver-lead-event/config.go
package deliverleadevent

import (
	"time"

	"lead-qualifier/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// NewConfig derives the job timeout from the worker settings, falling back
// to 30s when none is configured.
func NewConfig(w config.WorkerConfig) *Config {
	timeout := config.GetDuration(w.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{Timeout: timeout}
}
