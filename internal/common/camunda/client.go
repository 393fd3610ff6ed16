// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	client  zbc.Client
	timeout time.Duration
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 5,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Connect dials the gateway and waits for a topology answer, retrying
// transient failures with exponential backoff.
func Connect(ctx context.Context, cfg config.CamundaConfig, log logger.Logger) (*Client, error) {
	retry := DefaultRetryConfig
	if cfg.ConnectRetries > 0 {
		retry.MaxRetries = cfg.ConnectRetries
	}
	timeout := config.GetDuration(cfg.RequestTimeout)

	var c *Client
	err := Retry(ctx, retry, log, "zeebe connect", func(ctx context.Context) error {
		zc, err := zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.BrokerAddress,
			UsePlaintextConnection: true,
		})
		if err != nil {
			return err
		}
		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := zc.NewTopologyCommand().Send(probeCtx); err != nil {
			zc.Close()
			return err
		}
		c = &Client{client: zc, timeout: timeout}
		return nil
	})
	if err != nil {
		return nil, mapZeebeError(err, "connect")
	}
	return c, nil
}

// GetClient returns the raw Zeebe client for job polling.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck asks the broker for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// Retry runs op until it succeeds, returns a non-retryable error or the
// budget is spent.
func Retry(ctx context.Context, cfg RetryConfig, log logger.Logger, operation string, op func(context.Context) error) error {
	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == cfg.MaxRetries {
			break
		}

		log.Warn(operation+" failed, retrying", map[string]interface{}{
			"attempt":     attempt + 1,
			"maxRetries":  cfg.MaxRetries,
			"nextRetryIn": delay.String(),
			"error":       lastErr.Error(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", operation, attempt+1, ctx.Err())
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	if stdErr, ok := errors.AsStandard(err); ok && stdErr.Retryable {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func mapZeebeError(err error, operation string) error {
	lower := strings.ToLower(err.Error())
	wrapped := fmt.Errorf("zeebe %s: %w", operation, err)

	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return errors.NewTimeoutError("zeebe", wrapped)
	case strings.Contains(lower, "permission denied") || strings.Contains(lower, "unauthorized"):
		return errors.NewAuthenticationError(wrapped.Error())
	default:
		return errors.NewExternalServiceError("zeebe", wrapped)
	}
}
