package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "lead-qualifier/internal/common/errors"
	"lead-qualifier/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), logger.NewTestLogger(t), "probe", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("rpc error: code = Unavailable")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), logger.NewTestLogger(t), "probe", func(context.Context) error {
		calls++
		return errors.New("permission denied")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_GivesUpAfterBudget(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), logger.NewTestLogger(t), "probe", func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 4, calls)
}

func TestRetry_HonoursRetryableStandardError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), logger.NewTestLogger(t), "postgres connect", func(context.Context) error {
		calls++
		if calls < 2 {
			return apperrors.NewDatabaseConnectionFailedError(errors.New("pq: the database system is starting up"))
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Second, MaxDelay: time.Second}
	err := Retry(ctx, cfg, logger.NewTestLogger(t), "probe", func(context.Context) error {
		return errors.New("timeout")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code apperrors.ErrorCode
	}{
		{"context deadline exceeded", apperrors.ErrCodeTimeout},
		{"permission denied", apperrors.ErrCodeAuthentication},
		{"connection refused", apperrors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			std, ok := apperrors.AsStandard(mapZeebeError(errors.New(tt.msg), "connect"))
			assert.True(t, ok)
			assert.Equal(t, tt.code, std.Code)
		})
	}
}
