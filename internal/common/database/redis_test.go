package database

import (
	"context"
	"testing"

	"lead-qualifier/internal/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedis_Reachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedis(context.Background(), config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	c, err := NewRedis(context.Background(), config.RedisConfig{Address: addr})
	assert.Nil(t, c)
	assert.ErrorContains(t, err, addr)
}
