package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domaindesk/internal/platform/config"
)

func TestNewWithoutURL(t *testing.T) {
	c, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewPingsAndReportsHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), config.RedisConfig{
		URL:         "redis://" + mr.Addr(),
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Health(context.Background()))

	mr.Close()
	assert.ErrorContains(t, c.Health(context.Background()), "session redis")
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://nope"})
	assert.ErrorContains(t, err, "parse REDIS_URL")
}
