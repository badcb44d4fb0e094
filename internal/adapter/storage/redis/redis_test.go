package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.IdempotencyCache = (*IdempotencyCache)(nil)
	_ ports.RateLimitStore   = (*RateLimitStore)(nil)
	_ ports.HealthChecker    = (*HealthCheck)(nil)
)

func redisConfigFor(t *testing.T, s *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	return config.RedisConfig{Enabled: true, Host: s.Host(), Port: port}
}

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), redisConfigFor(t, s), zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClient_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := redisConfigFor(t, s)
	s.Close()

	_, err := NewClient(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pinging redis")
}

func TestOptions(t *testing.T) {
	opts := options(config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2})

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.True(t, opts.ContextTimeoutEnabled)
}

func TestHealthCheck(t *testing.T) {
	s, client := newTestClient(t)
	hc := NewHealthCheck(client)
	hc.now = func() time.Time { return time.Unix(1700000000, 0) }

	assert.Equal(t, "redis", hc.Name())
	require.NoError(t, hc.Ping(context.Background()))

	val, err := s.Get("wallet-ledger:health")
	require.NoError(t, err)
	assert.Equal(t, "1700000000", val)
	assert.Equal(t, 30*time.Second, s.TTL("wallet-ledger:health"))

	s.Close()
	err = hc.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis write probe")
}
