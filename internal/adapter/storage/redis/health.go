package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	healthKey = keyPrefix + "health"
	healthTTL = 30 * time.Second
)

// HealthCheck writes a short-lived probe key. A read-only replica or a full
// instance fails it, since idempotent replay needs writes.
type HealthCheck struct {
	client goredis.Cmdable
	now    func() time.Time
}

func NewHealthCheck(client goredis.Cmdable) *HealthCheck {
	return &HealthCheck{client: client, now: time.Now}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	if err := h.client.Set(ctx, healthKey, h.now().Unix(), healthTTL).Err(); err != nil {
		return fmt.Errorf("redis write probe: %w", err)
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "redis"
}
