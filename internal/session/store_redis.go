package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"domaindesk/pkg/platform/sentinel"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "domaindesk_session_lookup_duration_ms",
	Help:    "Latency of session store lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// Redis key prefix for live sessions, value is the owning user id.
const sessionKeyPrefix = "session:"

// RedisStore reads sessions the auth service writes to Redis. Sessions expire
// through key TTLs, sign-out deletes the key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.ID, sess.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return nil
}

// IsActive ignores now; Redis TTLs handle expiry.
func (s *RedisStore) IsActive(ctx context.Context, sessionID, userID string, _ time.Time) (bool, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	owner, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return owner == userID, nil
}
