package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"domaindesk/internal/platform/metrics"
	"domaindesk/internal/transport/http/shared"
	"domaindesk/pkg/requestcontext"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	swept    time.Time
}

// NewRateLimiter allows rps sustained requests per client with the given burst.
func NewRateLimiter(rps float64, burst int, logger *slog.Logger, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Allow consumes one token for key.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > limiterIdleTTL {
		l.sweep(now)
	}
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than the idle TTL. Caller holds mu.
func (l *RateLimiter) sweep(now time.Time) {
	l.swept = now
	cutoff := now.Add(-limiterIdleTTL)
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// Middleware rejects over-limit clients with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		if ip == "" {
			ip = ClientIPFromRequest(r)
		}
		if !l.Allow(ip) {
			l.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"client_ip", ip,
			)
			l.metrics.IncrementRateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(1))
			shared.WriteJSON(w, http.StatusTooManyRequests, shared.ErrorResponse{Message: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
