package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baechuer/careportal/internal/logger"
)

// AttemptLimiter counts attempts per client in fixed windows kept in Redis, so every
// portal replica shares one budget.
type AttemptLimiter struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

func NewAttemptLimiter(rdb *redis.Client) *AttemptLimiter {
	return &AttemptLimiter{rdb: rdb, prefix: "portal:attempts:", now: time.Now}
}

type LimitConfig struct {
	Scope  string
	Limit  int
	Window time.Duration
	KeyFn  func(r *http.Request) string
	// Reject answers a request over budget. Nil writes a JSON 429.
	Reject func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)
}

// Middleware enforces cfg. A nil limiter or a Redis error lets the request through.
// Windows are counted in whole milliseconds; anything shorter is raised to 1ms.
func (l *AttemptLimiter) Middleware(cfg LimitConfig) func(http.Handler) http.Handler {
	if cfg.Window < time.Millisecond {
		cfg.Window = time.Millisecond
	}
	reject := cfg.Reject
	if reject == nil {
		reject = func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
			writeFailure(w, r, http.StatusTooManyRequests, "too many attempts, please try again later")
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil || l.rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			used, retryAfter, err := l.take(r.Context(), cfg.Scope, cfg.KeyFn(r), cfg.Window)
			if err != nil {
				logger.Ctx(r.Context()).Warn().Err(err).Str("scope", cfg.Scope).Msg("attempt_limit_unavailable")
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - int(used)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if int(used) > cfg.Limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
				reject(w, r, retryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// take records one attempt and returns the count for the current window and the time
// left until it closes.
func (l *AttemptLimiter) take(ctx context.Context, scope, key string, window time.Duration) (int64, time.Duration, error) {
	now := l.now()
	slot := now.UnixMilli() / window.Milliseconds()
	closes := time.UnixMilli((slot + 1) * window.Milliseconds())
	redisKey := l.prefix + scope + ":" + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.PExpire(ctx, redisKey, window)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return incr.Val(), closes.Sub(now), nil
}

// KeyByIP keys on the client address; chi's RealIP has already resolved forwarded headers.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
