package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LimiterStore answers whether one more request is allowed for a key. Keys
// are "action:actor" pairs so each actor gets an independent budget per
// action rather than one global counter.
type LimiterStore interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// InMemoryLimiterStore keeps a token-bucket limiter per key. Suitable for a
// single process; counters reset on restart.
type InMemoryLimiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewInMemoryLimiterStore allows perMinute requests per key with the same
// amount of burst headroom. perMinute is clamped to at least 1.
func NewInMemoryLimiterStore(perMinute int) *InMemoryLimiterStore {
	if perMinute < 1 {
		perMinute = 1
	}
	return &InMemoryLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (s *InMemoryLimiterStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	limiter, ok := s.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(s.rate, s.burst)
		s.limiters[key] = limiter
	}
	s.mu.Unlock()
	return limiter.Allow(), nil
}

// RedisLimiterStore counts requests in fixed one-minute windows shared across
// processes. The first hit in a window sets the expiry.
type RedisLimiterStore struct {
	Client    *redis.Client
	PerMinute int
}

func (s *RedisLimiterStore) Allow(ctx context.Context, key string) (bool, error) {
	window := time.Now().Unix() / 60
	counterKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	count, err := s.Client.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		s.Client.Expire(ctx, counterKey, time.Minute)
	}
	return count <= int64(s.PerMinute), nil
}

// RateLimit throttles one action. The actor key comes from the context when
// an earlier middleware resolved it, from the X-Actor-ID header otherwise
// (the limiter runs before the handlers that validate the acting identity),
// and falls back to the client IP for anonymous calls. On a store error the
// request passes; a broken counter backend should not take the API down.
func RateLimit(store LimiterStore, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := zap.L()
		actor := c.GetString("actorID")
		if actor == "" {
			actor = c.GetHeader("X-Actor-ID")
		}
		if actor == "" {
			actor = getClientIP(c)
		}
		key := action + ":" + actor

		allowed, err := store.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter store error", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			logger.Warn("rate limit exceeded", zap.String("action", action), zap.String("actor", actor))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}
