package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/time-roi-meter/internal/monitoring"
	"github.com/go-redis/redis_rate/v10"
)

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin   int           // IP-based rate limit per minute
	BurstMultiplier int           // Burst capacity multiplier for the Redis path
	EnableFallback  bool          // Use in-memory limiting when Redis is unavailable
	CleanupInterval time.Duration // How often stale in-memory windows are purged
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   60,
		BurstMultiplier: 2,
		EnableFallback:  true,
		CleanupInterval: time.Hour,
	}
}

// Rate describes a limit over a period.
type Rate struct {
	Limit  int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// fallbackWindow is a fixed-window counter for one key. Unlike the Redis
// sliding window it admits exactly Limit requests per period, which keeps
// the fallback strictly no more permissive than the Redis path.
type fallbackWindow struct {
	count       int
	windowStart time.Time
	period      time.Duration
}

// RateLimiter provides distributed rate limiting with Redis and an
// in-memory fallback.
type RateLimiter struct {
	redisLimiter *redis_rate.Limiter
	redisClient  *RedisClient
	config       Config
	metrics      *monitoring.Metrics

	fallbackWindows map[string]*fallbackWindow
	fallbackMutex   sync.Mutex

	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// NewRateLimiter creates a new rate limiter with Redis and in-memory fallback
func NewRateLimiter(redisClient *RedisClient, config Config, metrics *monitoring.Metrics) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}

	rl := &RateLimiter{
		redisClient:     redisClient,
		config:          config,
		metrics:         metrics,
		fallbackWindows: make(map[string]*fallbackWindow),
		stopCleanup:     make(chan struct{}),
	}

	if redisClient.IsEnabled() {
		rl.redisLimiter = redis_rate.NewLimiter(redisClient.GetClient())
		slog.Info("Redis rate limiter initialized")
	} else if config.EnableFallback {
		slog.Warn("Redis unavailable, using in-memory rate limiting only")
	} else {
		slog.Warn("Redis unavailable and fallback disabled, rate limiting is off")
	}

	go rl.cleanupLoop()

	return rl
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// AllowIP checks if an IP address is allowed to make a request (per-minute limit)
func (rl *RateLimiter) AllowIP(ctx context.Context, ip string) (*Result, error) {
	key := fmt.Sprintf("ratelimit:ip:%s", ip)
	return rl.Allow(ctx, key, Rate{Limit: rl.config.IPLimitPerMin, Period: time.Minute})
}

// Allow performs a rate limit check for an arbitrary key using Redis, or
// the in-memory fallback when Redis is unavailable or erroring.
func (rl *RateLimiter) Allow(ctx context.Context, key string, r Rate) (*Result, error) {
	if rl.redisClient.IsEnabled() && rl.redisLimiter != nil {
		result, err := rl.allowRedis(ctx, key, r)
		if err != nil {
			slog.Warn("Redis rate limit check failed, using fallback", "key", key, "error", err)
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitRedisError()
			}
			return rl.allowFallback(key, r), nil
		}
		return result, nil
	}

	if !rl.config.EnableFallback {
		// Fail open: scoring requests are cheap, and blocking all traffic
		// because Redis is down would be worse than no limiting.
		return &Result{Allowed: true, Limit: r.Limit, Remaining: r.Limit, ResetAt: time.Now().Add(r.Period)}, nil
	}

	if rl.metrics != nil {
		rl.metrics.IncrementRateLimitFallback()
	}
	return rl.allowFallback(key, r), nil
}

func (rl *RateLimiter) allowRedis(ctx context.Context, key string, r Rate) (*Result, error) {
	burst := r.Limit * rl.config.BurstMultiplier
	if burst < r.Limit {
		burst = r.Limit
	}

	res, err := rl.redisLimiter.Allow(ctx, key, redis_rate.Limit{
		Rate:   r.Limit,
		Burst:  burst,
		Period: r.Period,
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	return &Result{
		Allowed:    res.Allowed > 0,
		Limit:      res.Limit.Rate,
		Remaining:  res.Remaining,
		ResetAt:    time.Now().Add(res.ResetAfter),
		RetryAfter: res.RetryAfter,
	}, nil
}

func (rl *RateLimiter) allowFallback(key string, r Rate) *Result {
	now := time.Now()

	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	w, exists := rl.fallbackWindows[key]
	if !exists || now.Sub(w.windowStart) >= r.Period {
		w = &fallbackWindow{windowStart: now, period: r.Period}
		rl.fallbackWindows[key] = w
	}

	resetAt := w.windowStart.Add(r.Period)

	if w.count >= r.Limit {
		return &Result{
			Allowed:    false,
			Limit:      r.Limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: time.Until(resetAt),
		}
	}

	w.count++

	return &Result{
		Allowed:   true,
		Limit:     r.Limit,
		Remaining: r.Limit - w.count,
		ResetAt:   resetAt,
	}
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanup removes expired in-memory windows.
func (rl *RateLimiter) cleanup() {
	now := time.Now()

	rl.fallbackMutex.Lock()
	defer rl.fallbackMutex.Unlock()

	removed := 0
	for key, w := range rl.fallbackWindows {
		if now.Sub(w.windowStart) >= w.period {
			delete(rl.fallbackWindows, key)
			removed++
		}
	}

	if removed > 0 {
		slog.Info("Cleaned up fallback rate limit windows", "removed", removed, "remaining", len(rl.fallbackWindows))
	}
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.fallbackMutex.Lock()
	fallbackCount := len(rl.fallbackWindows)
	rl.fallbackMutex.Unlock()

	stats := map[string]interface{}{
		"redis_enabled":     rl.redisClient.IsEnabled(),
		"fallback_enabled":  rl.config.EnableFallback,
		"fallback_limiters": fallbackCount,
		"config": map[string]interface{}{
			"ip_limit_per_min": rl.config.IPLimitPerMin,
			"burst_multiplier": rl.config.BurstMultiplier,
		},
	}

	if rl.redisClient.IsEnabled() {
		stats["redis_pool"] = rl.redisClient.GetPoolStats()
	}

	return stats
}
