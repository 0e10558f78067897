package ratelimiter

import (
	"sync"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"go.uber.org/zap"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter counts requests per key in fixed windows of
// TimeFrame, starting at the first request of the key.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window
	limit   int
	frame   time.Duration
	enabled bool
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   cfg.RequestsPerTimeFrame,
		frame:   cfg.TimeFrame,
		enabled: cfg.Enabled,
		logger:  logger,
		now:     time.Now,
	}
}

func (rl *FixedWindowRateLimiter) Enabled() bool {
	return rl.enabled
}

// Allow records one request for key. When the limit is reached it returns
// false and how long the caller should wait.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.frame {
		rl.clients[key] = &window{start: now, count: 1}
		rl.evict(now)
		return true, 0
	}

	if w.count >= rl.limit {
		retryAfter := w.start.Add(rl.frame).Sub(now)
		rl.logger.Debugf("Rate limit reached for %s, retry after %s", key, retryAfter)
		return false, retryAfter
	}

	w.count++
	return true, 0
}

// evict drops expired windows. Called with the lock held.
func (rl *FixedWindowRateLimiter) evict(now time.Time) {
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.frame {
			delete(rl.clients, key)
		}
	}
}
