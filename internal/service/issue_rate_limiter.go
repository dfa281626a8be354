package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// IssueRateLimiter limita cuántos tokens puede pedir una misma clave (IP del cliente).
type IssueRateLimiter interface {
	Allow(key string) bool
}

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

type memoryIssueRateLimiter struct {
	mu         sync.Mutex
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	sweepEvery time.Duration
	lastSweep  time.Time
	limiters   map[string]*keyLimiter
	now        func() time.Time
}

// NewMemoryIssueRateLimiter crea un token bucket por clave en memoria.
func NewMemoryIssueRateLimiter(perMinute, burst int) IssueRateLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	if burst <= 0 {
		burst = 1
	}
	return &memoryIssueRateLimiter{
		limit:      rate.Limit(float64(perMinute) / 60.0),
		burst:      burst,
		idleTTL:    10 * time.Minute,
		sweepEvery: time.Minute,
		limiters:   make(map[string]*keyLimiter),
		now:        time.Now,
	}
}

func (l *memoryIssueRateLimiter) Allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.sweepEvery {
		l.sweep(now)
	}

	kl, ok := l.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = kl
	}
	kl.lastAccess = now
	return kl.limiter.AllowN(now, 1)
}

// sweep descarta los limitadores sin uso; corre a lo sumo una vez por sweepEvery.
func (l *memoryIssueRateLimiter) sweep(now time.Time) {
	for k, kl := range l.limiters {
		if now.Sub(kl.lastAccess) > l.idleTTL {
			delete(l.limiters, k)
		}
	}
	l.lastSweep = now
}

const redisIssueAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisIssueRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	prefix string
}

// NewRedisIssueRateLimiter comparte el conteo entre instancias con una ventana fija.
func NewRedisIssueRateLimiter(client *redis.Client, window time.Duration, max int) IssueRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisIssueRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "auth:issue:rl:",
	}
}

// Allow falla abierto si Redis no responde.
func (l *redisIssueRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisIssueAllowScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		return true
	}
	return count <= l.max
}
