// middleware/rate_limit.go
package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// Limiters idle longer than this are evicted so the table stays bounded.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type limiterTable struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func newLimiterTable() *limiterTable {
	return &limiterTable{clients: make(map[string]*clientLimiter)}
}

func (t *limiterTable) get(key string, r rate.Limit, burst int, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(r, burst)}
		t.clients[key] = c
	}
	c.lastSeen = now
	return c.lim
}

func (t *limiterTable) sweep(cutoff time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, c := range t.clients {
		if c.lastSeen.Before(cutoff) {
			delete(t.clients, k)
		}
	}
}

// RateLimit applies a per-user token bucket to write endpoints. Falls back to
// the client IP when no user context is present. Idle entries are swept
// periodically so the per-client table does not grow without bound.
func RateLimit(r rate.Limit, burst int) fiber.Handler {
	table := newLimiterTable()

	go func() {
		ticker := time.NewTicker(limiterIdleTTL)
		defer ticker.Stop()
		for range ticker.C {
			table.sweep(time.Now().Add(-limiterIdleTTL))
		}
	}()

	return func(c *fiber.Ctx) error {
		key, _ := c.Locals("user_id").(string)
		if key == "" {
			key = c.IP()
		}

		if !table.get(key, r, burst, time.Now()).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, slow down",
			})
		}
		return c.Next()
	}
}
