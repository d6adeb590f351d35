package httpapi

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/i474232898/snowhound/internal/weather"
)

// IPLimiter hands out one token bucket per client IP. Each bucket holds
// requests tokens and refills completely over window.
type IPLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	window    time.Duration
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPLimiter(requests int, window time.Duration) *IPLimiter {
	if requests < 1 {
		requests = 1
	}
	return &IPLimiter{
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Allow reports whether ip may proceed and, if not, how long until it may.
func (l *IPLimiter) Allow(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops clients idle for a full window; their buckets would be full anyway.
func (l *IPLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.window {
			delete(l.clients, ip)
		}
	}
}

// Middleware rejects over-limit requests with a RateLimitedError.
func (l *IPLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, wait := l.Allow(c.IP())
		if !ok {
			return &weather.RateLimitedError{Provider: serviceName, RetryAfter: wait}
		}
		return c.Next()
	}
}
