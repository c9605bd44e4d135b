package middleware

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/tripbook/internal/metrics"
)

// IPRateLimiter throttles requests per client IP with a token bucket
// that refills perWindow tokens every window.
type IPRateLimiter struct {
	visitors sync.Map
	limit    rate.Limit
	burst    int
	idle     time.Duration
	metrics  *metrics.Metrics
	log      *zap.Logger
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewIPRateLimiter creates a limiter. Idle visitors are evicted until
// ctx is done.
func NewIPRateLimiter(ctx context.Context, perWindow int, window time.Duration, m *metrics.Metrics, log *zap.Logger) *IPRateLimiter {
	if perWindow < 1 {
		perWindow = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &IPRateLimiter{
		limit:   rate.Limit(float64(perWindow) / window.Seconds()),
		burst:   perWindow,
		idle:    window,
		metrics: m,
		log:     log,
	}
	go l.cleanupVisitors(ctx)
	return l
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := time.Now()
	v, _ := l.visitors.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = now
	vi.mu.Unlock()
	return vi.limiter
}

func (l *IPRateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.idle)
		l.visitors.Range(func(k, v interface{}) bool {
			vi := v.(*visitor)
			vi.mu.Lock()
			stale := vi.lastSeen.Before(cutoff)
			vi.mu.Unlock()
			if stale {
				l.visitors.Delete(k)
			}
			return true
		})
	}
}

// Handler returns the fiber middleware.
func (l *IPRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := getIP(c)
		if !l.getLimiter(ip).Allow() {
			l.metrics.RequestRejected()
			l.log.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", c.Path()))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		}
		return c.Next()
	}
}

func getIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil {
		return host
	}
	return ip
}
