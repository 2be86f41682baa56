package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	defaultLoginRPM = 10
	limiterIdleTTL  = 10 * time.Minute
	limiterGCSize   = 1000
)

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket refilled
// at rpm tokens per minute and a burst of rpm.
type RateLimiter struct {
	rpm     int
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		rpm = defaultLoginRPM
	}
	return &RateLimiter{rpm: rpm, clients: map[string]*clientLimiter{}}
}

// Middleware returns the echo middleware enforcing the limit.
func (m *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.limiter(c.RealIP()).Allow() {
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			}
			return next(c)
		}
	}
}

func (m *RateLimiter) limiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if cl, ok := m.clients[ip]; ok {
		cl.lastSeen = now
		return cl.lim
	}

	cl := &clientLimiter{
		lim:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.rpm)), m.rpm),
		lastSeen: now,
	}
	m.clients[ip] = cl
	m.gcLocked(now)
	return cl.lim
}

func (m *RateLimiter) gcLocked(now time.Time) {
	if len(m.clients) < limiterGCSize {
		return
	}
	cutoff := now.Add(-limiterIdleTTL)
	for ip, cl := range m.clients {
		if cl.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}
