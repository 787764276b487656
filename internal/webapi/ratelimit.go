package webapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// limiterSweepInterval is how often stale client buckets are collected.
	limiterSweepInterval = 5 * time.Minute

	// limiterMaxIdle is how long a client may stay quiet before its bucket
	// is dropped.
	limiterMaxIdle = 10 * time.Minute
)

// clientLimiters tracks one token bucket per client IP. The steady-state
// rate comes from Config.RateLimitRPS; bursts of twice that are absorbed.
type clientLimiters struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps int) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(rps),
		burst:   rps * 2,
		clients: make(map[string]*clientLimiter),
	}
}

// allow reports whether ip has budget for one more request.
func (cl *clientLimiters) allow(ip string) bool {
	cl.mu.Lock()
	c, ok := cl.clients[ip]
	if !ok {
		c = &clientLimiter{bucket: rate.NewLimiter(cl.rps, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	cl.mu.Unlock()

	return c.bucket.Allow()
}

// sweep drops buckets idle for longer than limiterMaxIdle.
func (cl *clientLimiters) sweep() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for ip, c := range cl.clients {
		if time.Since(c.lastSeen) > limiterMaxIdle {
			delete(cl.clients, ip)
		}
	}
}

// RateLimiter returns a Gin middleware enforcing the per-IP request budget
// from cfg. Rejections are counted in modsentry_rate_limited_total so a
// misbehaving platform integration shows up next to the other service
// metrics.
func RateLimiter(cfg Config) gin.HandlerFunc {
	cl := newClientLimiters(cfg.RateLimitRPS)

	go func() {
		for {
			time.Sleep(limiterSweepInterval)
			cl.sweep()
		}
	}()

	return func(c *gin.Context) {
		if !cl.allow(c.ClientIP()) {
			rateLimitedTotal.Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
