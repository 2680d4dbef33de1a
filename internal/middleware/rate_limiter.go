package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okabelab/graymeter/internal/logging"
	"golang.org/x/time/rate"
)

// UploadRateLimiter throttles upload endpoints per client IP using token
// buckets. Buckets idle for an hour are dropped by a background sweep.
type UploadRateLimiter struct {
	perMinute int
	limiters  map[string]*clientLimiter
	mutex     sync.Mutex
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUploadRateLimiter creates a limiter allowing perMinute requests per
// client IP, with a burst of the same size.
func NewUploadRateLimiter(perMinute int) *UploadRateLimiter {
	rl := &UploadRateLimiter{
		perMinute: perMinute,
		limiters:  make(map[string]*clientLimiter),
	}

	go rl.cleanupRoutine()

	return rl
}

// RateLimit is a middleware that enforces the per-IP upload limit
func (rl *UploadRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.allow(ip) {
			logging.WarnWithComponent(logging.ComponentUpload, "rate limit exceeded", "ip", ip)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"rate_limit": rl.perMinute,
				"window":     "1 minute",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *UploadRateLimiter) allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rl.perMinute)), rl.perMinute),
		}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

// cleanupRoutine removes idle client buckets
func (rl *UploadRateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mutex.Lock()
		cutoff := time.Now().Add(-time.Hour)
		for ip, cl := range rl.limiters {
			if cl.lastSeen.Before(cutoff) {
				delete(rl.limiters, ip)
			}
		}
		rl.mutex.Unlock()
	}
}

// RequestSizeLimit rejects requests whose declared or actual body size
// exceeds maxBytes. The body is also wrapped so chunked uploads cannot
// bypass the Content-Length check.
func RequestSizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			logging.WarnWithComponent(logging.ComponentUpload, "request too large",
				"size", c.Request.ContentLength, "limit", maxBytes, "ip", c.ClientIP())
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":    "Request payload too large",
				"max_size": fmt.Sprintf("%dB", maxBytes),
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
