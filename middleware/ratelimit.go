package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// SessionRateLimiter throttles requests per cart session. Coupon redemption
// is the target: a shopper guessing codes burns their own session's budget
// without slowing anyone else down. Requests arriving before a session is
// resolved fall back to the client IP.
type SessionRateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*tokenBucket
	burst      float64
	refillRate float64 // tokens per second
}

// NewSessionRateLimiter creates a limiter allowing maxRequests per
// perDuration for each session, with maxRequests as the burst size.
func NewSessionRateLimiter(maxRequests int, perDuration time.Duration) *SessionRateLimiter {
	rl := &SessionRateLimiter{
		buckets:    make(map[string]*tokenBucket),
		burst:      float64(maxRequests),
		refillRate: float64(maxRequests) / perDuration.Seconds(),
	}

	// Sweep stale buckets so abandoned guest sessions don't accumulate.
	go rl.sweep()

	return rl
}

func (rl *SessionRateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.lastSeen) > 10*time.Minute {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// take consumes one token from the session's bucket, refilling first based
// on the time elapsed since the bucket was last touched.
func (rl *SessionRateLimiter) take(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]

	if !exists {
		rl.buckets[key] = &tokenBucket{
			tokens:   rl.burst - 1,
			lastSeen: now,
		}
		return true
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.refillRate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

// Middleware returns a gin middleware that rate limits by cart session.
func (rl *SessionRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := SessionID(c)
		if key == "" {
			key = c.ClientIP()
		}
		if !rl.take(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}
		c.Next()
	}
}
