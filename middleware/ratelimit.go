package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"attendance-backend/utils"
)

// SlidingWindowLimiter counts attempts per identifier inside a rolling window.
// It guards authentication endpoints only; attendance operations are not
// rate-limited.
type SlidingWindowLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	limit    int
	attempts map[string][]time.Time
	now      func() time.Time
}

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		window:   window,
		limit:    limit,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow records one attempt for the identifier and reports whether it is
// within the limit.
func (l *SlidingWindowLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.attempts[identifier][:0]
	for _, t := range l.attempts[identifier] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.attempts[identifier] = kept
		return false
	}
	l.attempts[identifier] = append(kept, now)
	return true
}

// RateLimitAuth keys the limiter on the submitted email when present,
// otherwise the client IP.
func RateLimitAuth(limiter *SlidingWindowLimiter) gin.HandlerFunc {
	type identified struct {
		Email string `json:"email"`
	}
	return func(c *gin.Context) {
		identifier := c.ClientIP()
		var body identified
		if err := c.ShouldBindBodyWithJSON(&body); err == nil {
			if email := strings.ToLower(strings.TrimSpace(body.Email)); email != "" {
				identifier = email
			}
		}

		if !limiter.Allow(identifier) {
			utils.JSONError(c, http.StatusTooManyRequests, "too many attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
