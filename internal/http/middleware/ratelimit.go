package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	last  time.Time
	count int
}

// windowCounter is a fixed-window counter keyed by client. Expired entries are
// swept at most once per window.
type windowCounter struct {
	max    int
	window time.Duration

	mu        sync.Mutex
	clients   map[string]*clientInfo
	lastSweep time.Time
}

func newWindowCounter(max int, window time.Duration) *windowCounter {
	return &windowCounter{max: max, window: window, clients: make(map[string]*clientInfo)}
}

// allow counts a request from key and reports whether it is within the limit.
func (w *windowCounter) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.lastSweep) > w.window {
		for k, ci := range w.clients {
			if now.Sub(ci.last) > w.window {
				delete(w.clients, k)
			}
		}
		w.lastSweep = now
	}

	ci, ok := w.clients[key]
	if !ok || now.Sub(ci.last) > w.window {
		w.clients[key] = &clientInfo{last: now, count: 1}
		return true
	}
	ci.count++
	return ci.count <= w.max
}

func (w *windowCounter) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

// SimpleRateLimit blocks clients that send more than maxRequests per window.
// In-process only; used for auth routes when Redis is not configured.
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	counter := newWindowCounter(maxRequests, window)

	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}

		if !counter.allow(c.ClientIP(), time.Now()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
