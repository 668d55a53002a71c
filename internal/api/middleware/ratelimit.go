package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/auth"
	"swappy/backend/internal/config"
)

// clientLimiter stores rate limiters for a specific client.
type clientLimiter struct {
	softLimiter *rate.Limiter
	hardLimiter *rate.Limiter
	lastSeen    time.Time
}

// RateLimiterMiddleware applies two token buckets per client IP. The hard
// bucket applies to every request; the soft bucket only to requests that do
// not carry a token the resolver accepts.
type RateLimiterMiddleware struct {
	clients  map[string]*clientLimiter
	mu       sync.Mutex
	cfg      *config.Config
	resolver auth.IResolver
	now      func() time.Time
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware. A nil
// resolver treats every request as anonymous.
func NewRateLimiterMiddleware(cfg *config.Config, resolver auth.IResolver) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		clients:  make(map[string]*clientLimiter),
		cfg:      cfg,
		resolver: resolver,
		now:      time.Now,
	}
}

// authenticated reports whether the request carries a verified bearer token.
func (rm *RateLimiterMiddleware) authenticated(c *gin.Context) bool {
	header := c.GetHeader("Authorization")
	if header == "" || rm.resolver == nil {
		return false
	}
	_, err := rm.resolver.Resolve(header)
	return err == nil
}

// Clients returns the number of tracked client entries.
func (rm *RateLimiterMiddleware) Clients() int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.clients)
}

// getClientLimiter retrieves or creates the rate limiters for a given client identifier.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		limiter = &clientLimiter{
			softLimiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitSoftRefillRate), rm.cfg.RateLimitSoftBucketSize),
			hardLimiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitHardRefillRate), rm.cfg.RateLimitHardBucketSize),
		}
		rm.clients[identifier] = limiter
	}
	limiter.lastSeen = rm.now()
	return limiter
}

// Cleanup removes client entries not seen for longer than maxIdle and
// returns how many were removed.
func (rm *RateLimiterMiddleware) Cleanup(maxIdle time.Duration) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	count := 0
	for id, client := range rm.clients {
		if rm.now().Sub(client.lastSeen) > maxIdle {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

// RunCleanup periodically drops idle clients until stop is closed.
func (rm *RateLimiterMiddleware) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if count := rm.Cleanup(3 * interval); count > 0 {
				log.Printf("Rate limiter cleanup removed %d old client entries.", count)
			}
		}
	}
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := rm.getClientLimiter(clientIP)

		if !limiter.hardLimiter.Allow() {
			log.Printf("Hard rate limit exceeded for client: %s on %s %s", clientIP, c.Request.Method, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody(apperr.CodeRateLimited, "Rate limit exceeded"))
			return
		}

		if !rm.authenticated(c) && !limiter.softLimiter.Allow() {
			log.Printf("Soft rate limit exceeded for anonymous client: %s on %s %s", clientIP, c.Request.Method, c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorBody(apperr.CodeRateLimited, "Rate limit exceeded, sign in for a higher limit"))
			return
		}

		c.Next()
	}
}
