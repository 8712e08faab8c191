package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 3 * time.Minute

// RateLimiter throttles each owner account independently, so one tenant
// hammering the campaign endpoints cannot starve the others. Requests
// without an owner header (health checks, preflights) fall back to the
// remote address.
type RateLimiter struct {
	accounts map[string]*accountLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

type accountLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		accounts: make(map[string]*accountLimiter),
		rate:     r,
		burst:    b,
	}

	go rl.evictIdle()

	return rl
}

// evictIdle drops limiters for accounts that went quiet, keeping the map
// bounded by active tenants rather than everyone ever seen.
func (rl *RateLimiter) evictIdle() {
	for {
		time.Sleep(time.Minute)

		rl.mu.Lock()
		for key, a := range rl.accounts {
			if time.Since(a.lastSeen) > limiterIdleTTL {
				delete(rl.accounts, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	a, ok := rl.accounts[key]
	if !ok {
		a = &accountLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.accounts[key] = a
	}
	a.lastSeen = time.Now()
	return a.limiter
}

// Middleware returns a rate limiting middleware.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(OwnerIDHeader)
			if key == "" {
				key = r.RemoteAddr
			}

			if !rl.limiterFor(key).Allow() {
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, map[string]interface{}{
					"error":   ErrorCodeRateLimitExceeded,
					"message": ErrorMessageRateLimitExceeded,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
