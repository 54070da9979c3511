package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const maxTrackedSubjects = 10000

// RateLimiter holds one token bucket per caller.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per caller with the given burst.
// A non-positive perMinute returns nil, which disables limiting.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

// Allow reports whether the caller identified by key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil {
		return true
	}
	return rl.limiter(key).Allow()
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		if len(rl.limiters) >= maxTrackedSubjects {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// RateLimit is middleware that limits requests per token subject. It runs after
// RequireAuth; without claims the remote address is used.
func (s *Server) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			key = "sub:" + claims.Subject
		}
		if !s.limiter.Allow(key) {
			log.Warn().Str("path", r.URL.Path).Msg("Rate limit exceeded")
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, "rate_limited", "too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
