package chi

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewLimiter creates a token bucket refilling perMinute tokens per minute
// with a burst of perMinute.
func NewLimiter(perMinute int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

// RateLimitMiddleware rejects requests beyond perMinute with 429.
// Health and metrics are never limited. perMinute <= 0 disables limiting.
func RateLimitMiddleware(perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if perMinute <= 0 {
			return next
		}
		limiter := NewLimiter(perMinute)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, codeRateLimited, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
