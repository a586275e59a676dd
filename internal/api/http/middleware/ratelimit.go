package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"mip-notes/internal/logger"
)

// RateLimit ограничивает количество запросов (rate limiting)
// rps - запросов в секунду, burst - разрешает кратковременные всплески
func RateLimit(log *logger.Logger, rps int, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		rps = 100
	}
	if burst <= 0 {
		burst = 10
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithField("path", r.URL.Path).Warn("rate limit exceeded")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
