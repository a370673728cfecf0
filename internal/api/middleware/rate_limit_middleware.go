package middleware

import (
	"net"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
)

// RateLimitMiddleware 以 client ip 為 key, 需放在 chi RealIP 之後
func RateLimitMiddleware(limiter ratelimit.ILimiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow(r.Context(), clientIP(r)) {
				m.IncRateLimited()
				w.Header().Set("Retry-After", "1")
				response.ErrorJSON(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
