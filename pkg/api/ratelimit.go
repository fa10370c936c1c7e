package api

import (
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/errors"
)

// rateLimit throttles claims per client IP. RealIP has already resolved
// forwarded headers into RemoteAddr.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := clientIP(r)
		if !s.limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				zap.String("ip", key),
				zap.String("path", r.URL.Path),
			)
			writeError(w, errors.New(errors.CodeRateLimited, "Too many requests. Please try again later."), s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr when present
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
