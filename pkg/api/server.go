// Package api serves the registry read/update endpoint over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/db"
	"github.com/jakechorley/gift-registry/pkg/ratelimit"
)

// Options configures the HTTP surface
type Options struct {
	AllowedOrigins     []string
	ClaimRatePerSecond float64
	ClaimBurst         int
}

// Server exposes a GiftStore as GET/PATCH /api/sheets
type Server struct {
	store    db.GiftStore
	logger   *zap.Logger
	limiter  *ratelimit.KeyedRateLimiter
	validate *validator.Validate
	origins  []string
}

// NewServer creates a server over store
func NewServer(store db.GiftStore, opts Options, logger *zap.Logger) *Server {
	s := &Server{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		origins:  opts.AllowedOrigins,
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	if opts.ClaimRatePerSecond > 0 {
		s.limiter = ratelimit.New(opts.ClaimRatePerSecond, max(opts.ClaimBurst, 1))
	}
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/sheets", func(r chi.Router) {
		r.Get("/", s.handleListGifts)
		r.With(s.rateLimit).Patch("/", s.handleUpdateGift)
	})

	return r
}

// requestLogger logs each request once it completes
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
