package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"financeviz/internal/log"
	"financeviz/internal/middleware/ratelimit"
	"financeviz/internal/middleware/security"
	"financeviz/internal/middleware/trace"
	"financeviz/internal/services"
)

// Explorer builds the element views served by the API.
type Explorer interface {
	Years(ctx context.Context) ([]int, error)
	ElementView(ctx context.Context, id string, year int) (*services.ElementView, error)
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	explorer    Explorer
	checks      map[string]ReadinessCheck
	rateLimiter *ratelimit.Limiter
	clientIP    *security.ClientIPExtractor
	logger      *log.Logger
	started     time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithReadinessCheck adds a dependency to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) {
		if check != nil {
			s.checks[name] = check
		}
	}
}

// WithRateLimit sets the per-client limit of the API routes.
func WithRateLimit(config ratelimit.Config) Option {
	return func(s *Server) {
		s.rateLimiter = ratelimit.NewLimiter(config)
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger.WithComponent(log.ComponentHTTP)
		}
	}
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, explorer Explorer, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		explorer: explorer,
		checks:   make(map[string]ReadinessCheck),
		clientIP: security.NewClientIPExtractor(),
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())
	}

	api := s.rateLimiter.Middleware(s.clientIP.ClientIP, s.handleRateLimited)

	mux := http.NewServeMux()
	mux.Handle("GET /api/finance-details/{id}", api(http.HandlerFunc(s.handleFinanceDetails)))
	mux.Handle("GET /api/years", api(http.HandlerFunc(s.handleYears)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = headers.Middleware(mux)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(s.logger)(handler)
	handler = trace.NewMiddleware(s.logger, s.clientIP.ClientIP).Middleware(handler)
	s.Handler = handler

	return s
}
