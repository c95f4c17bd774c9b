package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"signaldesk/internal/cache"
	"signaldesk/internal/collection"
	applog "signaldesk/internal/log"
	"signaldesk/internal/middleware/ratelimit"
	"signaldesk/internal/middleware/security"
	"signaldesk/internal/middleware/trace"
	"signaldesk/internal/services"
)

// Options tune the server's middleware.
type Options struct {
	AuthRequired       bool
	RateLimitPerMinute int
	ActivityLimit      int
	CacheCleanup       time.Duration
	CORS               security.CORSConfig
}

func DefaultOptions() Options {
	return Options{
		RateLimitPerMinute: ratelimit.DefaultConfig().RequestsPerMinute,
		ActivityLimit:      services.DefaultActivityLimit,
		CacheCleanup:       time.Minute,
		CORS:               security.DefaultCORSConfig(),
	}
}

type Server struct {
	http.Server

	app     *services.App
	opts    Options
	mux     *http.ServeMux
	logger  *applog.Logger
	started time.Time

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	caches      *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, app *services.App, opts Options, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		app:      app,
		opts:     opts,
		mux:      http.NewServeMux(),
		logger:   logger,
		started:  time.Now(),
		detector: security.NewDetector(),
		caches:   cache.NewManager(logger),
	}

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.caches.Register(app.Dashboard.Cache())
	if opts.CacheCleanup > 0 {
		s.caches.StartCleanup(opts.CacheCleanup)
	}

	s.routes()

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(s.mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)

	mountCollection(s, s.app.Users, personView)
	mountCollection(s, s.app.Accounts, newAccountView)
	mountCollection(s, s.app.Sources, sourceView)
	mountCollection(s, s.app.Transactions, newTransactionView)

	s.handle("GET /api/"+collection.KindTransactions+"/summary", s.handleTransactionSummary)
	s.handle("GET /api/dashboard", s.handleDashboard)
	s.handle("GET /api/activity", s.handleActivity)

	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusNotFound, CodeNotFound, "no route for "+r.Method+" "+r.URL.Path).Write(w)
	})
}

// handle registers an API route, behind authentication when required.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	var handler http.Handler = h
	if s.opts.AuthRequired {
		handler = s.requireAuth(handler)
	}
	s.mux.Handle(pattern, handler)
}

// middleware wraps h, outermost first: tracing, context logger, security
// headers, probe detection, CORS, rate limiting.
func (s *Server) middleware(h http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		s.tracer.Middleware,
		applog.Middleware(s.logger),
		applog.RequestIDMiddleware(trace.RequestIDFromRequest),
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.detector.Middleware(s.logger),
		security.CORS(s.opts.CORS),
		s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later").Write(w)
		}),
	}
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
