package server

import (
	"context"
	"net/http"
	"time"

	"github.com/comigor/lifelink-go/internal/auth"
	"github.com/comigor/lifelink-go/internal/history"
	"github.com/comigor/lifelink-go/internal/intake"
	"github.com/comigor/lifelink-go/internal/journal"
	"github.com/comigor/lifelink-go/internal/lifecycle"
	"github.com/comigor/lifelink-go/internal/logger"
	"github.com/comigor/lifelink-go/internal/sanitize"
)

const defaultMaxBodyBytes = 1 << 20

// Options wires a Server. Store and Intake are required.
type Options struct {
	Store     *history.Store
	Intake    *intake.Service
	Guard     auth.Guard
	Journal   journal.Sink
	Lifecycle *lifecycle.Machine

	MaxBodyBytes  int64
	RatePerMinute int // 0 disables intake rate limiting
	RateBurst     int

	Now func() time.Time
}

// Server serves the lifelink routes.
type Server struct {
	store     *history.Store
	intake    *intake.Service
	guard     auth.Guard
	journal   journal.Sink
	lifecycle *lifecycle.Machine
	limiter   *rateLimiter
	maxBody   int64
	now       func() time.Time
}

// New builds a Server. Background work (rate limiter cleanup) stops when ctx
// is done.
func New(ctx context.Context, opts Options) *Server {
	s := &Server{
		store:     opts.Store,
		intake:    opts.Intake,
		guard:     opts.Guard,
		journal:   opts.Journal,
		lifecycle: opts.Lifecycle,
		maxBody:   opts.MaxBodyBytes,
		now:       opts.Now,
	}
	if s.journal == nil {
		s.journal = journal.Discard{}
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBodyBytes
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.RatePerMinute > 0 {
		s.limiter = newRateLimiter(opts.RatePerMinute, opts.RateBurst)
		go s.limiter.sweep(ctx, time.Minute, 5*time.Minute)
	}
	return s
}

// Handler returns the routed handler with recovery and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.health)
	mux.Handle("POST /message", s.limit(http.HandlerFunc(s.postMessage)))
	mux.Handle("GET /read_messages", s.guard.Require(http.HandlerFunc(s.readMessages)))
	mux.Handle("POST /clear_messages", s.guard.Require(http.HandlerFunc(s.clearMessages)))
	mux.HandleFunc("/", s.notFound)

	return s.recoverer(s.logRequests(mux))
}

// recoverer turns a panic into a generic 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.L.Error("handler panic",
					"path", sanitize.Sanitize(r.URL.Path),
					"panic", sanitize.Sanitize(rec))
				writeJSON(w, http.StatusInternalServerError, statusBody{
					Status:  "error",
					Message: "Internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.L.Debug("request",
			"method", r.Method,
			"path", sanitize.Sanitize(r.URL.Path),
			"status", rec.status,
			"ip", sanitize.Sanitize(clientIP(r)),
			"duration", time.Since(start))
	})
}
