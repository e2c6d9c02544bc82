// Package http exposes the transaction store, report generator and budget
// evaluator as a JSON API. Presentation is left entirely to clients; every
// handler speaks JSON.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"tally/internal/budget"
	"tally/internal/cache"
	"tally/internal/category"
	"tally/internal/core"
	"tally/internal/middleware/trace"
	"tally/internal/store"
)

// Publisher mirrors the events client's publish side so the server can run
// without a broker.
type Publisher interface {
	PublishTransactionChanged(ctx context.Context, id, op string) error
}

// Options carries the server's collaborators. Publisher may be nil; change
// events are then skipped. Alerts may be nil; the alerts endpoint then
// returns an empty list.
type Options struct {
	Store     store.Store
	Notifier  store.Notifier
	Registry  *category.Registry
	Evaluator *budget.Evaluator
	Budget    budget.Config
	Alerts    *budget.History
	Publisher Publisher
	CacheSize int
	CacheTTL  time.Duration
}

type Server struct {
	http.Server

	store     store.Store
	registry  *category.Registry
	evaluator *budget.Evaluator
	alerts    *budget.History
	publisher Publisher

	budgetMu  sync.RWMutex
	budgetCfg budget.Config

	rateLimiter *rateLimiter
	tracer      *trace.Middleware
	metrics     *securityMetrics

	// One cached report per window kind, purged on any store change.
	reportCache *cache.LRU[core.Report]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, opts Options) *Server {
	if opts.CacheSize < 1 {
		opts.CacheSize = 16
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:            opts.Store,
		registry:         opts.Registry,
		evaluator:        opts.Evaluator,
		alerts:           opts.Alerts,
		publisher:        opts.Publisher,
		budgetCfg:        opts.Budget,
		rateLimiter:      newRateLimiter(),
		tracer:           trace.NewMiddleware(extractClientIP),
		metrics:          &securityMetrics{},
		reportCache:      cache.NewLRU[core.Report](opts.CacheSize, opts.CacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}
	s.Server.Handler = s.tracer.Middleware(mux)

	// Every mutation invalidates all cached reports: any window may overlap
	// the changed transaction.
	if opts.Notifier != nil {
		opts.Notifier.OnChange(func() {
			s.reportCache.Purge()
		})
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/transactions", s.withSecurity(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withSecurity(s.handleTransactionByID))
	mux.HandleFunc("/api/report", s.withSecurity(s.handleReport))
	mux.HandleFunc("/api/categories", s.withSecurity(s.handleCategories))
	mux.HandleFunc("/api/budget", s.withSecurity(s.handleBudget))
	mux.HandleFunc("/api/alerts", s.withSecurity(s.handleAlerts))

	return s
}

// withSecurity adds security headers and rate-limits mutating requests.
func (s *Server) withSecurity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		mutating := r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete
		if mutating && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		next(w, r)
	}
}

// startCacheCleanup drops expired report entries periodically.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.reportCache.CleanExpired(); n > 0 {
				slog.Debug("Report cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Snapshot(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics exposes plain-text counters for scraping.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "last_request_duration_ms %d\n", m.LastDurationMS)
	fmt.Fprintf(w, "rate_limit_hits_total %d\n", atomic.LoadInt64(&s.metrics.rateLimitHits))
	fmt.Fprintf(w, "report_cache_entries %d\n", s.reportCache.Size())
}

// budgetConfig returns the current budget configuration snapshot.
func (s *Server) budgetConfig() budget.Config {
	s.budgetMu.RLock()
	defer s.budgetMu.RUnlock()
	return s.budgetCfg
}

// afterMutation publishes the change event and re-checks the budget. Both
// are best-effort: a broker or evaluation failure never fails the request
// that triggered them.
func (s *Server) afterMutation(ctx context.Context, id, op string) {
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionChanged(ctx, id, op); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction change",
				"id", id,
				"op", op,
				"error", err)
		}
	}

	if s.evaluator != nil && op != OpDelete {
		cfg := s.budgetConfig()
		go func() {
			if _, err := s.evaluator.Evaluate(context.Background(), cfg); err != nil {
				slog.Error("Budget evaluation after mutation failed", "error", err)
			}
		}()
	}
}
