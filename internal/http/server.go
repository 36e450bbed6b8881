// Package http is the JSON API server. All record access is scoped to the
// authenticated user; dashboard state is recomputed server-side and pushed
// over SSE.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"dompet/internal/auth"
	"dompet/internal/cache"
	"dompet/internal/log"
	"dompet/internal/records"
	"dompet/internal/services"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
)

type Server struct {
	http.Server

	auth         *auth.Service
	transactions *services.TransactionService
	reminders    *services.ReminderService
	store        records.Store

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// Per-user dashboard cache, invalidated on every mutation.
	overviewCache *cache.LRUCache[services.Overview]
	cacheManager  *cache.Manager

	logger     *log.Logger
	structured *log.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store records.Store, authSvc *auth.Service, tx *services.TransactionService, rem *services.ReminderService, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		auth:          authSvc,
		transactions:  tx,
		reminders:     rem,
		store:         store,
		rateLimiter:   newRateLimiter(),
		metrics:       &securityMetrics{},
		overviewCache: cache.NewLRUCache[services.Overview](500, time.Minute),
		cacheManager:  cache.NewManager(),
		logger:        logger.WithComponent(log.ComponentHTTP),
	}
	s.structured = log.NewStructuredLogger(s.logger)

	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.wrap(s.handleLogin))

	mux.HandleFunc("GET /api/transactions", s.wrap(s.requireUser(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.requireUser(s.handleCreateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.requireUser(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/reminders", s.wrap(s.requireUser(s.handleListReminders)))
	mux.HandleFunc("POST /api/reminders", s.wrap(s.requireUser(s.handleCreateReminder)))
	mux.HandleFunc("DELETE /api/reminders/{id}", s.wrap(s.requireUser(s.handleDeleteReminder)))

	mux.HandleFunc("GET /api/overview", s.wrap(s.requireUser(s.handleOverview)))
	mux.HandleFunc("GET /api/events", s.wrap(s.requireUser(s.handleEvents)))

	return s
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// wrap adds request ids, security headers, rate limiting on mutations, and
// request logging.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r, s.metrics)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.structured.LogHTTPStart(ctx, r, clientIP)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

func isMutation(method string) bool {
	return method == http.MethodPost || method == http.MethodDelete || method == http.MethodPut
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush passes through so SSE responses can stream through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store is the only hard dependency; a failing read means not ready.
	if _, err := s.store.ListTransactions(r.Context(), "readiness-probe"); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
