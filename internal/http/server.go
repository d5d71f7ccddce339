// Package http exposes the JSON API consumed by the web and mobile clients.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

type Server struct {
	http.Server
	store    *storage.SQLiteRepository
	txs      *services.TransactionService
	sessions *session.Manager
	validate *validator.Validate

	rateLimiter *rateLimiter

	// Per-user transaction snapshots backing the dashboard endpoints,
	// invalidated on every write.
	txCache *cache.LRU[[]core.Transaction]

	stopSweep    chan struct{}
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store *storage.SQLiteRepository, txs *services.TransactionService, sessions *session.Manager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		txs:         txs,
		sessions:    sessions,
		validate:    validator.New(),
		rateLimiter: newRateLimiter(),
		txCache:     cache.NewLRU[[]core.Transaction](200, 30*time.Second),
		stopSweep:   make(chan struct{}),
	}

	go s.sweepCaches()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/login", s.withMiddleware(s.handleLogin))

	mux.HandleFunc("GET /api/transactions", s.withAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.withAuth(s.handleGetTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withAuth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/goals", s.withAuth(s.handleListGoals))
	mux.HandleFunc("POST /api/goals", s.withAuth(s.handleCreateGoal))
	mux.HandleFunc("GET /api/goals/{id}", s.withAuth(s.handleGetGoal))
	mux.HandleFunc("PUT /api/goals/{id}", s.withAuth(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /api/goals/{id}", s.withAuth(s.handleDeleteGoal))

	mux.HandleFunc("GET /api/settings", s.withAuth(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.withAuth(s.handleUpdateSettings))

	mux.HandleFunc("GET /api/categories", s.withAuth(s.handleListCategories))

	mux.HandleFunc("GET /api/dashboard/summary", s.withAuth(s.handleDashboardSummary))
	mux.HandleFunc("GET /api/dashboard/breakdown", s.withAuth(s.handleDashboardBreakdown))
	mux.HandleFunc("GET /api/dashboard/trend", s.withAuth(s.handleDashboardTrend))
	mux.HandleFunc("GET /api/dashboard/top-categories", s.withAuth(s.handleDashboardTopCategories))
	mux.HandleFunc("GET /api/dashboard/health", s.withAuth(s.handleDashboardHealth))

	return s
}

// withMiddleware adds security headers, request IDs, rate limiting on
// mutating methods, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			newResponse().status(http.StatusTooManyRequests).
				errorBody("rate limit exceeded, try again later").write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// withAuth resolves the bearer token into a session and stores it in the
// request context; unauthenticated requests get 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			newResponse().status(http.StatusUnauthorized).
				errorBody("missing bearer token").write(w)
			return
		}
		sess, err := s.sessions.Verify(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Session verification failed", "error", err)
			newResponse().status(http.StatusUnauthorized).
				errorBody("invalid or expired session").write(w)
			return
		}
		next(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// Readiness means storage answers.
	if err := s.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("storage unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// loadTransactions serves dashboard reads through the per-user cache.
func (s *Server) loadTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	if txs, ok := s.txCache.Get(userID); ok {
		out := make([]core.Transaction, len(txs))
		copy(out, txs)
		return out, nil
	}
	txs, err := s.txs.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.txCache.Set(userID, txs)
	return txs, nil
}

func (s *Server) invalidateUser(userID string) {
	s.txCache.Delete(userID)
}

func (s *Server) sweepCaches() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.txCache.Sweep(); n > 0 {
				slog.Debug("Cache sweep completed", "entries_removed", n)
			}
		case <-s.stopSweep:
			return
		}
	}
}

// Shutdown stops background goroutines then the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopSweep)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
