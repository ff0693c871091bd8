// Package http exposes the ledger over a JSON API: dashboard aggregates,
// balances, settlement plans, movement listing and the write operations
// (create, edit, void).
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

	"github.com/LinFrancis/finanzas-app/internal/cache"
	"github.com/LinFrancis/finanzas-app/internal/core"
	"github.com/LinFrancis/finanzas-app/internal/services"
)

const readTimeout = 7 * time.Second

type Server struct {
	http.Server

	ledger    *services.LedgerService
	movements *services.MovementService

	rateLimiter *rateLimiter

	// Read-side caches. The whole table is small, so everything derives
	// from one cached load keyed by a constant.
	movementsCache *cache.LRUCache[[]core.Movement]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

const movementsCacheKey = "movements"

func NewServer(addr string, ledger *services.LedgerService, movements *services.MovementService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:         ledger,
		movements:      movements,
		rateLimiter:    newRateLimiter(60),
		movementsCache: cache.NewLRUCache[[]core.Movement](4, 1*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.movementsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/overview", s.withMiddleware(s.handleOverview))
	mux.HandleFunc("GET /api/balances", s.withMiddleware(s.handleBalances))
	mux.HandleFunc("GET /api/settlement", s.withMiddleware(s.handleSettlement))
	mux.HandleFunc("GET /api/movements", s.withMiddleware(s.handleListMovements))
	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleCategories))
	mux.HandleFunc("POST /api/movements", s.withMiddleware(s.handleCreateMovement))
	mux.HandleFunc("PUT /api/movements/{row}", s.withMiddleware(s.handleUpdateMovement))
	mux.HandleFunc("POST /api/movements/{row}/void", s.withMiddleware(s.handleVoidMovement))

	return s
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting and request logging.
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
		ctx := r.Context()

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Writes are the expensive path: each one hits the record store.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
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

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// loadMovements returns the normalized table, serving from cache when fresh.
func (s *Server) loadMovements(ctx context.Context) ([]core.Movement, error) {
	if items, found := s.movementsCache.Get(movementsCacheKey); found {
		result := make([]core.Movement, len(items))
		copy(result, items)
		return result, nil
	}

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()
	items, err := s.ledger.LoadMovements(cctx)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}
	s.movementsCache.Set(movementsCacheKey, items)
	return items, nil
}

func (s *Server) invalidateMovements() {
	s.movementsCache.Delete(movementsCacheKey)
}
