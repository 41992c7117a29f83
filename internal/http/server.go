// Package http exposes the JSON API: auth, collections, transactions,
// dashboards, history, settings and the change-event WebSocket.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Selvaganesh007/expense-tracker/internal/auth"
	"github.com/Selvaganesh007/expense-tracker/internal/log"
	"github.com/Selvaganesh007/expense-tracker/internal/middleware/ratelimit"
	"github.com/Selvaganesh007/expense-tracker/internal/middleware/security"
	"github.com/Selvaganesh007/expense-tracker/internal/middleware/trace"
	"github.com/Selvaganesh007/expense-tracker/internal/services"
	"github.com/Selvaganesh007/expense-tracker/internal/ws"
)

type Server struct {
	http.Server

	auth        *auth.Service
	tx          *services.TransactionService
	collections *services.CollectionService
	dashboard   *services.DashboardService
	balances    *services.BalanceResolver
	history     *services.HistoryMerger
	settings    *services.SettingsService
	hub         *ws.Hub

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
	logger   *log.Logger

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Deps carries everything the server needs; nil hub disables the socket.
type Deps struct {
	Auth        *auth.Service
	Tx          *services.TransactionService
	Collections *services.CollectionService
	Dashboard   *services.DashboardService
	Balances    *services.BalanceResolver
	History     *services.HistoryMerger
	Settings    *services.SettingsService
	Hub         *ws.Hub
	Logger      *log.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           nil, // set below, after middleware wrapping
			ReadHeaderTimeout: 10 * time.Second,
		},
		auth:             deps.Auth,
		tx:               deps.Tx,
		collections:      deps.Collections,
		dashboard:        deps.Dashboard,
		balances:         deps.Balances,
		history:          deps.History,
		settings:         deps.Settings,
		hub:              deps.Hub,
		limiter:          ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:         security.NewDetector(),
		logger:           deps.Logger.WithComponent(log.ComponentHTTP),
		stopCacheCleanup: make(chan struct{}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/auth/sign-up", s.handleSignUp)
	mux.HandleFunc("POST /api/auth/sign-in", s.handleSignIn)
	mux.HandleFunc("POST /api/auth/sign-out", s.requireAuth(s.handleSignOut))
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("GET /api/collections", s.requireAuth(s.handleListCollections))
	mux.HandleFunc("POST /api/collections", s.requireAuth(s.handleCreateCollection))
	mux.HandleFunc("PUT /api/collections/{id}", s.requireAuth(s.handleRenameCollection))
	mux.HandleFunc("DELETE /api/collections/{id}", s.requireAuth(s.handleDeleteCollection))

	mux.HandleFunc("GET /api/collections/{id}/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("POST /api/collections/{id}/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/collections/{id}/dashboard", s.requireAuth(s.handleDashboard))

	mux.HandleFunc("GET /api/transactions/{id}", s.requireAuth(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireAuth(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/history", s.requireAuth(s.handleHistory))

	mux.HandleFunc("GET /api/settings", s.requireAuth(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.requireAuth(s.handleUpdateSettings))

	if s.hub != nil {
		mux.HandleFunc("GET /api/events", s.handleEvents)
	}

	// Middleware order: trace logs everything, headers apply to everything,
	// the limiter only gates mutating requests (applied per-handler below).
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server.Handler = s.tracer.Middleware(headers.Middleware(s.withRateLimit(mux)))

	go s.startCacheCleanup()

	return s
}

// withRateLimit gates mutating methods; reads are unlimited.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			clientIP := s.detector.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					log.FieldClientIP, clientIP,
					log.FieldMethod, r.Method,
					log.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate_limited",
					"Too many requests, slow down.")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// startCacheCleanup periodically sweeps expired dashboard cache entries.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.dashboard != nil {
				if n := s.dashboard.CleanExpired(); n > 0 {
					s.logger.Debug("Cache cleanup completed", "entries_removed", n)
				}
			}
			if s.auth != nil {
				s.auth.SweepExpired(context.Background())
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the background loops and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.limiter.Stop()
		if s.hub != nil {
			s.hub.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	// The store is exercised lazily; a server that came up is ready.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()
	sm := s.detector.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"total_requests":           tm.TotalRequests,
		"average_response_time_us": tm.AverageResponseTime,
		"rate_limited_clients":     rm.ClientCount,
		"rate_limited_rejections":  rm.RejectedRequests,
		"suspicious_requests":      sm.SuspiciousRequests,
	})
}
