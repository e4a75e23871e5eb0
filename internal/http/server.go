// Package http serves the JSON API. Every request is scoped to a
// ledger through the X-Ledger-ID header; the identity layer that would
// normally resolve it lives outside this service.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/naansa-naufalsaputra/duasaku-app/internal/advisor"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/core"
	"github.com/naansa-naufalsaputra/duasaku-app/internal/ledger"
	applog "github.com/naansa-naufalsaputra/duasaku-app/internal/log"
)

const ledgerHeader = "X-Ledger-ID"

type Server struct {
	http.Server
	svc         *ledger.Service
	advisor     *advisor.Advisor
	rateLimiter *rateLimiter

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 60 requests per minute
	client.requests++
	client.lastRequest = now

	return client.requests <= 60
}

// NewServer configures routes, returning a ready-to-run http.Server.
// The advisor may be nil; its endpoints then answer 503.
func NewServer(addr string, svc *ledger.Service, adv *advisor.Advisor) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:         svc,
		advisor:     adv,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.withMiddleware(s.handleEditTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))
	mux.HandleFunc("POST /transactions/parse", s.withMiddleware(s.handleParse))
	mux.HandleFunc("POST /transactions/quick", s.withMiddleware(s.handleQuickAdd))

	mux.HandleFunc("GET /wallets", s.withMiddleware(s.handleListWallets))
	mux.HandleFunc("POST /wallets", s.withMiddleware(s.handleCreateWallet))
	mux.HandleFunc("POST /wallets/withdraw", s.withMiddleware(s.handleWithdrawCash))

	mux.HandleFunc("GET /budgets", s.withMiddleware(s.handleListBudgets))
	mux.HandleFunc("POST /budgets", s.withMiddleware(s.handleSetBudget))
	mux.HandleFunc("DELETE /budgets/{category}", s.withMiddleware(s.handleDeleteBudget))

	mux.HandleFunc("GET /goals", s.withMiddleware(s.handleListGoals))
	mux.HandleFunc("POST /goals", s.withMiddleware(s.handleCreateGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.withMiddleware(s.handleDeleteGoal))
	mux.HandleFunc("POST /goals/{id}/savings", s.withMiddleware(s.handleAddSavings))

	mux.HandleFunc("GET /subscriptions", s.withMiddleware(s.handleListSubscriptions))
	mux.HandleFunc("POST /subscriptions", s.withMiddleware(s.handleCreateSubscription))
	mux.HandleFunc("DELETE /subscriptions/{id}", s.withMiddleware(s.handleDeleteSubscription))
	mux.HandleFunc("GET /subscriptions/detect", s.withMiddleware(s.handleDetectSubscriptions))

	mux.HandleFunc("GET /dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("POST /ledger/reset", s.withMiddleware(s.handleResetLedger))

	mux.HandleFunc("POST /profiles", s.withMiddleware(s.handleGetOrCreateProfile))
	mux.HandleFunc("POST /invitations", s.withMiddleware(s.handleInvitePartner))
	mux.HandleFunc("POST /invitations/{id}/accept", s.withMiddleware(s.handleAcceptInvitation))
	mux.HandleFunc("POST /invitations/{id}/decline", s.withMiddleware(s.handleDeclineInvitation))

	mux.HandleFunc("POST /advisor/chat", s.withMiddleware(s.handleAdvisorChat))
	mux.HandleFunc("POST /advisor/scan", s.withMiddleware(s.handleAdvisorScan))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request
// logging. Mutating methods are rate limited per client IP.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
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

		fields := applog.NewFields().
			WithComponent(applog.ComponentHTTP).
			WithRequestID(requestID).
			WithClientIP(clientIP).
			WithHTTPRequest(r.Method, r.URL.Path)
		slog.InfoContext(ctx, "Request started", fields.ToSlice()...)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", fields.ToSlice()...)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		fields = fields.WithHTTPResponse(rw.statusCode, duration.Milliseconds())
		slog.InfoContext(ctx, "Request completed", fields.ToSlice()...)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
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

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInsufficientFunds),
		errors.Is(err, core.ErrDuplicateSubscription):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrSameWallet),
		errors.Is(err, core.ErrUnknownWallet),
		errors.Is(err, core.ErrInvalidDueDay),
		errors.Is(err, core.ErrEmptyTitle):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
