// Package api exposes the paper-trading engine over HTTP. It is a host
// surface: the core has no wire protocol of its own, so this layer owns JSON
// binding, status mapping, and per-account write serialization.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Zee-create-614/papertrader/engine"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	engine *engine.Engine
	logger *zap.Logger
	router *mux.Router
	http   *http.Server

	// The engine supports a single writer per account; the API serializes
	// mutating requests with one mutex per account id.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewServer(addr string, eng *engine.Engine, logger *zap.Logger) *Server {
	s := &Server{
		engine: eng,
		logger: logger,
		router: mux.NewRouter(),
		locks:  make(map[string]*sync.Mutex),
	}

	s.routes()
	s.router.Use(s.logging)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	s.router.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{id}/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/accounts/{id}/valuation", s.handleValuation).Methods(http.MethodGet)

	s.router.HandleFunc("/accounts/{id}/trades", s.handleOpenTrade).Methods(http.MethodPost)
	s.router.HandleFunc("/accounts/{id}/trades/{tradeID}/close", s.handleCloseTrade).Methods(http.MethodPost)
	s.router.HandleFunc("/accounts/{id}/trades/{tradeID}/expire", s.handleExpireTrade).Methods(http.MethodPost)
	s.router.HandleFunc("/accounts/{id}/trades/{tradeID}", s.handleDeleteTrade).Methods(http.MethodDelete)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// accountLock returns the mutex for the given account id, creating it on
// first use.
func (s *Server) accountLock(accountID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

// logging records every request with method, path, status and duration.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
