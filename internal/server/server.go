// Package server provides the HTTP API for destek.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/destek-ai/destek/internal/chat"
	"github.com/destek-ai/destek/internal/config"
	"github.com/destek-ai/destek/internal/keyword"
	"github.com/destek-ai/destek/internal/resources"
	"github.com/destek-ai/destek/internal/storage"
)

// Server is the HTTP server for the destek API.
type Server struct {
	responder *chat.Responder
	storage   storage.Storage
	keyword   keyword.KeywordIndex
	provider  *resources.Provider
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. The keyword index
// may be nil; its endpoint then reports unavailable.
func NewServer(
	responder *chat.Responder,
	store storage.Storage,
	kw keyword.KeywordIndex,
	provider *resources.Provider,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		responder: responder,
		storage:   store,
		keyword:   kw,
		provider:  provider,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/auth/register", s.handleRegister)
	r.Post("/api/v1/auth/login", s.handleLogin)
	r.Post("/api/v1/sessions", s.handleCreateSession)
	r.Get("/api/v1/sessions", s.handleListSessions)
	r.Get("/api/v1/sessions/{id}/messages", s.handleSessionMessages)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/sources/search", s.handleSourceSearch)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
