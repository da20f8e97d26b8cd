// Package server provides the HTTP API for Harmonia.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/harmonia-chat/harmonia/internal/catalog"
	"github.com/harmonia-chat/harmonia/internal/chat"
	"github.com/harmonia-chat/harmonia/internal/config"
	"github.com/harmonia-chat/harmonia/internal/favorites"
	"github.com/harmonia-chat/harmonia/internal/recommend"
)

// Server is the HTTP server for the Harmonia API.
type Server struct {
	pipeline    *chat.Pipeline
	catalog     *catalog.Catalog
	store       *favorites.Store
	recommender *recommend.Recommender
	config      *config.ServerConfig
	logger      *zap.Logger
	server      *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	pipeline *chat.Pipeline,
	cat *catalog.Catalog,
	store *favorites.Store,
	recommender *recommend.Recommender,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline:    pipeline,
		catalog:     cat,
		store:       store,
		recommender: recommender,
		config:      cfg,
		logger:      logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/chat", s.handleChat)

	r.Get("/api/v1/songs", s.handleListSongs)
	r.Get("/api/v1/songs/{title}", s.handleGetSong)

	r.Get("/api/v1/favorites/{userID}", s.handleListFavorites)
	r.Get("/api/v1/favorites/{userID}/count", s.handleCountFavorites)
	r.Post("/api/v1/favorites/{userID}", s.handleAddFavorite)
	r.Delete("/api/v1/favorites/{userID}/{title}", s.handleRemoveFavorite)
	r.Delete("/api/v1/favorites/{userID}", s.handleClearFavorites)

	r.Get("/api/v1/recommendations/mood/{mood}", s.handleMoodRecommendations)
	r.Get("/api/v1/recommendations/user/{userID}", s.handleUserRecommendations)
	r.Get("/api/v1/preferences/{userID}", s.handlePreferences)

	r.Get("/api/v1/analytics/session", s.handleSessionAnalytics)
	r.Get("/api/v1/analytics/evaluations", s.handleEvaluationReport)
	r.Post("/api/v1/traces/export", s.handleExportTraces)

	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
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
