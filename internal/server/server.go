// Package server sets up the development backend: router, middleware and
// the composition of repositories, services and handlers.
//
// DEPENDENCY INJECTION FLOW:
// cmd/devserver reads the config and calls New, which creates:
//
//	sqlite.DB → services (account, category, post, interaction) → handlers
//
// The sqlite.DB implements every repository interface, so each service
// receives it once per repository it needs. Handlers only see services.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/auth"
	"github.com/fashionpolice/fashion-police/internal/handler"
	"github.com/fashionpolice/fashion-police/internal/middleware"
	sqliteRepo "github.com/fashionpolice/fashion-police/internal/repository/sqlite"
	"github.com/fashionpolice/fashion-police/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string // ":memory:" for a throwaway database
	JWTSecret string

	// PasswordIterations overrides the PBKDF2 work factor. Zero keeps the
	// production default; tests lower it.
	PasswordIterations int
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService
}

// New opens the database, wires the services and registers every route.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		tokens: tokens,
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// Every endpoint is a JSON POST on the path the client SDK calls. Deleting
// a comment or a post requires a bearer token. The write endpoints that
// name the acting user in the body accept an optional token; when one is
// sent, the handler rejects a body user that does not match it. Reads stay
// open.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID assigns an id, reusing the client's X-Request-ID
//  2. RealIP extracts the client IP from proxy headers
//  3. Recoverer turns panics into 500s
//  4. Logger logs each request with its id and timing
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()
	if s.config.PasswordIterations > 0 {
		passwords = auth.NewPasswordServiceForTest(s.config.PasswordIterations)
	}

	accounts := handler.NewAccountHandler(
		service.NewAccountService(s.db, s.db, s.db, s.tokens, passwords, s.logger),
		s.logger,
	)
	categories := handler.NewCategoryHandler(
		service.NewCategoryService(s.db, s.db, s.db, s.logger),
		s.logger,
	)
	posts := handler.NewPostHandler(
		service.NewPostService(s.db, s.db, s.db, s.db, s.db, s.db, s.logger),
		s.logger,
	)
	interactions := handler.NewInteractionHandler(
		service.NewInteractionService(s.db, s.db, s.db, s.db, s.db, s.logger),
		s.logger,
	)

	r := s.router
	r.Get("/healthz", s.handleHealth)

	r.Post(api.PathAuthenticate, accounts.HandleVerify)
	r.Post(api.PathProfile, accounts.HandleProfile)
	r.Post(api.PathUsernameCheck, accounts.HandleUsernameCheck)
	r.Post(api.PathEmailCheck, accounts.HandleEmailCheck)
	r.Post(api.PathRegister, accounts.HandleRegister)

	r.Post(api.PathCategories, categories.HandleCatalog)
	r.Post(api.PathMyCategories, categories.HandleMine)
	r.Post(api.PathCategoryFeed, categories.HandleFeed)

	r.Post(api.PathGetPost, posts.HandleGet)
	r.Post(api.PathPostDetail, posts.HandleDetail)
	r.Post(api.PathUserPosts, posts.HandleUserPosts)
	r.Post(api.PathFavoritePosts, posts.HandleFavoritePosts)

	r.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(s.tokens))
		r.Post(api.PathSubscribe, categories.HandleSubscribe)
		r.Post(api.PathCreatePost, posts.HandleCreate)
		r.Post(api.PathArticleAction, interactions.HandleArticleAction)
		r.Post(api.PathToggleFavorite, interactions.HandleToggleFavorite)
		r.Post(api.PathSubmitComment, interactions.HandleSubmitComment)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens))
		r.Post(api.PathDeleteComment, interactions.HandleDeleteComment)
		r.Post(api.PathDeletePost, posts.HandleDelete)
	})
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the database.
func (s *Server) Close() error { return s.db.Close() }

// Start serves until SIGINT or SIGTERM, then shuts down gracefully:
//  1. Stop accepting new connections
//  2. Wait up to 30s for in-flight requests
//  3. Close the database
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
