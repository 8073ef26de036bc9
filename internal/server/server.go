package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fitstack/apiserver/config"
	"github.com/fitstack/apiserver/internal/audit"
	"github.com/fitstack/apiserver/internal/db"
	"github.com/fitstack/apiserver/internal/handlers"
	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/storage"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/internal/token"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	logger     *slog.Logger
}

// New constructs a Server with all dependencies wired from config.
// The token secret and TTL live on the issuer built here; nothing else
// reads them.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	workoutRepo := store.NewWorkoutRepository(dbConn)
	nutritionRepo := store.NewNutritionRepository(dbConn)
	progressRepo := store.NewProgressRepository(dbConn)

	userService := services.NewUserService(userRepo)
	workoutService := services.NewWorkoutService(workoutRepo)
	nutritionService := services.NewNutritionService(nutritionRepo)
	progressService := services.NewProgressService(progressRepo)

	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMiddleware := handlers.RequireAuth(issuer)
	auditStore := audit.NewStore(dbConn)

	avatars, err := newAvatarStore(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var wingmanService *services.WingmanService
	if strings.TrimSpace(cfg.Gemini.APIKey) != "" {
		generator, err := services.NewGeminiGenerator(ctx, cfg.Gemini)
		if err != nil {
			_ = dbConn.Close()
			return nil, err
		}
		wingmanService = services.NewWingmanService(generator)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, handlers.NewAuthHandler(userService, issuer, auditStore, logger))
	})
	router.Route("/profile", func(r chi.Router) {
		handlers.ProfileRouter(r, handlers.NewProfileHandler(userService, avatars, logger), authMiddleware)
	})
	router.Route("/workouts", func(r chi.Router) {
		handlers.WorkoutRouter(r, handlers.NewWorkoutHandler(workoutService, logger), authMiddleware)
	})
	router.Route("/nutrition", func(r chi.Router) {
		handlers.NutritionRouter(r, handlers.NewNutritionHandler(nutritionService, logger), authMiddleware)
	})
	router.Route("/progress", func(r chi.Router) {
		handlers.ProgressRouter(r, handlers.NewProgressHandler(progressService, logger), authMiddleware)
	})
	router.Route("/wingman", func(r chi.Router) {
		handlers.WingmanRouter(r, handlers.NewWingmanHandler(wingmanService, logger), authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		logger:     logger,
	}, nil
}

func newAvatarStore(ctx context.Context, cfg config.StorageConfig) (*storage.AvatarStore, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case config.StorageBackendMinio:
		backend, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		avatars := storage.NewAvatarStore(backend)
		if err := avatars.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return avatars, nil
	case config.StorageBackendGCS:
		backend, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		avatars := storage.NewAvatarStore(backend)
		if err := avatars.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return avatars, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
