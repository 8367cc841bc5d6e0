// Package api provides the HTTP API server and handlers for the HabitLoop application.
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/habitloop/habitloop-server/internal/service"
	"github.com/habitloop/habitloop-server/internal/sse"
	"github.com/habitloop/habitloop-server/internal/store"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth        *service.AuthService
	User        *service.UserService
	Habit       *service.HabitService
	Points      *service.PointsService
	Challenge   *service.ChallengeService
	Leaderboard *service.LeaderboardService
	Insights    *service.InsightsService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *store.Store
	services        *Services
	router          *chi.Mux
	api             huma.API
	sseManager      *sse.Manager
	sseHandler      *sse.Handler
	authRateLimiter *RateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, sseManager *sse.Manager, logger *slog.Logger) *Server {
	s := &Server{
		store:           st,
		services:        services,
		router:          chi.NewRouter(),
		sseManager:      sseManager,
		sseHandler:      sse.NewHandler(sseManager, logger, UserIDFromContext),
		authRateLimiter: NewRateLimiter(20, time.Minute, 10),
		logger:          logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("HabitLoop API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerHabitRoutes()
	s.registerPointsRoutes()
	s.registerChallengeRoutes()
	s.registerLeaderboardRoutes()
	s.registerInsightsRoutes()

	// SSE sits outside huma: it streams instead of returning one body.
	s.router.Get("/api/v1/events/stream", s.sseHandler.ServeHTTP)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))

	// Credential endpoints get a tighter per-IP rate limit than the
	// rest of the API.
	authLimited := RateLimitMiddleware(s.authRateLimiter, s.logger)
	s.router.Use(func(next http.Handler) http.Handler {
		limited := authLimited(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/v1/auth/") {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
}
