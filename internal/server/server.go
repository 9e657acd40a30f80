// Package server contains the HTTP handlers for the DraftDesk API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"draftdesk/internal/bootstrap"
	"draftdesk/internal/config"
	"draftdesk/internal/featureflags"
	"draftdesk/internal/generator"
	"draftdesk/internal/middleware"
	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/ratelimit"
	"draftdesk/internal/repository"
	"draftdesk/internal/service"
	"draftdesk/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          store.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	limiter        *ratelimit.Limiter
	authLimiter    *ratelimit.Limiter
	authService    *service.AuthService
	postService    *service.PostService
	contentService *service.ContentService
	adminService   *service.AdminService
}

// NewServer opens the configured store and wires the services over it.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	st, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		SeedDemo: cfg.SeedDemo,
		Preset:   cfg.SeedPreset,
	})
	if err != nil {
		return nil, err
	}

	var backend generator.Backend
	if cfg.GeneratorBaseURL != "" {
		backend = generator.NewHTTPBackend(cfg.GeneratorBaseURL, cfg.GeneratorModel, cfg.GeneratorTimeout)
	}
	return NewServerWithDeps(cfg, st, backend), nil
}

// NewServerWithDeps creates a Server using an already-opened store. A nil
// backend means drafts always come from the local composer.
func NewServerWithDeps(cfg *config.Config, st store.Store, backend generator.Backend) *Server {
	posts := repository.NewPostRepository(st)
	users := repository.NewUserRepository(st)
	sessions := repository.NewSessionRepository(st)
	errorLogs := repository.NewErrorLogRepository(st)
	rateLimits := repository.NewRateLimitRepository(st)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	limiter := ratelimit.New(rateLimits, "user", cfg.RateLimitMax, cfg.RateLimitWindow)
	guard := &service.Guard{
		Limiter: limiter,
		Tracker: observability.NewErrorTracker(errorLogs),
		Flags:   flags,
		Latency: cfg.SimulatedLatency,
	}

	return &Server{
		config:         cfg,
		store:          st,
		promMiddleware: middleware.InitMetrics("draftdesk-api"),
		featureFlags:   flags,
		limiter:        limiter,
		authLimiter:    ratelimit.New(rateLimits, "auth", cfg.AuthRateLimitMax, cfg.RateLimitWindow),
		authService:    service.NewAuthService(sessions, users, guard, cfg.JWTSecret, cfg.AdminEmailList()),
		postService:    service.NewPostService(posts, guard),
		contentService: service.NewContentService(generator.New(backend), sessions, guard, cfg.GeneratorAPIKey),
		adminService:   service.NewAdminService(posts, users, sessions, errorLogs, guard),
	}
}

// NewApp returns a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "DraftDesk API",
		BodyLimit: 2 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	authRequired := middleware.AuthRequired(s.authService)
	optionalAuth := middleware.OptionalAuth(s.authService)

	app.Get("/post/:id", s.GetPublicPost)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.authLimiter, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.authLimiter, "login"), s.Login)
	auth.Post("/logout", authRequired, s.Logout)
	auth.Get("/me", authRequired, s.Me)
	auth.Put("/api-key", authRequired, s.SaveAPIKey)

	posts := api.Group("/posts")
	// Specific routes before the generic /:id routes.
	posts.Post("/generate", authRequired, s.GeneratePost)
	posts.Get("/mine", authRequired, s.GetMyPosts)
	posts.Post("/", authRequired, s.CreatePost)
	posts.Post("/:id/publish", authRequired, s.PublishPost)
	posts.Post("/:id/schedule", authRequired, s.SchedulePost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)
	posts.Get("/:id", optionalAuth, s.GetPost)

	admin := api.Group("/admin", authRequired)
	admin.Get("/stats", s.GetStats)
	admin.Get("/posts", s.GetAllPosts)
	admin.Get("/users", s.GetUsers)
	admin.Put("/users/:id/role", s.UpdateUserRole)
	admin.Get("/error-logs", s.GetErrorLogs)
}

// HealthCheck reports whether the store answers.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if _, err := s.store.Get(ctx, "health"); err != nil && !errors.Is(err, store.ErrNotFound) {
		storeStatus = "unhealthy"
	}

	status := fiber.StatusOK
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status": storeStatus,
		"checks": fiber.Map{
			"store": fiber.Map{"driver": s.config.StoreDriver, "status": storeStatus},
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	observability.Logger.Info("Server shutdown complete")
	return nil
}
