// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"strings"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/database"
	"taskhub/internal/email"
	"taskhub/internal/middleware"
	"taskhub/internal/models"
	"taskhub/internal/observability"
	"taskhub/internal/repository"
	"taskhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	taskRepo       repository.TaskRepository
	tokens         *auth.TokenService
	userService    *service.UserService
	taskService    *service.TaskService
	avatarService  *service.AvatarService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	mailer := email.NewSenderFromConfig(cfg, middleware.Logger)
	return NewServerWithDeps(cfg, db, mailer), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes the database.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, mailer email.Sender) *Server {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokens := auth.NewTokenService(cfg.JWTSecret)

	server := &Server{
		config:         cfg,
		db:             db,
		promMiddleware: middleware.InitMetrics("taskhub-api"),
		userRepo:       userRepo,
		taskRepo:       taskRepo,
		tokens:         tokens,
	}
	server.userService = service.NewUserService(userRepo, taskRepo, tokens, mailer)
	server.taskService = service.NewTaskService(taskRepo)
	server.avatarService = service.NewAvatarService(userRepo)

	return server
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Public user routes
	app.Post("/users", s.SignUp)
	app.Post("/users/login", s.Login)

	// Protected session routes
	app.Post("/users/logout", s.AuthRequired(), s.Logout)
	app.Post("/users/logoutAll", s.AuthRequired(), s.LogoutAll)

	// Profile routes
	me := app.Group("/users/me", s.AuthRequired())
	me.Get("/", s.GetMyProfile)
	me.Patch("/", s.UpdateMyProfile)
	me.Delete("/", s.DeleteMyAccount)
	me.Post("/avatar", s.UploadAvatar)
	me.Delete("/avatar", s.DeleteAvatar)

	// Public avatar fetch; any user's avatar is readable by ID
	app.Get("/users/:id/avatar", s.GetAvatar)

	// Task routes
	tasks := app.Group("/tasks", s.AuthRequired())
	tasks.Post("/", s.CreateTask)
	tasks.Get("/", s.GetTasks)
	tasks.Get("/:id", s.GetTask)
	tasks.Patch("/:id", s.UpdateTask)
	tasks.Delete("/:id", s.DeleteTask)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication guard. A request passes only when
// its bearer token verifies AND is still present in the user's session list.
// Every failure mode produces the same 401 response.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			observability.AuthFailures.WithLabelValues("missing_token").Inc()
			return s.respondUnauthenticated(c)
		}

		userID, err := s.tokens.Verify(tokenString)
		if err != nil {
			observability.AuthFailures.WithLabelValues("invalid_token").Inc()
			return s.respondUnauthenticated(c)
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			observability.AuthFailures.WithLabelValues("unknown_user").Inc()
			return s.respondUnauthenticated(c)
		}

		// A verified token is still rejected once it has been logged out
		active, err := s.userRepo.HasToken(c.Context(), userID, tokenString)
		if err != nil || !active {
			observability.AuthFailures.WithLabelValues("revoked_token").Inc()
			return s.respondUnauthenticated(c)
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		c.Locals("token", tokenString)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// respondUnauthenticated writes the uniform guard rejection. The body never
// hints at which check failed.
func (s *Server) respondUnauthenticated(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusUnauthorized,
		models.NewUnauthorizedError("Please authenticate"))
}

// ErrorHandler is the app-level fallback for errors that escape handlers
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	middleware.Logger.Error("unhandled request error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// Shutdown releases server resources after the HTTP listener has stopped
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
