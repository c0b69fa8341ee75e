// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"savornshare/internal/cache"
	"savornshare/internal/config"
	"savornshare/internal/database"
	"savornshare/internal/media"
	"savornshare/internal/middleware"
	"savornshare/internal/models"
	"savornshare/internal/repository"
	"savornshare/internal/service"
	"savornshare/internal/sso"
	"savornshare/internal/token"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	tokens         *token.Service
	uploads        *media.Service
	userService    *service.UserService
	postService    *service.PostService
	google         sso.IdentityVerifier
	googleOAuth    *sso.GoogleProvider
	bridge         *sso.Bridge
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, err := newMediaStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("media store init failed: %w", err)
	}

	server, err := NewServerWithDeps(cfg, db, redisClient, store)
	if err != nil {
		return nil, err
	}

	// Google login is optional; the routes 404 when it is not configured.
	if cfg.GoogleClientID != "" {
		provider, err := sso.NewGoogleProvider(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("google provider init failed: %w", err)
		}
		server.google = provider
		server.googleOAuth = provider
	}

	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store media.Store) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	prom := middleware.InitMetrics("savornshare-api")

	tokens, err := token.NewService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	uploads := media.NewService(store)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		tokens:         tokens,
		uploads:        uploads,
	}
	server.userService = service.NewUserService(userRepo, uploads)
	server.postService = service.NewPostService(postRepo, userRepo, uploads)
	server.bridge = sso.NewBridge(userRepo, tokens)

	return server, nil
}

func newMediaStore(cfg *config.Config) (media.Store, error) {
	if cfg.MediaBackend == "s3" {
		return media.NewS3Store(context.Background(), cfg)
	}
	return media.NewLocalStore(cfg.MediaUploadDir)
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

	// CORS must run before middlewares that can short-circuit so browser
	// clients still receive CORS headers on error responses.
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Locally stored media is served straight off disk.
	if local, ok := s.uploads.Store().(*media.LocalStore); ok {
		app.Static(media.URLPrefix, local.BaseDir())
	}

	authRequired := s.AuthRequired()

	// Auth routes
	auth := api.Group("/auth")
	auth.Get("/logout", s.Logout)

	// Google federated login (only when configured)
	if s.googleOAuth != nil {
		auth.Get("/google", s.GoogleRedirect)
		auth.Get("/google/callback", s.GoogleCallback)
	}
	if s.google != nil {
		auth.Post("/google", middleware.RateLimit(
			s.redis, 10, 5*time.Minute, "google_login"), s.GoogleTokenLogin)
	}

	// User routes. Specific paths go before the generic /:id route.
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Get("/me", authRequired, s.GetMe)
	users.Get("/", s.GetAuthors)
	users.Post("/change-avatar", authRequired, s.ChangeAvatar)
	users.Patch("/edit-user", authRequired, s.EditUser)
	users.Get("/:id", s.GetUser)

	// Post routes. Specific paths go before the generic /:id route.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/categories/:category", s.GetPostsByCategory)
	posts.Get("/users/:id", s.GetUserPosts)
	posts.Post("/", authRequired, middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Patch("/:id", authRequired, s.EditPost)
	posts.Delete("/:id", authRequired, s.DeletePost)
	posts.Get("/:id", s.GetPost)
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.tokens, s.userRepo)
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API stays usable without Redis; report it as degraded only.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Savor n Share API",
		BodyLimit: 8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
