package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-shift-coverage/config"
	"go-shift-coverage/internal/delivery/dto"
	deliveryHttp "go-shift-coverage/internal/delivery/http"
	"go-shift-coverage/internal/delivery/http/handler"
	"go-shift-coverage/internal/delivery/http/middleware"
	"go-shift-coverage/internal/infrastructure/cache"
	"go-shift-coverage/internal/infrastructure/database"
	"go-shift-coverage/internal/infrastructure/identity"
	"go-shift-coverage/internal/repository"
	"go-shift-coverage/internal/service"
	"go-shift-coverage/internal/usecase"
	"go-shift-coverage/pkg/jwt"
	"go-shift-coverage/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config         *config.Config
	DB             *gorm.DB
	RedisClient    *redis.Client
	SessionManager usecase.SessionManager
	Server         *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Apply schema
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, err
	}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer wires the session manager and the HTTP server
func (app *App) initializeServer() error {
	cfg := app.Config

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()
	if err := dto.RegisterValidations(customValidator); err != nil {
		return fmt.Errorf("failed to register validations: %w", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository()
	profileRepo := repository.NewProfileRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize services
	auditService := service.NewAuditService(app.DB, log, auditLogRepo)
	identityProvider := identity.NewCredentialProvider(app.DB, app.RedisClient, log, jwtService, accountRepo, cfg.App.ClientID, cfg.Identity)

	// Initialize session manager
	sessionManager := usecase.NewSessionManager(app.DB, log, identityProvider, profileRepo, auditService)
	if err := sessionManager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start session manager: %w", err)
	}
	app.SessionManager = sessionManager

	// Initialize usecases
	auditLogUsecase := usecase.NewAuditLogUsecase(app.DB, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(sessionManager, customValidator, log)
	profileHandler := handler.NewProfileHandler(sessionManager, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(sessionManager)
	corsMiddleware := middleware.NewCORSMiddleware()

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, profileHandler, auditLogHandler, sessionMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops the session subscription, then closes database and redis connections.
func (app *App) Close() {
	if app.SessionManager != nil {
		app.SessionManager.Close()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
