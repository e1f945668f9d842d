package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	echoMiddleware "github.com/casapps/casforum/src/internal/api/middleware"
	"github.com/casapps/casforum/src/internal/auth"
	"github.com/casapps/casforum/src/internal/cache"
)

// Server represents the main application server
type Server struct {
	echo      *echo.Echo
	config    *viper.Viper
	db        *gorm.DB
	cache     *cache.Manager
	auth      *auth.AuthService
	logger    *slog.Logger
	startTime time.Time
}

// New creates a new server instance
func New(e *echo.Echo, cfg *viper.Viper, db *gorm.DB, logger *slog.Logger) *Server {
	cacheManager := cache.NewManager(cfg)

	authService := auth.NewAuthService(
		cfg.GetString("security.secret_key"),
		cfg.GetString("app.name"),
	)

	s := &Server{
		echo:      e,
		config:    cfg,
		db:        db,
		cache:     cacheManager,
		auth:      authService,
		logger:    logger,
		startTime: time.Now(),
	}

	e.Validator = NewEchoValidator()
	e.HideBanner = true

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start starts the server
func (s *Server) Start(address string) error {
	s.logger.Info("starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("failed to close cache", "error", err)
		}
	}
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "  ${time_rfc3339} | ${status} | ${latency_human} | ${method} ${uri}\n",
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(echoMiddleware.CORS(s.config))
	s.echo.Use(echoMiddleware.Security(s.config))
	s.echo.Use(echoMiddleware.RateLimit(s.config))
}
