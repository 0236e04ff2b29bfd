package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/api"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/metrics"
	"github.com/pageza/mealplanner/backend/internal/middleware"
)

const version = "v1.0.0"

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
	cfg    *config.Config
}

// New builds the router with the shared middleware, the health and metrics
// endpoints and every API route. redisClient may be nil.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps api.Dependencies, logger *zap.Logger) *Server {
	if cfg.Environment.Release() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORSOrigins),
	)

	s := &Server{router: router, db: db, redis: redisClient, logger: logger, cfg: cfg}
	router.GET("/health", s.health)
	router.GET("/api/health", s.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	deps.Logger = logger
	api.RegisterRoutes(router.Group("/api/v1"), deps)
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK
	if err := database.HealthCheck(ctx, s.db); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if s.redis != nil {
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			// Redis only backs caches and limits.
			checks["redis"] = err.Error()
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}
	c.JSON(status, gin.H{"status": state, "version": version, "checks": checks})
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.ServerHost, s.cfg.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("shutting down server")
	return s.Stop(shutdownCtx)
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return nil
}
