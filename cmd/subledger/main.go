package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/subledger/internal/core/ports/repositories"
	"github.com/SscSPs/subledger/internal/core/services"
	"github.com/SscSPs/subledger/internal/dto"
	"github.com/SscSPs/subledger/internal/handlers"
	"github.com/SscSPs/subledger/internal/middleware"
	"github.com/SscSPs/subledger/internal/platform/config"
	"github.com/SscSPs/subledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/subledger/internal/repositories/memory"
	redisrepo "github.com/SscSPs/subledger/internal/repositories/redis"
	"github.com/SscSPs/subledger/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// @title Subledger API
// @version 1.0
// @description Chart of accounts, journal approval workflow and reversals for a multi-company ledger.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := dto.RegisterValidators(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sequence portsrepo.SequenceAllocator
	if cfg.SequenceBackend == config.SequenceRedis {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		allocator := redisrepo.NewSequenceAllocator(client)
		if err := allocator.Ping(ctx); err != nil {
			return err
		}
		sequence = allocator
		logger.Info("Journal numbers allocated from redis", slog.String("addr", cfg.RedisAddr))
	}

	var store portsrepo.TransactionManager
	switch cfg.StorageDriver {
	case config.StorageMemory:
		var opts []memory.StoreOption
		if sequence != nil {
			opts = append(opts, memory.WithSequenceAllocator(sequence))
		}
		store = memory.NewStore(opts...)
		logger.Warn("Using in-memory storage; data is lost on restart")
	default:
		if cfg.RunMigrations {
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return err
		}
		defer database.ClosePgxPool(pool)
		logger.Info("Database connection pool established.")

		var opts []pgsql.StoreOption
		if sequence != nil {
			opts = append(opts, pgsql.WithSequenceAllocator(sequence))
		}
		store = pgsql.NewStore(pool, opts...)
	}

	limiterInstance, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSAllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(limiterInstance))

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, cfg, services.NewServiceContainer(cfg, store))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
