package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"tasktracker/configs"
	v1 "tasktracker/internal/api/v1"
	"tasktracker/internal/auth"
	"tasktracker/internal/cache"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
)

const taskCacheTTL = time.Hour

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		log.Fatalf("Failed to init loggers: %v", err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx := context.Background()

	db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	logger.SystemLogger.Info("Database connected")

	if err := repository.CreateTableIfNotExists(ctx, db); err != nil {
		logger.ErrorLogger.Fatal("Schema migration failed", zap.Error(err))
	}

	redisClient, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	logger.SystemLogger.Info("Redis connected")

	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)
	entries := repository.NewEntryRepository(db)

	authSvc := auth.NewService(users, auth.NewRedisSessionStore(redisClient), auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
	activity := service.NewActivityService(entries, tasks, users, time.Now, cfg.Location)
	taskSvc := service.NewTaskService(tasks, users, activity, cache.NewTaskCache(redisClient, taskCacheTTL))

	app := fiber.New(fiber.Config{
		AppName:      "tasktracker",
		ErrorHandler: middleware.ErrorHandler,
	})

	// Middleware
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	guard := limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: 1 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			logger.SecurityLogger.Warn("Rate limit reached", zap.String("ip", c.IP()), zap.String("url", c.OriginalURL()))
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	})
	v1.RegisterRoutes(app, v1.Services{Auth: authSvc, Tasks: taskSvc, Activity: activity}, guard)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(app, fmt.Sprintf(":%d", cfg.AppPort), quit); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
		logger.SyncLoggers()
		os.Exit(1)
	}
	logger.SystemLogger.Info("Server stopped")
}

// serve listens on addr until a signal arrives on quit, then shuts the app
// down. A listen failure is returned immediately.
func serve(app *fiber.App, addr string, quit <-chan os.Signal) error {
	listenErr := make(chan error, 1)
	go func() {
		logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
		listenErr <- app.Listen(addr)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-quit:
	}

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.ErrorLogger.Error("Failed to shutdown server", zap.Error(err))
	}
	return nil
}
