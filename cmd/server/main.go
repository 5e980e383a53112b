package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduquiz/grading-service/internal/cache"
	"github.com/eduquiz/grading-service/internal/config"
	"github.com/eduquiz/grading-service/internal/handlers"
	"github.com/eduquiz/grading-service/internal/middleware"
	"github.com/eduquiz/grading-service/internal/models"
	"github.com/eduquiz/grading-service/internal/repositories/postgres"
	"github.com/eduquiz/grading-service/internal/services"
	"github.com/eduquiz/grading-service/internal/utils"
	"github.com/eduquiz/grading-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Quiz{}, &models.Question{}, &models.Submission{}); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	defer repo.Close()

	validator := utils.NewValidator()
	cacheService := cache.NewRedisCache(redisClient, slogger)

	serviceManager := services.NewServiceManager(repo, cacheService, publisher, slogger, validator)
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger)

	auth := middleware.NewAuthMiddleware(cfg.Casdoor, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.LoggerMiddleware(logger))
	engine.Use(utils.ContextLogger(logger))

	handlerManager.SetupRoutes(engine, auth.RequireAuth())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("Starting grading service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
