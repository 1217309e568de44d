package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/resqsphere/internal/broadcast"
	"github.com/shenikar/resqsphere/internal/config"
	v1 "github.com/shenikar/resqsphere/internal/handler/http/v1"
	"github.com/shenikar/resqsphere/internal/liveupdates"
	"github.com/shenikar/resqsphere/internal/metrics"
	"github.com/shenikar/resqsphere/internal/repository"
	"github.com/shenikar/resqsphere/internal/service"
	"github.com/shenikar/resqsphere/internal/webhook"
	"github.com/shenikar/resqsphere/pkg/logger"
	"github.com/shenikar/resqsphere/pkg/postgres"
	redisclient "github.com/shenikar/resqsphere/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/resqsphere/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title ResQSphere API
// @version 1.0
// @description Incident management API with a live updates simulator and realtime events.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Рассылка событий: websocket hub, Redis pub/sub и очередь вебхуков
	hub := broadcast.NewHub(log)
	gateway := broadcast.NewGateway(hub, log,
		broadcast.WithRedis(redisClient),
		broadcast.WithWebhooks(webhook.NewRedisQueue(redisClient), cfg.WebhookEvents),
	)
	webhookWorker := webhook.NewWorker(redisClient, log, cfg)

	background, bgCtx := errgroup.WithContext(ctx)
	background.Go(func() error {
		hub.Run(bgCtx)
		return nil
	})
	background.Go(func() error {
		gateway.Relay(bgCtx)
		return nil
	})
	background.Go(func() error {
		webhookWorker.Run(bgCtx)
		return nil
	})

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient)
	userRepo := repository.NewUserRepository(dbpool)

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentRepo, gateway, log)
	userService := service.NewUserService(userRepo, incidentRepo, log)
	analyticsService := service.NewAnalyticsService(incidentRepo, userRepo, log)

	scheduler := liveupdates.NewScheduler(incidentRepo, userRepo, gateway, log, cfg.LiveUpdates,
		liveupdates.WithCache(incidentRepo),
	)
	if cfg.LiveUpdates.Enabled {
		scheduler.Start(ctx)
	} else {
		log.Info("Live updates simulator disabled")
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, userService, analyticsService, log, cfg)
	wsHandler := broadcast.NewHandler(hub, cfg.WSAllowedOrigins, log)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), v1.MetricsMiddleware())

	api := router.Group("/api/v1")
	api.Use(v1.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	handler.RegisterRoutes(api)
	api.GET("/ws", wsHandler.ServeWS)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// текущий тик доводится до конца до закрытия пула соединений
	scheduler.Stop()

	if err := background.Wait(); err != nil {
		log.WithError(err).Error("Background worker stopped with error")
	}

	log.Info("Server gracefully stopped")
}
