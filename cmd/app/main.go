package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "referral-miniapp-backend/docs"
	"referral-miniapp-backend/internal/common/config"
	"referral-miniapp-backend/internal/common/logger"
	"referral-miniapp-backend/internal/common/metrics"
	"referral-miniapp-backend/internal/common/middleware"
	"referral-miniapp-backend/internal/common/validation"
	payoutHTTP "referral-miniapp-backend/internal/features/payout/delivery/http"
	"referral-miniapp-backend/internal/features/payout/publisher"
	payoutService "referral-miniapp-backend/internal/features/payout/service"
	taskHTTP "referral-miniapp-backend/internal/features/task/delivery/http"
	taskService "referral-miniapp-backend/internal/features/task/service"
	userHTTP "referral-miniapp-backend/internal/features/user/delivery/http"
	userRepo "referral-miniapp-backend/internal/features/user/repository"
	redisUserRepo "referral-miniapp-backend/internal/features/user/repository/redis"
	sqliteUserRepo "referral-miniapp-backend/internal/features/user/repository/sqlite"
	userService "referral-miniapp-backend/internal/features/user/service"
	redisplatform "referral-miniapp-backend/internal/platform/redis"
	"referral-miniapp-backend/internal/platform/sqlite"
)

// @title           Referral Mini App API
// @version         1.0
// @description     Backend for a Telegram referral mini app: invite tracking, task rewards and payout requests. All /api/v1 endpoints require init_data authentication.

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @tag.name users
// @tag.description Current user, referral linkage and invite link

// @tag.name tasks
// @tag.description Invite tasks and reward claims

// @tag.name payouts
// @tag.description Payment identifiers and payout requests

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Инициализируем логгер
	logger.Init(cfg.ServiceName, cfg.Debug)
	logger.Info().
		Str("store", cfg.Store.Driver).
		Bool("debug", cfg.Debug).
		Msg("Starting referral mini app backend")

	ctx := context.Background()

	// Redis нужен как хранилище и/или для стрима заявок на выплату
	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		redisClient, err = redisplatform.Open(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
	}

	// Инициализируем репозиторий
	var repo userRepo.UserRepository
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		sqliteClient, err := sqlite.NewClient(ctx, cfg.SQLite.Path)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to open SQLite database")
		}
		repo, err = sqliteUserRepo.NewUserRepository(ctx, sqliteClient.GetDB())
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to migrate SQLite database")
		}
		if redisClient != nil {
			defer redisClient.Close()
		}
	default:
		repo = redisUserRepo.NewUserRepository(redisClient)
	}
	defer repo.Close()

	logger.Info().Msg("Repository initialized")

	var pub publisher.Publisher
	if cfg.Redis.PublishPayouts {
		pub = publisher.NewRedisStreamPublisher(redisClient, cfg.Redis.PayoutStream)
		logger.Info().Str("stream", cfg.Redis.PayoutStream).Msg("Payout requests will be published")
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Инициализируем сервисы
	userSvc := userService.NewUserService(repo, m, userService.Options{
		ReferralBonus: cfg.Referral.Bonus,
		AppURL:        cfg.Telegram.AppURL,
	})
	taskSvc := taskService.NewTaskService(repo, m)
	payoutSvc := payoutService.NewPayoutService(repo, pub, m)

	logger.Info().Msg("Services initialized")

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validation.RegisterBindings(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register validators")
	}

	router := gin.New()

	// Добавляем middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	if m != nil {
		router.Use(m.Middleware())
	}

	// Настраиваем CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", middleware.InitDataHeader, "X-Telegram-Init-Data", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	router.Use(cors.New(corsConfig))

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	// Настраиваем роуты
	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramInitDataMiddleware(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL))
	{
		userHTTP.NewUserHandler(userSvc).RegisterRoutes(v1, limiter.Middleware())
		taskHTTP.NewTaskHandler(taskSvc).RegisterRoutes(v1, limiter.Middleware())
		payoutHTTP.NewPayoutHandler(payoutSvc).RegisterRoutes(v1, limiter.Middleware())
	}
	setupServiceRoutes(router, cfg, repo, redisClient, m)

	logger.Info().Msg("Routes configured")

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// setupServiceRoutes маршруты без init_data: пробы, метрики, swagger
func setupServiceRoutes(router *gin.Engine, cfg *config.Config, repo userRepo.UserRepository, redisClient *goredis.Client, m *metrics.Metrics) {
	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   cfg.ServiceName,
		})
	})

	// Liveness check
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness check
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := repo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   cfg.Store.Driver + " unavailable",
				"details": err.Error(),
			})
			return
		}

		// Стрим выплат живет в Redis даже при SQLite-хранилище
		if redisClient != nil && cfg.Store.Driver != config.StoreDriverRedis {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   cfg.ServiceName,
		})
	})

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
