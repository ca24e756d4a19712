package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/internal/api/handlers"
	redisCache "github.com/smartcity-agent/backend/internal/cache/redis"
	"github.com/smartcity-agent/backend/internal/classify"
	"github.com/smartcity-agent/backend/internal/llm"
	"github.com/smartcity-agent/backend/internal/metrics"
	"github.com/smartcity-agent/backend/internal/middleware/ratelimit"
	"github.com/smartcity-agent/backend/internal/middleware/security"
	"github.com/smartcity-agent/backend/internal/middleware/validation"
	"github.com/smartcity-agent/backend/internal/prompts"
	"github.com/smartcity-agent/backend/internal/query"
	"github.com/smartcity-agent/backend/internal/respond"
	"github.com/smartcity-agent/backend/internal/sensordata"
	"github.com/smartcity-agent/backend/pkg/config"
	appLogger "github.com/smartcity-agent/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Smart City Query API Server")

	metrics.Init()

	promptLibrary := prompts.Load(cfg.Prompts.Dir)

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.BaseURL,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
	)

	sensorClient := sensordata.NewClient(
		cfg.SensorAPI.BaseURL,
		cfg.SensorAPI.StatusBaseURL,
		time.Duration(cfg.SensorAPI.TimeoutSec)*time.Second,
		cfg.SensorAPI.MaxAttempts,
	)

	gateway := classify.NewGateway(llmClient, promptLibrary)
	generator := respond.NewGenerator(llmClient, promptLibrary, sensorClient)

	var classificationCache query.ClassificationCache
	if cfg.Cache.Enabled {
		cache, err := redisCache.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Classification cache disabled", zap.Error(err))
		} else {
			defer cache.Close()
			classificationCache = cache
		}
	}

	engine := query.NewEngine(gateway, sensorClient, generator, classificationCache)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	rateLimiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer rateLimiter.Stop()

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(rateLimiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		MaxQueryLength: cfg.RateLimit.MaxQueryLength,
		Logger:         appLogger.GetLogger(),
	}))

	queryHandler := handlers.NewQueryHandler(engine)
	wsHandler := handlers.NewWebSocketHandler(engine)

	app.Get("/", queryHandler.HandleRoot)
	app.Get("/query", queryHandler.HandleQueryGet)
	app.Post("/query", queryHandler.HandleQueryPost)
	app.Post("/query/full", queryHandler.HandleQueryFull)
	app.Get("/debug", queryHandler.HandleDebugGet)
	app.Post("/debug", queryHandler.HandleDebugPost)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
