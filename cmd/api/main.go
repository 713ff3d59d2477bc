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

	"github.com/dijkstrabc/shittykbsystem/internal/api/handlers"
	"github.com/dijkstrabc/shittykbsystem/internal/chat"
	"github.com/dijkstrabc/shittykbsystem/internal/coldstart"
	"github.com/dijkstrabc/shittykbsystem/internal/genai"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/catalog"
	"github.com/dijkstrabc/shittykbsystem/internal/kb/store"
	"github.com/dijkstrabc/shittykbsystem/internal/metrics"
	"github.com/dijkstrabc/shittykbsystem/internal/middleware/ratelimit"
	"github.com/dijkstrabc/shittykbsystem/internal/middleware/security"
	"github.com/dijkstrabc/shittykbsystem/internal/middleware/validation"
	"github.com/dijkstrabc/shittykbsystem/pkg/config"
	appLogger "github.com/dijkstrabc/shittykbsystem/pkg/logger"
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

	appLogger.Info("Starting KB Admin API Server")

	kbStore, err := newStore(cfg)
	if err != nil {
		appLogger.Fatal("Failed to create store", zap.Error(err))
	}
	defer kbStore.Close()

	metrics.Init()

	categories := catalog.NewCategories(kbStore)
	points := catalog.NewKnowledgePoints(kbStore)
	robots := catalog.NewRobots(kbStore)
	entities := catalog.NewEntities(kbStore)
	intents := catalog.NewIntents(kbStore)

	genaiClient := genai.NewClient(genai.Config{
		Endpoint:   cfg.GenAI.Endpoint,
		APIKey:     cfg.GenAI.APIKey,
		Model:      cfg.GenAI.Model,
		MaxTokens:  cfg.GenAI.MaxTokens,
		Thinking:   cfg.GenAI.Thinking,
		TimeoutSec: cfg.GenAI.TimeoutSec,
	})

	chatEngine := chat.NewEngine(kbStore, points, robots, chat.Config{
		ReplyDelay:      time.Duration(cfg.Chat.ReplyDelayMS) * time.Millisecond,
		FallbackText:    cfg.Chat.FallbackText,
		SuggestionCount: cfg.Chat.SuggestionCount,
	})

	processor := coldstart.NewProcessor(genaiClient, points)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	categoryHandler := handlers.NewCategoryHandler(categories)
	knowledgeHandler := handlers.NewKnowledgeHandler(points, genaiClient)
	chatHandler := handlers.NewChatHandler(chatEngine)
	adminHandler := handlers.NewAdminHandler(robots, entities, intents)
	analyticsHandler := handlers.NewAnalyticsHandler(kbStore, points, robots, chatEngine)
	coldStartHandler := handlers.NewColdStartHandler(processor)
	wsHandler := handlers.NewWebSocketHandler(genaiClient)

	api := app.Group("/api/v1")

	api.Get("/categories", categoryHandler.List)
	api.Post("/categories", categoryHandler.Create)
	api.Put("/categories/:id", categoryHandler.Update)
	api.Delete("/categories/:id", categoryHandler.Delete)

	api.Get("/knowledge-points", knowledgeHandler.List)
	api.Post("/knowledge-points", knowledgeHandler.Create)
	api.Get("/knowledge-points/:id", knowledgeHandler.Get)
	api.Put("/knowledge-points/:id", knowledgeHandler.Update)
	api.Delete("/knowledge-points/:id", knowledgeHandler.Delete)
	api.Put("/knowledge-points/:id/status", knowledgeHandler.SetStatus)
	api.Post("/knowledge-points/:id/similar", knowledgeHandler.ExpandSimilar)

	api.Get("/robots", adminHandler.ListRobots)
	api.Post("/robots", adminHandler.CreateRobot)
	api.Put("/robots/:id", adminHandler.UpdateRobot)
	api.Delete("/robots/:id", adminHandler.DeleteRobot)

	api.Get("/entities", adminHandler.ListEntities)
	api.Post("/entities", adminHandler.CreateEntity)
	api.Put("/entities/:id", adminHandler.UpdateEntity)
	api.Delete("/entities/:id", adminHandler.DeleteEntity)

	api.Get("/intents", adminHandler.ListIntents)
	api.Post("/intents", adminHandler.CreateIntent)
	api.Put("/intents/:id", adminHandler.UpdateIntent)
	api.Delete("/intents/:id", adminHandler.DeleteIntent)

	api.Get("/chat/sessions", chatHandler.ListSessions)
	api.Post("/chat/sessions", chatHandler.StartSession)
	api.Post("/chat/sessions/:id/messages", chatHandler.SubmitMessage)
	api.Get("/chat/stream", websocket.New(wsHandler.HandleConnection))

	api.Get("/analytics/stale", analyticsHandler.StaleReport)
	api.Get("/analytics/unanswered", analyticsHandler.ListUnanswered)

	api.Post("/coldstart/documents", coldStartHandler.UploadDocument)

	api.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

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

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLiteStore(cfg.Store.SQLitePath)
	case "redis":
		return store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisPass, cfg.Store.RedisDB)
	case "memory", "":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
