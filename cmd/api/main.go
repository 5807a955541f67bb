package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/api/handlers"
	"github.com/cost-copilot/backend/internal/cache/redis"
	"github.com/cost-copilot/backend/internal/knowledge"
	"github.com/cost-copilot/backend/internal/llm"
	"github.com/cost-copilot/backend/internal/metrics"
	"github.com/cost-copilot/backend/internal/query"
	"github.com/cost-copilot/backend/internal/security"
	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/internal/synth"
	"github.com/cost-copilot/backend/internal/usage"
	"github.com/cost-copilot/backend/pkg/config"
	appLogger "github.com/cost-copilot/backend/pkg/logger"
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

	appLogger.Info("Starting Cost Copilot API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	// Without an API key the pipeline still answers from database analysis
	// and keyword search, just without generated prose or embeddings.
	var generator synth.Generator
	var embedder knowledge.Embedder
	if cfg.LLM.APIKey != "" {
		llmClient := llm.NewClient(
			cfg.LLM.APIKey,
			cfg.LLM.Model,
			cfg.LLM.EmbeddingModel,
			cfg.LLM.Temperature,
			cfg.LLM.MaxTokens,
		)
		generator = llmClient
		embedder = llmClient
	} else {
		appLogger.Warn("LLM API key not configured, running in fallback mode")
	}

	var answerCache *redis.Client
	if cfg.Redis.Enabled {
		answerCache, err = redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSec)*time.Second,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, answer caching disabled", zap.Error(err))
			answerCache = nil
		}
	}

	gate := security.NewGate()
	accountant := usage.NewAccountant(cfg.Usage.HourRetentionHours, cfg.Usage.CostRetentionDays)

	retriever := knowledge.NewRetriever(
		context.Background(),
		knowledge.Corpus(),
		embedder,
		cfg.Knowledge.VectorDim,
	)

	dbAnalyzer := analyzer.New(sqliteClient, accountant, gate.PatternCount(), analyzer.Config{
		DefaultYear:     cfg.Analyzer.DefaultYear,
		TrendMonths:     cfg.Analyzer.TrendMonths,
		IdleUsageBelow:  cfg.Analyzer.IdleUsageBelow,
		IdleCostAbove:   cfg.Analyzer.IdleCostAbove,
		UntaggedMinCost: cfg.Analyzer.UntaggedMinCost,
	})

	synthesizer := synth.New(generator, accountant, synth.Pricing{
		InputPer1K:  cfg.LLM.InputPricePer1K,
		OutputPer1K: cfg.LLM.OutputPricePer1K,
	})

	queryEngine := query.NewEngine(
		gate,
		retriever,
		dbAnalyzer,
		synthesizer,
		sqliteClient,
		answerCache,
		cfg.Knowledge.TopK,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	askHandler := handlers.NewAskHandler(queryEngine)
	kpiHandler := handlers.NewKPIHandler(sqliteClient, cfg.Analyzer.TrendMonths)
	usageHandler := handlers.NewUsageHandler(accountant)
	wsHandler := handlers.NewWebSocketHandler(queryEngine)

	api := app.Group("/api/v1")

	api.Post("/ask", askHandler.HandleAsk)
	api.Get("/kpi", kpiHandler.HandleKPI)
	api.Get("/usage", usageHandler.HandleUsage)

	api.Get("/health", func(c *fiber.Ctx) error {
		billingRecords, resourceRecords, firstMonth, lastMonth, err := sqliteClient.Stats()
		status := "healthy"
		if err != nil {
			status = "degraded"
		}
		return c.JSON(fiber.Map{
			"status":           status,
			"time":             time.Now().Unix(),
			"billing_records":  billingRecords,
			"resource_records": resourceRecords,
			"first_month":      firstMonth,
			"last_month":       lastMonth,
			"llm_enabled":      generator != nil,
			"cache_enabled":    answerCache != nil,
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.Handler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/ask", websocket.New(wsHandler.HandleConnection))

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
