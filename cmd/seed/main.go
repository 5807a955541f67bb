package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/seed"
	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/pkg/config"
	appLogger "github.com/cost-copilot/backend/pkg/logger"
)

func main() {
	var randSeed int64
	flag.Int64Var(&randSeed, "seed", time.Now().UnixNano(), "random seed for reproducible datasets")
	flag.Parse()

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

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	generator := seed.NewGenerator(sqliteClient, randSeed)
	if err := generator.Run(); err != nil {
		appLogger.Fatal("Sample data generation failed", zap.Error(err))
	}
}
