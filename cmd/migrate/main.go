package main

import (
	"flag"
	"fmt"
	"os"

	"storefront-be/internal/config"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", db.MigrateUp, "migration mode: up or down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L().Fatal("failed to load config", zap.Error(err))
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := run(cfg, *mode); err != nil {
		logger.L().Error("migration failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string) error {
	if mode != db.MigrateUp && mode != db.MigrateDown {
		return errUnknownMode(mode)
	}

	conn, err := db.NewDatabase(cfg)
	if err != nil {
		return err
	}
	return db.Migrate(conn, mode)
}

func errUnknownMode(mode string) error {
	return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
}
