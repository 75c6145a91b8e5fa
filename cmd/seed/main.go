package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nexusmart/storefront/internal/catalog"
	"github.com/nexusmart/storefront/internal/config"
	"github.com/nexusmart/storefront/internal/logger"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Options{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	repo, err := catalog.NewRepository(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("failed to open catalog", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	res, err := catalog.Seed(context.Background(), repo, log)
	if err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
	log.Info("successfully seeded products",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated))
}
