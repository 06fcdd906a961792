package main

import (
	"context"
	"log"
	"os"

	"licensestore/internal/config"
	"licensestore/internal/db"
	"licensestore/internal/migrate"
	"licensestore/internal/repository/catalog"
	"licensestore/internal/seed"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags)
	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	if err := seed.Apply(ctx, catalog.NewPostgres(pool, logger), logger); err != nil {
		logger.Fatalf("seed: %v", err)
	}
}
