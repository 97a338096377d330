package main

import (
	"context"
	"flag"

	"wilpos-terminal/internal/config"
	"wilpos-terminal/internal/db"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/migrate"
)

func main() {
	var (
		envFile string
		down    bool
	)
	flag.StringVar(&envFile, "env", ".env", "Optional dotenv file")
	flag.BoolVar(&down, "down", false, "Roll back all migrations instead of applying them")
	flag.Parse()

	logger := logging.New("migrate", "info")
	if err := config.LoadDotEnv(envFile); err != nil {
		logger.WithError(err).Fatal("load dotenv")
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.WithError(err).Fatal("connect db")
	}
	defer pool.Close()

	if down {
		if err := migrate.Down(ctx, pool); err != nil {
			logger.WithError(err).Fatal("roll back migrations")
		}
		logger.Info("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}
	logger.Info("migrations applied")
}
