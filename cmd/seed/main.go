package main

import (
	"context"
	"flag"

	"wilpos-terminal/internal/config"
	"wilpos-terminal/internal/db"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/seed"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "Optional dotenv file")
	flag.Parse()

	logger := logging.New("seed", "info")
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

	if err := seed.Apply(ctx, pool, logger); err != nil {
		logger.WithError(err).Fatal("seed apply")
	}
}
