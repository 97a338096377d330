package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"wilpos-terminal/internal/config"
	"wilpos-terminal/internal/db"
	"wilpos-terminal/internal/importer"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/repository/product"
)

func main() {
	var (
		filePath string
		envFile  string
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV (nombre,codigo_barra,precio_venta,stock)")
	flag.StringVar(&envFile, "env", ".env", "Optional dotenv file")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := logging.New("importer", "info")
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

	f, err := os.Open(filePath)
	if err != nil {
		logger.WithError(err).Fatal("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.WithError(err).WithField("imported", count).Fatal("import failed")
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
