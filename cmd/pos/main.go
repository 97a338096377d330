package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"wilpos-terminal/internal/config"
	"wilpos-terminal/internal/console"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/posclient"
	"wilpos-terminal/internal/sessionstore"
	"wilpos-terminal/internal/terminal"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "Optional dotenv file with POS_* settings")
	flag.Parse()

	if err := config.LoadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", envFile, err)
		os.Exit(1)
	}
	cfg := config.TerminalFromEnv()

	logger, closer, err := logging.NewFile(cfg.LogFile, "pos", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	store := sessionstore.NewFile(cfg.StorePath, logger)
	client := posclient.New(cfg.HTTPTimeout, logger)
	app := terminal.NewApp(store, client, terminal.LocatorConfig{
		ProbeTimeout: cfg.ProbeTimeout,
		DefaultPort:  cfg.DefaultPort,
	}, logger)

	state, err := app.Restore()
	if err != nil {
		logger.WithError(err).Warn("restore session")
	}
	logger.WithField("state", state.Name()).Info("pos: starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := console.New(app, os.Stdin, os.Stdout, logger).Run(ctx); err != nil {
		logger.WithError(err).Error("pos: console stopped")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("pos: stopped")
}
