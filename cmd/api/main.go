package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/config"
	"wilpos-terminal/internal/db"
	"wilpos-terminal/internal/httpserver"
	"wilpos-terminal/internal/logging"
	"wilpos-terminal/internal/metrics"
	customerrepo "wilpos-terminal/internal/repository/customer"
	productrepo "wilpos-terminal/internal/repository/product"
	salerepo "wilpos-terminal/internal/repository/sale"
	tokenrepo "wilpos-terminal/internal/repository/token"
	userrepo "wilpos-terminal/internal/repository/user"
	authsvc "wilpos-terminal/internal/service/auth"
	catalogsvc "wilpos-terminal/internal/service/catalog"
	salesvc "wilpos-terminal/internal/service/sale"
)

const tokenPurgeInterval = 15 * time.Minute

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "Optional dotenv file")
	flag.Parse()

	bootLogger := logging.New("api", "info")
	if err := config.LoadDotEnv(envFile); err != nil {
		bootLogger.WithError(err).Fatal("load dotenv")
	}
	cfg := config.FromEnv()
	logger := logging.New("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	saleRepo := salerepo.NewPostgres(dbpool, logger)

	authService := authsvc.New(userRepo, tokenRepo, cfg.TokenTTL, logger)
	catalogService := catalogsvc.New(productRepo)
	saleService := salesvc.New(saleRepo, customerRepo, productRepo, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		AuthSvc:            authService,
		CatalogSvc:         catalogService,
		SaleSvc:            saleService,
		Metrics:            metrics.New(),
		CORSOrigins:        cfg.CORSOrigins,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})
	if err != nil {
		logger.WithError(err).Fatal("init server")
	}

	go purgeTokens(ctx, authService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received signal, shutting down")
	case err := <-serverErr:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	} else {
		logger.Info("server stopped")
	}
}

func purgeTokens(ctx context.Context, auth *authsvc.Service, logger logrus.FieldLogger) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := auth.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Warn("purge expired tokens")
			}
		}
	}
}
