package httpserver

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/metrics"
	"wilpos-terminal/internal/wire"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
}

type SaleService interface {
	Record(ctx context.Context, userID int64, draft domain.SaleDraft) (*domain.Sale, error)
}

// Deps are the services and settings the router needs.
type Deps struct {
	AuthSvc    AuthService
	CatalogSvc CatalogService
	SaleSvc    SaleService
	// Metrics is optional; a private registry is created when nil.
	Metrics *metrics.Metrics

	CORSOrigins        []string
	LoginRatePerMinute int
}

// buildRouter wires routes for the API.
func buildRouter(logger logrus.FieldLogger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.AuthSvc == nil || deps.CatalogSvc == nil || deps.SaleSvc == nil {
		return nil, errors.New("httpserver: auth, catalog and sale services are required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery(), deps.Metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET(wire.HealthPath, healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	h := &handlers{
		auth:    deps.AuthSvc,
		catalog: deps.CatalogSvc,
		sales:   deps.SaleSvc,
		metrics: deps.Metrics,
		logger:  logger,
	}

	api := router.Group("/api")
	api.POST(wire.LoginPath, newLoginLimiter(deps.LoginRatePerMinute, deps.Metrics, logger).Handler(), h.login)

	authed := api.Group("", bearerAuth(deps.AuthSvc, logger))
	authed.GET(wire.ProductsPath, h.listProducts)
	authed.POST(wire.SalesPath, h.createSale)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
