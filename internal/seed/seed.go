// Package seed loads the demo dataset used for manual testing of terminals.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	customerrepo "wilpos-terminal/internal/repository/customer"
	productrepo "wilpos-terminal/internal/repository/product"
	userrepo "wilpos-terminal/internal/repository/user"
	authsvc "wilpos-terminal/internal/service/auth"
)

type userSeed struct {
	Username string
	Password string
	Name     string
	Role     string
}

type productSeed struct {
	Name    string
	Barcode string
	Price   string
	Stock   int
}

var users = []userSeed{
	{Username: "cajero", Password: "cajero123", Name: "Cajero Principal", Role: "cajero"},
	{Username: "admin", Password: "admin123", Name: "Administrador", Role: "admin"},
}

// Every product carries a barcode so reruns update instead of duplicating.
var products = []productSeed{
	{Name: "Coca Cola 20oz", Barcode: "7501055300075", Price: "50.00", Stock: 48},
	{Name: "Agua Planeta Azul 20oz", Barcode: "7460182300012", Price: "25.00", Stock: 60},
	{Name: "Pan de Agua", Barcode: "2000000000011", Price: "10.00", Stock: 100},
	{Name: "Arroz La Garza 5lb", Barcode: "7460380100018", Price: "185.00", Stock: 30},
	{Name: "Habichuelas Rojas Goya", Barcode: "0041331025017", Price: "75.50", Stock: 24},
	{Name: "Salami Induveca", Barcode: "7460254000012", Price: "160.00", Stock: 15},
	{Name: "Leche Rica 1L", Barcode: "7460137000015", Price: "72.00", Stock: 36},
	{Name: "Cafe Santo Domingo 1lb", Barcode: "7460111000013", Price: "245.00", Stock: 20},
}

type repos struct {
	customers customerrepo.Repository
	users     userrepo.Repository
	products  productrepo.Repository
}

// Apply inserts the walk-in customer, demo cashiers and demo products. It is
// idempotent.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger logrus.FieldLogger) error {
	if logger == nil {
		logger = logging.Discard()
	}
	return apply(ctx, repos{
		customers: customerrepo.NewPostgres(pool, logger),
		users:     userrepo.NewPostgres(pool, logger),
		products:  productrepo.NewPostgres(pool, logger),
	}, logger)
}

func apply(ctx context.Context, r repos, logger logrus.FieldLogger) error {
	if _, err := r.customers.Ensure(ctx, domain.Customer{ID: domain.WalkInCustomerID, Name: "Cliente general"}); err != nil {
		return fmt.Errorf("ensure walk-in customer: %w", err)
	}

	for _, u := range users {
		hash, err := authsvc.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}
		_, err = r.users.Upsert(ctx, domain.User{
			Username:     u.Username,
			Name:         u.Name,
			Role:         u.Role,
			PasswordHash: hash,
			Active:       true,
		})
		if err != nil {
			return fmt.Errorf("upsert user %s: %w", u.Username, err)
		}
	}

	for _, p := range products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("price for %s: %w", p.Name, err)
		}
		_, err = r.products.Upsert(ctx, domain.Product{Name: p.Name, Barcode: p.Barcode, UnitPrice: price, Stock: p.Stock})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	logger.WithFields(logrus.Fields{"users": len(users), "products": len(products)}).Info("seed: applied")
	return nil
}
