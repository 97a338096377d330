package customer

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Ensure(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (id, nombre)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET nombre = EXCLUDED.nombre
RETURNING id, nombre, created_at
`
	out, err := r.scanCustomer(r.pool.QueryRow(ctx, q, c.ID, c.Name))
	if err != nil {
		return nil, err
	}
	// explicit ids bypass the sequence; move it past them
	if _, err := r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('customers', 'id'), GREATEST((SELECT max(id) FROM customers), 1))`); err != nil {
		r.logger.WithError(err).Warn("customer repo: sync sequence")
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const q = `SELECT id, nombre, created_at FROM customers WHERE id = $1`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).Error("customer repo: scan")
		return nil, err
	}
	return &c, nil
}
