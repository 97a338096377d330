package product

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	if logger == nil {
		logger = logging.Discard()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const selectColumns = `id, nombre, codigo_barra, precio_venta::text, stock, created_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	q := `SELECT ` + selectColumns + ` FROM products ORDER BY nombre, id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.WithError(err).Error("product repo: list")
		return nil, err
	}
	result, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		r.logger.WithError(err).Error("product repo: list rows")
		return nil, err
	}
	r.logger.WithField("count", len(result)).Debug("product repo: list")
	return result, nil
}

func (r *postgresRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + selectColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		r.logger.WithError(err).WithField("ids", ids).Error("product repo: get by ids")
		return nil, err
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	r.logger.WithFields(logrus.Fields{"requested": len(ids), "found": len(out)}).Debug("product repo: get by ids")
	return out, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var barcode *string
	if p.Barcode != "" {
		barcode = &p.Barcode
	}
	const q = `
INSERT INTO products (nombre, codigo_barra, precio_venta, stock)
VALUES ($1, $2, $3::numeric, $4)
ON CONFLICT (codigo_barra) WHERE codigo_barra IS NOT NULL DO UPDATE SET
    nombre = EXCLUDED.nombre,
    precio_venta = EXCLUDED.precio_venta,
    stock = EXCLUDED.stock
RETURNING id, created_at
`
	res := p
	if err := r.pool.QueryRow(ctx, q, p.Name, barcode, p.UnitPrice.String(), p.Stock).Scan(&res.ID, &res.CreatedAt); err != nil {
		r.logger.WithError(err).WithField("barcode", p.Barcode).Error("product repo: upsert")
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"id": res.ID, "barcode": p.Barcode}).Debug("product repo: upserted")
	return &res, nil
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var (
		p       domain.Product
		barcode *string
		price   string
	)
	if err := row.Scan(&p.ID, &p.Name, &barcode, &price, &p.Stock, &p.CreatedAt); err != nil {
		return domain.Product{}, err
	}
	if barcode != nil {
		p.Barcode = *barcode
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %d: price %q: %w", p.ID, price, err)
	}
	p.UnitPrice = d
	return p, nil
}
