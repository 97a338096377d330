package sale

import (
	"context"
	"errors"
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

func (r *postgresRepo) Create(ctx context.Context, s domain.Sale) (*domain.Sale, error) {
	log := r.logger.WithFields(logrus.Fields{"customer_id": s.CustomerID, "lines": len(s.Lines)})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID *int64
	if s.UserID != 0 {
		userID = &s.UserID
	}
	const insertSale = `
INSERT INTO sales (cliente_id, usuario_id, metodo_pago, subtotal, impuesto, total)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric)
RETURNING id, created_at
`
	out := s
	if err := tx.QueryRow(ctx, insertSale,
		s.CustomerID,
		userID,
		string(s.PaymentMethod),
		s.Subtotal.String(),
		s.Tax.String(),
		s.Total.String(),
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		log.WithError(err).Error("sale repo: insert sale")
		return nil, err
	}

	const insertLine = `
INSERT INTO sale_lines (venta_id, producto_id, cantidad, precio_unitario, subtotal)
VALUES ($1, $2, $3, $4::numeric, $5::numeric)
RETURNING id
`
	batch := &pgx.Batch{}
	for _, l := range s.Lines {
		batch.Queue(insertLine, out.ID, l.ProductID, l.Quantity, l.UnitPrice.String(), l.Subtotal.String())
	}
	results := tx.SendBatch(ctx, batch)
	out.Lines = make([]domain.SaleLine, len(s.Lines))
	for i, l := range s.Lines {
		l.SaleID = out.ID
		if err := results.QueryRow().Scan(&l.ID); err != nil {
			_ = results.Close()
			log.WithError(err).WithField("product_id", l.ProductID).Error("sale repo: insert line")
			return nil, err
		}
		out.Lines[i] = l
	}
	if err := results.Close(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	log.WithField("sale_id", out.ID).Debug("sale repo: created")
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	const q = `
SELECT id, cliente_id, COALESCE(usuario_id, 0), metodo_pago, subtotal::text, impuesto::text, total::text, created_at
FROM sales
WHERE id = $1
`
	var (
		s                    domain.Sale
		method               string
		subtotal, tax, total string
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.CustomerID, &s.UserID, &method, &subtotal, &tax, &total, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.PaymentMethod = domain.PaymentMethod(method)
	if s.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, err
	}
	if s.Tax, err = decimal.NewFromString(tax); err != nil {
		return nil, err
	}
	if s.Total, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}

	const lq = `
SELECT id, venta_id, producto_id, cantidad, precio_unitario::text, subtotal::text
FROM sale_lines
WHERE venta_id = $1
ORDER BY id
`
	rows, err := r.pool.Query(ctx, lq, id)
	if err != nil {
		return nil, err
	}
	s.Lines, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SaleLine, error) {
		var (
			l               domain.SaleLine
			price, subtotal string
		)
		if err := row.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &price, &subtotal); err != nil {
			return l, err
		}
		var err error
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return l, err
		}
		l.Subtotal, err = decimal.NewFromString(subtotal)
		return l, err
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
