package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
	salerepo "wilpos-terminal/internal/repository/sale"
)

// ErrInvalidSale is matched by every validation failure.
var ErrInvalidSale = errors.New("invalid sale")

// ValidationError explains why a sale was refused.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string        { return e.Reason }
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidSale }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type customerRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type productRepo interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
}

// Service validates and records sales submitted by terminals.
type Service struct {
	sales     salerepo.Repository
	customers customerRepo
	products  productRepo
	logger    logrus.FieldLogger
}

func New(sales salerepo.Repository, customers customerRepo, products productRepo, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{sales: sales, customers: customers, products: products, logger: logger}
}

// Record validates draft and stores it as a sale made by userID. Amounts are
// compared and stored at two decimals. Stock is left untouched.
func (s *Service) Record(ctx context.Context, userID int64, draft domain.SaleDraft) (*domain.Sale, error) {
	if err := checkArithmetic(draft); err != nil {
		return nil, err
	}

	if _, err := s.customers.GetByID(ctx, draft.CustomerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalid("unknown customer %d", draft.CustomerID)
		}
		return nil, err
	}

	ids := make([]int64, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		ids = append(ids, l.ProductID)
	}
	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, invalid("unknown product %d", id)
		}
	}

	sale := domain.Sale{
		CustomerID:    draft.CustomerID,
		UserID:        userID,
		PaymentMethod: draft.PaymentMethod,
		Subtotal:      draft.Subtotal.Round(2),
		Tax:           draft.Tax.Round(2),
		Total:         draft.Total.Round(2),
		Lines:         make([]domain.SaleLine, 0, len(draft.Lines)),
	}
	for _, l := range draft.Lines {
		sale.Lines = append(sale.Lines, domain.SaleLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Round(2),
			Subtotal:  l.Subtotal.Round(2),
		})
	}

	created, err := s.sales.Create(ctx, sale)
	if err != nil {
		return nil, fmt.Errorf("store sale: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"sale_id": created.ID,
		"user_id": userID,
		"total":   created.Total.StringFixed(2),
		"payment": created.PaymentMethod,
	}).Info("sale: recorded")
	return created, nil
}

func checkArithmetic(d domain.SaleDraft) error {
	if len(d.Lines) == 0 {
		return invalid("sale has no lines")
	}
	if !d.PaymentMethod.Valid() {
		return invalid("unknown payment method %q", d.PaymentMethod)
	}
	sum := decimal.Zero
	for i, l := range d.Lines {
		if l.Quantity <= 0 {
			return invalid("line %d: quantity must be positive", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return invalid("line %d: negative price", i+1)
		}
		want := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		if !sameCents(want, l.Subtotal) {
			return invalid("line %d: subtotal %s does not match %s x %d", i+1, l.Subtotal.StringFixed(2), l.UnitPrice.StringFixed(2), l.Quantity)
		}
		sum = sum.Add(l.Subtotal)
	}
	if !sameCents(sum, d.Subtotal) {
		return invalid("subtotal %s does not match lines %s", d.Subtotal.StringFixed(2), sum.StringFixed(2))
	}
	if !sameCents(d.Subtotal.Add(d.Tax), d.Total) {
		return invalid("total %s does not match subtotal + tax", d.Total.StringFixed(2))
	}
	return nil
}

func sameCents(a, b decimal.Decimal) bool {
	return a.Round(2).Equal(b.Round(2))
}
