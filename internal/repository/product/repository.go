package product

import (
	"context"

	"wilpos-terminal/internal/domain"
)

// Repository reads and maintains the product catalog.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	// Upsert inserts p, or updates the product sharing its barcode.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
