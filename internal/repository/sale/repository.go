package sale

import (
	"context"

	"wilpos-terminal/internal/domain"
)

// Repository records sales.
type Repository interface {
	// Create writes the sale and all of its lines atomically.
	Create(ctx context.Context, s domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)
}
