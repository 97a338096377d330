package customer

import (
	"context"

	"wilpos-terminal/internal/domain"
)

// Repository persists and fetches customers.
type Repository interface {
	// Ensure creates the customer with the given id, or renames it when it exists.
	Ensure(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}
