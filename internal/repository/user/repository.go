package user

import (
	"context"

	"wilpos-terminal/internal/domain"
)

// Repository persists cashier accounts.
type Repository interface {
	// Upsert creates the user or, when the username exists, updates its
	// name, role and password.
	Upsert(ctx context.Context, u domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
