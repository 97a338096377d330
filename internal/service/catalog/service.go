package catalog

import (
	"context"

	"wilpos-terminal/internal/domain"
	productrepo "wilpos-terminal/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the full catalog ordered by name.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}
