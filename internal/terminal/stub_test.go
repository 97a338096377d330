package terminal

import (
	"context"
	"sync"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/wire"
)

type stubBackend struct {
	mu sync.Mutex

	healthErr     error
	healthCalls   int
	lastHealthURL string

	loginResp    wire.LoginResponse
	loginErr     error
	loginCalls   int
	lastLoginAPI string
	lastUsername string

	products      []domain.Product
	productsErr   error
	productsCalls int
	lastToken     string

	saleResp    wire.SaleResponse
	saleErr     error
	saleCalls   int
	lastDraft   domain.SaleDraft
	saleStarted chan struct{}
	saleGate    chan struct{}
}

func (s *stubBackend) Health(ctx context.Context, healthURL string) error {
	s.mu.Lock()
	s.healthCalls++
	s.lastHealthURL = healthURL
	err := s.healthErr
	s.mu.Unlock()
	return err
}

func (s *stubBackend) Login(_ context.Context, apiBase, username, _ string) (wire.LoginResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loginCalls++
	s.lastLoginAPI = apiBase
	s.lastUsername = username
	return s.loginResp, s.loginErr
}

func (s *stubBackend) Products(_ context.Context, _, token string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productsCalls++
	s.lastToken = token
	return s.products, s.productsErr
}

func (s *stubBackend) CreateSale(ctx context.Context, _, token string, draft domain.SaleDraft) (wire.SaleResponse, error) {
	s.mu.Lock()
	s.saleCalls++
	s.lastToken = token
	s.lastDraft = draft
	started, gate := s.saleStarted, s.saleGate
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return wire.SaleResponse{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saleResp, s.saleErr
}

func (s *stubBackend) calls() (health, login, products, sales int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthCalls, s.loginCalls, s.productsCalls, s.saleCalls
}
