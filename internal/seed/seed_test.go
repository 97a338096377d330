package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wilpos-terminal/internal/domain"
	"wilpos-terminal/internal/logging"
)

type memCustomers struct {
	byID map[int64]domain.Customer
	err  error
}

func (m *memCustomers) Ensure(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.byID[c.ID] = c
	return &c, nil
}

func (m *memCustomers) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

type memUsers struct {
	byName map[string]domain.User
}

func (m *memUsers) Upsert(_ context.Context, u domain.User) (*domain.User, error) {
	if existing, ok := m.byName[u.Username]; ok {
		u.ID = existing.ID
	} else {
		u.ID = int64(len(m.byName) + 1)
	}
	m.byName[u.Username] = u
	return &u, nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := m.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

type memProducts struct {
	byBarcode map[string]domain.Product
}

func (m *memProducts) List(context.Context) ([]domain.Product, error) { return nil, nil }

func (m *memProducts) GetByIDs(context.Context, []int64) (map[int64]domain.Product, error) {
	return nil, nil
}

func (m *memProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	m.byBarcode[p.Barcode] = p
	return &p, nil
}

func newRepos() (repos, *memCustomers, *memUsers, *memProducts) {
	c := &memCustomers{byID: map[int64]domain.Customer{}}
	u := &memUsers{byName: map[string]domain.User{}}
	p := &memProducts{byBarcode: map[string]domain.Product{}}
	return repos{customers: c, users: u, products: p}, c, u, p
}

func TestApplySeedsDemoData(t *testing.T) {
	r, customers, users, products := newRepos()
	require.NoError(t, apply(context.Background(), r, logging.Discard()))

	walkIn, err := customers.GetByID(context.Background(), domain.WalkInCustomerID)
	require.NoError(t, err)
	assert.Equal(t, "Cliente general", walkIn.Name)

	cajero, err := users.GetByUsername(context.Background(), "cajero")
	require.NoError(t, err)
	assert.True(t, cajero.Active)
	assert.Equal(t, "cajero", cajero.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(cajero.PasswordHash), []byte("cajero123")))

	coke, ok := products.byBarcode["7501055300075"]
	require.True(t, ok)
	assert.Equal(t, "50.00", coke.UnitPrice.StringFixed(2))
}

func TestApplyIsIdempotent(t *testing.T) {
	r, _, users, products := newRepos()
	require.NoError(t, apply(context.Background(), r, logging.Discard()))
	require.NoError(t, apply(context.Background(), r, logging.Discard()))

	assert.Len(t, users.byName, 2)
	assert.Len(t, products.byBarcode, 8)
}

func TestApplyStopsOnCustomerError(t *testing.T) {
	r, customers, users, _ := newRepos()
	customers.err = errors.New("db down")

	err := apply(context.Background(), r, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk-in customer")
	assert.Empty(t, users.byName)
}
