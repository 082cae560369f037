// Package mocks implementaciones testify/mock de los puertos de persistencia, para tests de casos de uso.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProductRepository = (*ProductRepository)(nil)
	_ repository.OrderRepository   = (*OrderRepository)(nil)
)

// --- Users ---

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *UserRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Products ---

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *ProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Product), args.Error(1)
}

func (m *ProductRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Orders ---

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Order), args.Error(1)
}

func (m *OrderRepository) DeleteByUser(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

// TxRunner ejecuta fn directamente con los mocks, sin transacción real.
// Sirve para ordering.TxRunner y usecase.TxRunner.
type TxRunner struct {
	Users    *UserRepository
	Products *ProductRepository
	Orders   *OrderRepository
	Calls    int
}

// NewTxRunner arma un runner con mocks nuevos.
func NewTxRunner() *TxRunner {
	return &TxRunner{Users: new(UserRepository), Products: new(ProductRepository), Orders: new(OrderRepository)}
}

func (r *TxRunner) RunOrders(_ context.Context, fn func(
	repository.UserRepository, repository.ProductRepository, repository.OrderRepository,
) error) error {
	r.Calls++
	return fn(r.Users, r.Products, r.Orders)
}
