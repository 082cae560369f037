package usecase

import (
	"context"

	"github.com/jhoicas/order-management-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repos atados a ella (implementado por postgres.TxRunner).
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
