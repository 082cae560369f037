package ordering

import (
	"context"

	"github.com/jhoicas/order-management-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con repos atados a ella (implementado por postgres.TxRunner).
// Si fn devuelve error no queda nada escrito.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// EventRecorder recibe los hechos del ciclo de vida de un pedido (métricas).
type EventRecorder interface {
	OrderCreated()
	OrderCancelled()
}

type noopRecorder struct{}

func (noopRecorder) OrderCreated()   {}
func (noopRecorder) OrderCancelled() {}
