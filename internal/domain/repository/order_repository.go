package repository

import (
	"context"

	"github.com/jhoicas/order-management-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order y sus líneas.
type OrderRepository interface {
	// Create persiste cabecera y líneas en una sola unidad; asigna los IDs generados.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve el pedido con usuario, líneas y productos, o (nil, nil).
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error
	ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error)
	// DeleteByUser borra las líneas y luego los pedidos del usuario.
	DeleteByUser(ctx context.Context, userID int64) error
}
