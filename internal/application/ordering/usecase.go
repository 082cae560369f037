// Package ordering contiene el flujo de pedidos: creación transaccional, consulta y cancelación.
package ordering

import (
	"context"
	"time"

	"github.com/jhoicas/order-management-api/internal/application/dto"
	"github.com/jhoicas/order-management-api/internal/domain"
	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
	"github.com/jhoicas/order-management-api/pkg/logger"
)

// OrderUseCase orquesta los casos de uso de pedidos.
type OrderUseCase struct {
	orders repository.OrderRepository
	tx     TxRunner
	events EventRecorder
	now    func() time.Time
}

// NewOrderUseCase construye el caso de uso. events puede ser nil.
func NewOrderUseCase(orders repository.OrderRepository, tx TxRunner, events EventRecorder) *OrderUseCase {
	if events == nil {
		events = noopRecorder{}
	}
	return &OrderUseCase{orders: orders, tx: tx, events: events, now: time.Now}
}

// CreateOrder valida usuario y productos y persiste el pedido en estado CREATED.
// Todo ocurre en una sola transacción: si falta el usuario o cualquier producto no se escribe nada.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	log := logger.FromContext(ctx)
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 || it.Quantity > entity.MaxQuantity {
			return nil, domain.ErrInvalidInput
		}
	}

	var order *entity.Order
	err := uc.tx.RunOrders(ctx, func(
		users repository.UserRepository,
		products repository.ProductRepository,
		orders repository.OrderRepository,
	) error {
		user, err := users.GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			log.Error().Int64("user_id", in.UserID).Msg("usuario no encontrado al crear pedido")
			return domain.ErrUserNotFound
		}

		o := entity.NewOrder(user, uc.now())
		for _, it := range in.Items {
			product, err := products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				log.Error().Int64("product_id", it.ProductID).Msg("producto no encontrado al crear pedido")
				return domain.ErrProductNotFound
			}
			o.AddItem(product, it.Quantity)
		}

		if err := orders.Create(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.OrderCreated()
	log.Info().Int64("order_id", order.ID).Int64("user_id", order.UserID).Int("items", len(order.Items)).Msg("pedido creado")
	return dto.FromOrder(order), nil
}

// GetOrder devuelve un pedido con su usuario y líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, id int64) (*dto.OrderResponse, error) {
	order, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Int64("order_id", id).Msg("pedido consultado")
	return dto.FromOrder(order), nil
}

// CancelOrder pasa el pedido a CANCELLED. Cancelar uno ya cancelado vuelve a escribir el mismo estado.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, id int64) error {
	order, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	order.Cancel()
	if err := uc.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		return err
	}
	uc.events.OrderCancelled()
	logger.FromContext(ctx).Info().Int64("order_id", id).Msg("pedido cancelado")
	return nil
}

// GetOrdersByUser lista los pedidos de un usuario. No valida que el usuario exista.
func (uc *OrderUseCase) GetOrdersByUser(ctx context.Context, userID int64) ([]dto.OrderResponse, error) {
	list, err := uc.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Int64("user_id", userID).Int("orders", len(list)).Msg("pedidos del usuario")
	return dto.FromOrders(list), nil
}

func (uc *OrderUseCase) load(ctx context.Context, id int64) (*entity.Order, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		logger.FromContext(ctx).Error().Int64("order_id", id).Msg("pedido no encontrado")
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
