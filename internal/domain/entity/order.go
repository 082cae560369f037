package entity

import "time"

// OrderStatus estado de un pedido. Solo avanza: CREATED -> CANCELLED.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order representa la cabecera de un pedido con sus líneas.
type Order struct {
	ID        int64
	UserID    int64
	User      *User // se carga en lecturas y al crear
	Status    OrderStatus
	CreatedAt time.Time
	Items     []OrderItem
}

// NewOrder arma un pedido en estado CREATED para el usuario dado.
func NewOrder(user *User, now time.Time) *Order {
	return &Order{
		UserID:    user.ID,
		User:      user,
		Status:    OrderStatusCreated,
		CreatedAt: now,
	}
}

// AddItem agrega una línea ligada a este pedido.
func (o *Order) AddItem(product *Product, quantity int) {
	o.Items = append(o.Items, OrderItem{
		OrderID:   o.ID,
		ProductID: product.ID,
		Product:   product,
		Quantity:  quantity,
	})
}

// Cancel pasa el pedido a CANCELLED. Cancelar dos veces deja el mismo estado.
func (o *Order) Cancel() {
	o.Status = OrderStatusCancelled
}
