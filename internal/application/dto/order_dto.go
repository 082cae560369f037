package dto

import "time"

// CreateOrderRequest body para POST /orders/createOrder.
type CreateOrderRequest struct {
	UserID int64              `json:"userId" validate:"required,gt=0"`
	Items  []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest una línea solicitada (producto, cantidad).
type OrderItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0,max=2147483647"`
}

// OrderResponse salida de un pedido con su dueño y líneas.
type OrderResponse struct {
	ID        int64               `json:"id"`
	User      *UserResponse       `json:"user"`
	Items     []OrderItemResponse `json:"items"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

// OrderItemResponse salida de una línea de pedido.
type OrderItemResponse struct {
	ID       int64            `json:"id"`
	Product  *ProductResponse `json:"product"`
	Quantity int              `json:"quantity"`
}
