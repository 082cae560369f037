package entity

import "math"

// MaxQuantity mayor cantidad por línea (columna INTEGER).
const MaxQuantity = math.MaxInt32

// OrderItem representa una línea (producto, cantidad) de un pedido.
// Su ciclo de vida está atado al pedido padre.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Product   *Product
	Quantity  int
}
