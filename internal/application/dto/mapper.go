package dto

import "github.com/jhoicas/order-management-api/internal/domain/entity"

// FromUser convierte la entidad en su salida pública (sin hash de password).
func FromUser(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func FromProduct(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
	}
}

func FromProducts(list []*entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *FromProduct(p))
	}
	return out
}

// FromOrder arma la salida del pedido; Items nunca es nil para que el JSON sea [].
func FromOrder(o *entity.Order) *OrderResponse {
	if o == nil {
		return nil
	}
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ID:       it.ID,
			Product:  FromProduct(it.Product),
			Quantity: it.Quantity,
		})
	}
	return &OrderResponse{
		ID:        o.ID,
		User:      FromUser(o.User),
		Items:     items,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func FromOrders(list []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, *FromOrder(o))
	}
	return out
}
