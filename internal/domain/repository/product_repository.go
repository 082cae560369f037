package repository

import (
	"context"

	"github.com/jhoicas/order-management-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	// Delete no falla si el producto no existe; devuelve ErrConflict si hay líneas de pedido que lo referencian.
	Delete(ctx context.Context, id int64) error
}
