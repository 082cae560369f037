package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/order-management-api/internal/application/dto"
	"github.com/jhoicas/order-management-api/internal/domain"
	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
	"github.com/jhoicas/order-management-api/pkg/logger"
)

// ProductUseCase casos de uso del catálogo: alta, listado y borrado.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Add persiste el producto tal como llega (sin deduplicar por nombre).
// El precio debe ser > 0, con a lo sumo dos decimales y no mayor que entity.MaxPrice.
func (uc *ProductUseCase) Add(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.ValidPrice(in.Price) {
		return nil, fmt.Errorf("%w: precio fuera de rango o con más de %d decimales", domain.ErrInvalidInput, entity.PriceScale)
	}
	product := &entity.Product{
		Name:      name,
		Price:     in.Price,
		CreatedAt: uc.now(),
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info().Int64("product_id", product.ID).Str("name", product.Name).Msg("producto creado")
	return dto.FromProduct(product), nil
}

// List devuelve todos los productos, sin paginar.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.FromProducts(list), nil
}

// Delete borra un producto. Si no existe no hace nada.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("product_id", id).Msg("producto eliminado")
	return nil
}
