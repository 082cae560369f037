package usecase

import (
	"context"

	"github.com/jhoicas/order-management-api/internal/application/dto"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
	"github.com/jhoicas/order-management-api/pkg/logger"
)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo repository.UserRepository
	tx   TxRunner
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia y el runner transaccional.
func NewUserUseCase(repo repository.UserRepository, tx TxRunner) *UserUseCase {
	return &UserUseCase{repo: repo, tx: tx}
}

// GetByID obtiene un usuario por ID. Devuelve (nil, nil) si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return dto.FromUser(user), nil
}

// Delete elimina al usuario junto con sus pedidos y líneas, en una sola transacción.
// Un ID inexistente no es error.
func (uc *UserUseCase) Delete(ctx context.Context, id int64) error {
	err := uc.tx.RunOrders(ctx, func(
		users repository.UserRepository,
		_ repository.ProductRepository,
		orders repository.OrderRepository,
	) error {
		if err := orders.DeleteByUser(ctx, id); err != nil {
			return err
		}
		return users.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info().Int64("user_id", id).Msg("usuario eliminado")
	return nil
}
