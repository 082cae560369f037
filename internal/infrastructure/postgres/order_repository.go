package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/order-management-api/internal/domain"
	"github.com/jhoicas/order-management-api/internal/domain/entity"
	"github.com/jhoicas/order-management-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const selectOrderWithUser = `
		SELECT o.id, o.status, o.created_at,
		       u.id, u.name, u.email, u.role, u.created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id`

const selectItemsWithProduct = `
		SELECT i.id, i.order_id, i.quantity,
		       p.id, p.name, p.price, p.created_at
		FROM order_items i
		JOIN products p ON p.id = i.product_id`

// Create persiste la cabecera y sus líneas en una sola transacción (savepoint si q ya es una tx).
func (r *OrderRepo) Create(ctx context.Context, order *entity.Order) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, status, created_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		order.UserID, string(order.Status), order.CreatedAt,
	).Scan(&order.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)
			RETURNING id`,
			item.OrderID, item.ProductID, item.Quantity,
		).Scan(&item.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrProductNotFound
			}
			if isOutOfRange(err) {
				return fmt.Errorf("%w: cantidad no admitida", domain.ErrInvalidInput)
			}
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// GetByID obtiene el pedido con su usuario, líneas y productos.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	row := r.q.QueryRow(ctx, selectOrderWithUser+` WHERE o.id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// UpdateStatus cambia el estado de un pedido existente.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// ListByUser lista los pedidos de un usuario (más antiguos primero). Nunca devuelve nil.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, selectOrderWithUser+` WHERE o.user_id = $1 ORDER BY o.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	list := make([]*entity.Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Items = items[o.ID]
	}
	return list, nil
}

// DeleteByUser borra primero las líneas y luego los pedidos del usuario.
func (r *OrderRepo) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.q.Exec(ctx, `
		DELETE FROM order_items
		WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("delete order items by user: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM orders WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete orders by user: %w", err)
	}
	return nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, selectItemsWithProduct+` WHERE i.order_id = ANY($1) ORDER BY i.id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[int64][]entity.OrderItem, len(orderIDs))
	for rows.Next() {
		var it entity.OrderItem
		var p entity.Product
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Quantity, &p.ID, &p.Name, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		it.ProductID = p.ID
		it.Product = &p
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	return byOrder, rows.Err()
}

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var u entity.User
	var status string
	if err := row.Scan(&o.ID, &status, &o.CreatedAt, &u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)
	o.UserID = u.ID
	o.User = &u
	return &o, nil
}
