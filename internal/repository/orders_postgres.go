package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const orderColumns = `id, remote_id, user_id, status, items, total_amount, delivery_address,
	customer_name, customer_phone, notes, payment_method, delivery_method, delivery_cost,
	created_at, updated_at`

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (` + orderColumns + `)
	          VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.RemoteID,
		order.UserID,
		order.Status,
		itemsJSON,
		order.TotalAmount,
		order.DeliveryAddress,
		order.CustomerName,
		order.CustomerPhone,
		order.Notes,
		order.PaymentMethod,
		order.DeliveryMethod,
		order.DeliveryCost)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.queryOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *Repository) GetOrderByRemoteID(ctx context.Context, remoteID string) (*domain.Order, error) {
	return r.queryOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE remote_id = $1`, remoteID)
}

func (r *Repository) queryOrder(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *Repository) ListOrdersByStatus(ctx context.Context, userID string, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID, status)
}

func (r *Repository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !exists {
			return ErrOrderNotFound
		}
		return ErrStaleStatus
	}
	return nil
}

// ReconcileAndClearCart runs in a single transaction so a submitted order and
// a still-populated cart can never be observed together.
func (r *Repository) ReconcileAndClearCart(ctx context.Context, id uuid.UUID, remoteID string, userID string, productIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reconcile tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE orders SET remote_id = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		id, remoteID, domain.OrderStatusSubmitted)
	if err != nil {
		return fmt.Errorf("reconcile order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reconcile order: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = ANY($2)`,
		userID, pq.Array(productIDs))
	if err != nil {
		return fmt.Errorf("clear submitted cart lines: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reconcile tx: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var remoteID sql.NullString
	var itemsJSON []byte
	if err := row.Scan(
		&order.ID,
		&remoteID,
		&order.UserID,
		&order.Status,
		&itemsJSON,
		&order.TotalAmount,
		&order.DeliveryAddress,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.Notes,
		&order.PaymentMethod,
		&order.DeliveryMethod,
		&order.DeliveryCost,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	order.RemoteID = remoteID.String
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}
