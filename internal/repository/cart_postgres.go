package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/DEBAGanov/PizzaNatApp-sub002/internal/domain"
)

func (r *Repository) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	query := `SELECT product_id, name, unit_price, image_url, quantity, added_at, updated_at
	          FROM cart_lines WHERE user_id = $1 ORDER BY added_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(
			&l.ProductID,
			&l.Name,
			&l.UnitPrice,
			&l.ImageURL,
			&l.Quantity,
			&l.AddedAt,
			&l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

func (r *Repository) UpsertLine(ctx context.Context, userID string, line domain.CartLine) error {
	now := time.Now()
	if line.AddedAt.IsZero() {
		line.AddedAt = now
	}

	query := `INSERT INTO cart_lines (user_id, product_id, name, unit_price, image_url, quantity, added_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (user_id, product_id) DO UPDATE
	          SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		userID, line.ProductID, line.Name, line.UnitPrice, line.ImageURL, line.Quantity, line.AddedAt, now)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (r *Repository) UpdateQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	query := `UPDATE cart_lines SET quantity = $3, updated_at = NOW()
	          WHERE user_id = $1 AND product_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("update cart line quantity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cart line quantity: %w", err)
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *Repository) RemoveLine(ctx context.Context, userID string, productID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
