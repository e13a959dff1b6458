package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice-service/internal/models"
)

type preOrderRepo struct {
	db querier
}

const preOrderSelect = `
	SELECT
		o.preorder_id,
		o.customer_id,
		c.name,
		o.product_id,
		p.name,
		o.quantity,
		o.delivery_date,
		o.customer_address,
		o.status,
		o.created_at
	FROM preorders o
	JOIN customers c ON c.customer_id = o.customer_id
	JOIN products p ON p.product_id = o.product_id
	`

func scanPreOrder(row scanner, o *models.PreOrder) error {
	return row.Scan(&o.PreOrderID,
		&o.CustomerID,
		&o.CustomerName,
		&o.ProductID,
		&o.ProductName,
		&o.Quantity,
		&o.DeliveryDate,
		&o.CustomerAddress,
		&o.Status,
		&o.CreatedAt,
	)
}

func (r *preOrderRepo) Create(ctx context.Context, o *models.PreOrder) error {
	if o.PreOrderID <= 0 {
		return fmt.Errorf("%w: pre-order ID must be allocated", ErrInvalidInput)
	}

	sql := `INSERT INTO preorders (
		preorder_id,
		customer_id,
		product_id,
		quantity,
		delivery_date,
		customer_address,
		status,
		created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	o.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, sql,
		o.PreOrderID,
		o.CustomerID,
		o.ProductID,
		o.Quantity,
		o.DeliveryDate,
		o.CustomerAddress,
		o.Status,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pre-order: %w", translate(err, "pre-order customer or product"))
	}
	return nil
}

func (r *preOrderRepo) GetByID(ctx context.Context, id int) (*models.PreOrder, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: pre-order ID must be positive", ErrInvalidInput)
	}

	var o models.PreOrder
	if err := scanPreOrder(r.db.QueryRow(ctx, preOrderSelect+`WHERE o.preorder_id = $1`, id), &o); err != nil {
		return nil, fmt.Errorf("get pre-order %d: %w", id, translate(err, "pre-order"))
	}
	return &o, nil
}

func (r *preOrderRepo) List(ctx context.Context, customerID int, status string) ([]models.PreOrder, error) {
	sql := preOrderSelect + `
	WHERE ($1 = 0 OR o.customer_id = $1)
	AND ($2 = '' OR o.status = $2)
	ORDER BY o.preorder_id`

	rows, err := r.db.Query(ctx, sql, customerID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get pre-orders: %w", err)
	}
	defer rows.Close()

	preorders := []models.PreOrder{}
	for rows.Next() {
		var o models.PreOrder
		if err := scanPreOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan pre-orders: %w", err)
		}
		preorders = append(preorders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	return preorders, nil
}

func (r *preOrderRepo) UpdateStatus(ctx context.Context, id int, status string) error {
	validStatuses := map[string]bool{
		models.PreOrderPending:   true,
		models.PreOrderCompleted: true,
	}
	if !validStatuses[status] {
		return fmt.Errorf("%w: invalid status '%s'", ErrInvalidInput, status)
	}

	result, err := r.db.Exec(ctx, `UPDATE preorders SET status = $1 WHERE preorder_id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update status pre-order %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *preOrderRepo) Complete(ctx context.Context, id, customerID int) error {
	sql := `UPDATE preorders SET status = $1
	WHERE preorder_id = $2 AND customer_id = $3 AND status = $4`

	result, err := r.db.Exec(ctx, sql, models.PreOrderCompleted, id, customerID, models.PreOrderPending)
	if err != nil {
		return fmt.Errorf("complete pre-order %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: pre-order %d is not pending for customer %d", ErrConflict, id, customerID)
	}
	return nil
}

func (r *preOrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM preorders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pre-orders: %w", err)
	}
	return n, nil
}
