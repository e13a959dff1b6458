package repository

import (
	"context"
	"fmt"

	"backoffice-service/internal/models"
)

type saleRepo struct {
	db   querier
	inTx bool
}

const saleSelect = `
	SELECT
		s.id,
		s.transaction_id,
		s.customer_id,
		c.name,
		s.product_id,
		p.name,
		s.seller_id,
		v.name,
		s.quantity,
		s.sale_date,
		s.unit_price,
		s.line_total,
		s.customer_address,
		s.status,
		s.delivery_date,
		s.delivery_window,
		COALESCE(s.courier_id, ''),
		COALESCE(r.name, '')
	FROM sale_items s
	JOIN customers c ON c.customer_id = s.customer_id
	JOIN products p ON p.product_id = s.product_id
	JOIN sellers v ON v.seller_id = s.seller_id
	LEFT JOIN couriers r ON r.courier_id = s.courier_id
	`

func scanSaleItem(row scanner, item *models.SaleLineItem) error {
	var status string
	err := row.Scan(&item.ID,
		&item.TransactionID,
		&item.CustomerID,
		&item.CustomerName,
		&item.ProductID,
		&item.ProductName,
		&item.SellerID,
		&item.SellerName,
		&item.Quantity,
		&item.Date,
		&item.UnitPrice,
		&item.LineTotal,
		&item.CustomerAddress,
		&status,
		&item.DeliveryDate,
		&item.DeliveryWindow,
		&item.CourierID,
		&item.CourierName,
	)
	item.Status = models.SaleStatus(status)
	return err
}

func (r *saleRepo) CreateItem(ctx context.Context, item *models.SaleLineItem) error {
	if item == nil {
		return fmt.Errorf("%w: sale item cannot be nil", ErrInvalidInput)
	}
	if item.ID <= 0 || item.TransactionID <= 0 {
		return fmt.Errorf("%w: sale item and transaction IDs must be allocated", ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}

	sql := `INSERT INTO sale_items (
		id,
		transaction_id,
		customer_id,
		product_id,
		seller_id,
		quantity,
		sale_date,
		unit_price,
		line_total,
		customer_address,
		status,
		delivery_date,
		delivery_window,
		courier_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''))
	`

	_, err := r.db.Exec(ctx, sql,
		item.ID,
		item.TransactionID,
		item.CustomerID,
		item.ProductID,
		item.SellerID,
		item.Quantity,
		item.Date,
		item.UnitPrice,
		item.LineTotal,
		item.CustomerAddress,
		string(item.Status),
		item.DeliveryDate,
		item.DeliveryWindow,
		item.CourierID,
	)
	if err != nil {
		return fmt.Errorf("failed to create sale item: %w", translate(err, "sale item"))
	}

	return nil
}

func (r *saleRepo) GetAll(ctx context.Context) ([]models.SaleLineItem, error) {
	return r.list(ctx, saleSelect+`ORDER BY s.id`)
}

func (r *saleRepo) GetByStatus(ctx context.Context, statuses ...models.SaleStatus) ([]models.SaleLineItem, error) {
	if len(statuses) == 0 {
		return r.GetAll(ctx)
	}

	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}

	return r.list(ctx, saleSelect+`WHERE s.status = ANY($1) ORDER BY s.id`, values)
}

func (r *saleRepo) GetByTransaction(ctx context.Context, transactionID int) ([]models.SaleLineItem, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: transaction ID must be positive", ErrInvalidInput)
	}

	sql := saleSelect + `WHERE s.transaction_id = $1 ORDER BY s.id`
	if r.inTx {
		sql += ` FOR UPDATE OF s`
	}

	items, err := r.list(ctx, sql, transactionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (r *saleRepo) list(ctx context.Context, sql string, args ...any) ([]models.SaleLineItem, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale items: %w", err)
	}

	defer rows.Close()

	items := []models.SaleLineItem{}

	for rows.Next() {
		var item models.SaleLineItem
		if err := scanSaleItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return items, nil
}

func (r *saleRepo) UpdateDelivery(ctx context.Context, transactionID int, u DeliveryUpdate) error {
	if u.Status == "" {
		return fmt.Errorf("%w: status cannot be empty", ErrInvalidInput)
	}

	sql := `UPDATE sale_items
		SET status = $1,
			delivery_date = $2,
			delivery_window = $3,
			courier_id = NULLIF($4, '')
		WHERE transaction_id = $5
		`

	result, err := r.db.Exec(ctx, sql,
		string(u.Status),
		u.DeliveryDate,
		u.DeliveryWindow,
		u.CourierID,
		transactionID,
	)
	if err != nil {
		return fmt.Errorf("update delivery of transaction %d: %w", transactionID, translate(err, "courier"))
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
