package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice-service/internal/models"
)

type operationRepo struct {
	db querier
}

var validOperationTypes = map[string]bool{
	models.OperationIncoming:   true,
	models.OperationOutgoing:   true,
	models.OperationAdjustment: true,
}

func (r *operationRepo) Create(ctx context.Context, o *models.Operation) error {
	if o == nil {
		return fmt.Errorf("%w: operation cannot be nil", ErrInvalidInput)
	}
	if o.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be positive", ErrInvalidInput)
	}
	if o.ChangeQuant == 0 {
		return fmt.Errorf("%w: the variable quantity cannot be 0", ErrInvalidInput)
	}
	if !validOperationTypes[o.OperationType] {
		return fmt.Errorf("%w: invalid operation type '%s'", ErrInvalidInput, o.OperationType)
	}

	sql := ` INSERT INTO operations (
		product_id,
		transaction_id,
		operation_type,
		change_quant,
		created_at
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING operation_id
	`

	o.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, sql,
		o.ProductID,
		o.TransactionID,
		o.OperationType,
		o.ChangeQuant,
		o.CreatedAt,
	).Scan(&o.OperationID)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", translate(err, "operation product"))
	}
	return nil
}

func (r *operationRepo) GetByProductID(ctx context.Context, productID int) ([]models.Operation, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	return r.list(ctx, `WHERE product_id = $1`, productID)
}

func (r *operationRepo) GetByTransactionID(ctx context.Context, transactionID int) ([]models.Operation, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", ErrInvalidInput)
	}
	return r.list(ctx, `WHERE transaction_id = $1`, transactionID)
}

func (r *operationRepo) list(ctx context.Context, where string, arg int) ([]models.Operation, error) {
	sql := `SELECT
		operation_id,
		product_id,
		transaction_id,
		operation_type,
		change_quant,
		created_at
		FROM operations
		` + where + `
		ORDER BY operation_id`

	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get operations: %w", err)
	}

	defer rows.Close()

	operations := []models.Operation{}

	for rows.Next() {
		var o models.Operation

		err := rows.Scan(&o.OperationID,
			&o.ProductID,
			&o.TransactionID,
			&o.OperationType,
			&o.ChangeQuant,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operations: %w", err)
		}

		operations = append(operations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete rows iteration: %w", err)
	}

	return operations, nil
}
