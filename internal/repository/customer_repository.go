package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice-service/internal/models"
)

type customerRepo struct {
	db querier
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	if c.CustomerID <= 0 {
		return fmt.Errorf("%w: customer ID must be allocated", ErrInvalidInput)
	}

	sql := `
		INSERT INTO customers (
			customer_id,
			name,
			address,
			email,
			phone_number,
			registered_at
	) VALUES ($1, $2, $3, $4, $5, $6)
	`

	c.RegisteredAt = time.Now()

	_, err := r.db.Exec(ctx, sql,
		c.CustomerID,
		c.Name,
		c.Address,
		c.Email,
		c.PhoneNumber,
		c.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", translate(err, "customer"))
	}

	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `
		SELECT
		customer_id,
		name,
		address,
		email,
		phone_number,
		registered_at
		FROM customers WHERE customer_id = $1
	`

	var customer models.Customer

	err := r.db.QueryRow(ctx, sql, id).Scan(
		&customer.CustomerID,
		&customer.Name,
		&customer.Address,
		&customer.Email,
		&customer.PhoneNumber,
		&customer.RegisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer with id %d: %w", id, translate(err, "customer"))
	}

	return &customer, nil
}

func (r *customerRepo) GetAll(ctx context.Context) ([]models.Customer, error) {
	sql := `
	SELECT
	customer_id,
	name,
	address,
	email,
	phone_number,
	registered_at
	FROM customers
	ORDER BY customer_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all customers: %w", err)
	}

	defer rows.Close()

	customers := []models.Customer{}

	for rows.Next() {
		var c models.Customer

		err := rows.Scan(&c.CustomerID,
			&c.Name,
			&c.Address,
			&c.Email,
			&c.PhoneNumber,
			&c.RegisteredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customers: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return customers, nil
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	if c.CustomerID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `
	UPDATE customers
	SET
		name = $1,
		address = $2,
		email = $3,
		phone_number = $4
	WHERE customer_id = $5
	RETURNING registered_at
	`

	err := r.db.QueryRow(ctx, sql,
		c.Name,
		c.Address,
		c.Email,
		c.PhoneNumber,
		c.CustomerID,
	).Scan(&c.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to update customer %d: %w", c.CustomerID, translate(err, "customer"))
	}

	return nil
}

func (r *customerRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
