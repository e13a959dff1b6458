package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice-service/internal/models"
)

type productRepo struct {
	db   querier
	inTx bool
}

type scanner interface {
	Scan(dest ...any) error
}

const productColumns = `
	product_id,
	name,
	price,
	description,
	quantity,
	category,
	image_url,
	threshold_low,
	threshold_medium,
	threshold_high,
	created_at,
	updated_at`

func scanProduct(row scanner, p *models.Product) error {
	return row.Scan(&p.ProductID,
		&p.Name,
		&p.Price,
		&p.Description,
		&p.Quantity,
		&p.Category,
		&p.ImageURL,
		&p.Thresholds.Low,
		&p.Thresholds.Medium,
		&p.Thresholds.High,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be allocated", ErrInvalidInput)
	}

	sql := `
		INSERT INTO products (
			product_id,
			name,
			price,
			description,
			quantity,
			category,
			image_url,
			threshold_low,
			threshold_medium,
			threshold_high,
			created_at,
			updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := r.db.Exec(ctx, sql,
		p.ProductID,
		p.Name,
		p.Price,
		p.Description,
		p.Quantity,
		p.Category,
		p.ImageURL,
		p.Thresholds.Low,
		p.Thresholds.Medium,
		p.Thresholds.High,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err, "product name"))
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	return r.get(ctx, id, false)
}

func (r *productRepo) GetForUpdate(ctx context.Context, id int) (*models.Product, error) {
	return r.get(ctx, id, r.inTx)
}

func (r *productRepo) get(ctx context.Context, id int, lock bool) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + productColumns + ` FROM products WHERE product_id = $1`
	if lock {
		sql += ` FOR UPDATE`
	}

	var product models.Product
	if err := scanProduct(r.db.QueryRow(ctx, sql, id), &product); err != nil {
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, translate(err, "product"))
	}

	return &product, nil
}

func (r *productRepo) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, `SELECT`+productColumns+` FROM products ORDER BY product_id`)
}

func (r *productRepo) GetByCategory(ctx context.Context, category string) ([]models.Product, error) {
	if category == "" {
		return nil, fmt.Errorf("category cannot be empty: %w", ErrInvalidInput)
	}
	return r.list(ctx, `SELECT`+productColumns+` FROM products WHERE category = $1 ORDER BY product_id`, category)
}

func (r *productRepo) Search(ctx context.Context, term string) ([]models.Product, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	return r.list(ctx, `SELECT`+productColumns+` FROM products WHERE strpos(LOWER(name), $1) > 0 ORDER BY product_id`, needle)
}

func (r *productRepo) list(ctx context.Context, sql string, args ...any) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `
	UPDATE products
	SET
		name = $1,
		price = $2,
		description = $3,
		quantity = $4,
		category = $5,
		image_url = $6,
		threshold_low = $7,
		threshold_medium = $8,
		threshold_high = $9,
		updated_at = $10
	WHERE product_id = $11
	RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, sql,
		p.Name,
		p.Price,
		p.Description,
		p.Quantity,
		p.Category,
		p.ImageURL,
		p.Thresholds.Low,
		p.Thresholds.Medium,
		p.Thresholds.High,
		time.Now(),
		p.ProductID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ProductID, translate(err, "product name"))
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, translate(err, "product has sales or pre-orders"))
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *productRepo) UpdateQuantity(ctx context.Context, id int, change int) error {
	sql := `UPDATE products SET
		quantity = quantity + $1,
		updated_at = $2
	WHERE product_id = $3 AND quantity + $1 >= 0
	`

	result, err := r.db.Exec(ctx, sql, change, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update product quantity %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: product %d, requested change %d", ErrNotEnough, id, change)
	}

	return nil
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
