package repository

import (
	"context"
	"fmt"
	"time"

	"backoffice-service/internal/models"
)

type sellerRepo struct {
	db querier
}

func (r *sellerRepo) Create(ctx context.Context, s *models.Seller) error {
	if s.SellerID == "" {
		return fmt.Errorf("%w: seller ID must be generated", ErrInvalidInput)
	}

	s.RegisteredAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO sellers (seller_id, name, email, registered_at) VALUES ($1, $2, $3, $4)`,
		s.SellerID, s.Name, s.Email, s.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("create seller: %w", translate(err, "seller"))
	}
	return nil
}

func (r *sellerRepo) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	var s models.Seller
	err := r.db.QueryRow(ctx,
		`SELECT seller_id, name, email, registered_at FROM sellers WHERE seller_id = $1`, id,
	).Scan(&s.SellerID, &s.Name, &s.Email, &s.RegisteredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller %s: %w", id, translate(err, "seller"))
	}
	return &s, nil
}

func (r *sellerRepo) GetAll(ctx context.Context) ([]models.Seller, error) {
	rows, err := r.db.Query(ctx, `SELECT seller_id, name, email, registered_at FROM sellers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sellers: %w", err)
	}
	defer rows.Close()

	sellers := []models.Seller{}
	for rows.Next() {
		var s models.Seller
		if err := rows.Scan(&s.SellerID, &s.Name, &s.Email, &s.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan sellers: %w", err)
		}
		sellers = append(sellers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	return sellers, nil
}

func (r *sellerRepo) Update(ctx context.Context, s *models.Seller) error {
	err := r.db.QueryRow(ctx,
		`UPDATE sellers SET name = $1, email = $2 WHERE seller_id = $3 RETURNING registered_at`,
		s.Name, s.Email, s.SellerID,
	).Scan(&s.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to update seller %s: %w", s.SellerID, translate(err, "seller"))
	}
	return nil
}

type courierRepo struct {
	db querier
}

func (r *courierRepo) Create(ctx context.Context, c *models.Courier) error {
	if c.CourierID == "" {
		return fmt.Errorf("%w: courier ID must be generated", ErrInvalidInput)
	}

	c.RegisteredAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO couriers (courier_id, name, email, available, registered_at) VALUES ($1, $2, $3, $4, $5)`,
		c.CourierID, c.Name, c.Email, c.Available, c.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("create courier: %w", translate(err, "courier"))
	}
	return nil
}

func (r *courierRepo) GetByID(ctx context.Context, id string) (*models.Courier, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	var c models.Courier
	err := r.db.QueryRow(ctx,
		`SELECT courier_id, name, email, available, registered_at FROM couriers WHERE courier_id = $1`, id,
	).Scan(&c.CourierID, &c.Name, &c.Email, &c.Available, &c.RegisteredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get courier %s: %w", id, translate(err, "courier"))
	}
	return &c, nil
}

func (r *courierRepo) GetAll(ctx context.Context) ([]models.Courier, error) {
	rows, err := r.db.Query(ctx, `SELECT courier_id, name, email, available, registered_at FROM couriers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all couriers: %w", err)
	}
	defer rows.Close()

	couriers := []models.Courier{}
	for rows.Next() {
		var c models.Courier
		if err := rows.Scan(&c.CourierID, &c.Name, &c.Email, &c.Available, &c.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan couriers: %w", err)
		}
		couriers = append(couriers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	return couriers, nil
}

func (r *courierRepo) Update(ctx context.Context, c *models.Courier) error {
	err := r.db.QueryRow(ctx,
		`UPDATE couriers SET name = $1, email = $2, available = $3 WHERE courier_id = $4 RETURNING registered_at`,
		c.Name, c.Email, c.Available, c.CourierID,
	).Scan(&c.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to update courier %s: %w", c.CourierID, translate(err, "courier"))
	}
	return nil
}

type userRepo struct {
	db querier
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	if u.UID == "" {
		return fmt.Errorf("%w: user ID must be generated", ErrInvalidInput)
	}

	u.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (uid, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.UID, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", translate(err, "email"))
	}
	return nil
}

func (r *userRepo) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	return r.getBy(ctx, "uid", uid)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepo) getBy(ctx context.Context, column, value string) (*models.User, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, column)
	}

	var (
		u    models.User
		role string
	)
	err := r.db.QueryRow(ctx,
		`SELECT uid, email, password_hash, role, created_at FROM users WHERE `+column+` = $1`, value,
	).Scan(&u.UID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, translate(err, "user"))
	}
	u.Role = models.Role(role)
	return &u, nil
}
