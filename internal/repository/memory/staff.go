package memory

import (
	"context"
	"fmt"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

type sellerRepo struct{ s *Store }

func (r *sellerRepo) Create(_ context.Context, s *models.Seller) error {
	if s.SellerID == "" {
		return fmt.Errorf("%w: seller ID must be generated", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.sellers[s.SellerID]; ok {
			return fmt.Errorf("%w: seller already exists", repository.ErrDuplicate)
		}
		s.RegisteredAt = time.Now()
		d.sellers[s.SellerID] = *s
		return nil
	})
}

func (r *sellerRepo) GetByID(_ context.Context, id string) (*models.Seller, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	var out models.Seller
	err := r.s.read(func(d *data) error {
		s, ok := d.sellers[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sellerRepo) GetAll(_ context.Context) ([]models.Seller, error) {
	var out []models.Seller
	err := r.s.read(func(d *data) error {
		out = sortedValues(d.sellers)
		return nil
	})
	return out, err
}

func (r *sellerRepo) Update(_ context.Context, s *models.Seller) error {
	return r.s.write(func(d *data) error {
		existing, ok := d.sellers[s.SellerID]
		if !ok {
			return repository.ErrNotFound
		}
		s.RegisteredAt = existing.RegisteredAt
		d.sellers[s.SellerID] = *s
		return nil
	})
}

type courierRepo struct{ s *Store }

func (r *courierRepo) Create(_ context.Context, c *models.Courier) error {
	if c.CourierID == "" {
		return fmt.Errorf("%w: courier ID must be generated", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.couriers[c.CourierID]; ok {
			return fmt.Errorf("%w: courier already exists", repository.ErrDuplicate)
		}
		c.RegisteredAt = time.Now()
		d.couriers[c.CourierID] = *c
		return nil
	})
}

func (r *courierRepo) GetByID(_ context.Context, id string) (*models.Courier, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	var out models.Courier
	err := r.s.read(func(d *data) error {
		c, ok := d.couriers[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *courierRepo) GetAll(_ context.Context) ([]models.Courier, error) {
	var out []models.Courier
	err := r.s.read(func(d *data) error {
		out = sortedValues(d.couriers)
		return nil
	})
	return out, err
}

func (r *courierRepo) Update(_ context.Context, c *models.Courier) error {
	return r.s.write(func(d *data) error {
		existing, ok := d.couriers[c.CourierID]
		if !ok {
			return repository.ErrNotFound
		}
		c.RegisteredAt = existing.RegisteredAt
		d.couriers[c.CourierID] = *c
		return nil
	})
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	if u.UID == "" {
		return fmt.Errorf("%w: user ID must be generated", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.users[u.UID]; ok {
			return fmt.Errorf("%w: user already exists", repository.ErrDuplicate)
		}
		for _, other := range d.users {
			if other.Email == u.Email {
				return fmt.Errorf("%w: email already exists", repository.ErrDuplicate)
			}
		}
		u.CreatedAt = time.Now()
		d.users[u.UID] = *u
		return nil
	})
}

func (r *userRepo) GetByUID(_ context.Context, uid string) (*models.User, error) {
	return r.find("uid", uid, func(u models.User) bool { return u.UID == uid })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find("email", email, func(u models.User) bool { return u.Email == email })
}

func (r *userRepo) find(column, value string, match func(models.User) bool) (*models.User, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: %s cannot be empty", repository.ErrInvalidInput, column)
	}
	var out *models.User
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			if match(u) {
				u := u
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}
