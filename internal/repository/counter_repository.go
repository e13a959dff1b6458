package repository

import (
	"context"
	"fmt"
)

type counterRepo struct {
	db querier
}

func (r *counterRepo) Next(ctx context.Context, name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: counter name cannot be empty", ErrInvalidInput)
	}

	sql := `INSERT INTO counters (name, last_id) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET last_id = counters.last_id + 1
		RETURNING last_id`

	var id int
	if err := r.db.QueryRow(ctx, sql, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate id from counter %s: %w", name, err)
	}
	return id, nil
}
