package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backoffice-service/internal/models"
)

const stockThresholdsKey = "stockThresholds"

type settingsRepo struct {
	db querier
}

func (r *settingsRepo) GetStockThresholds(ctx context.Context) (*models.StockThresholds, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, stockThresholdsKey).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("get stock thresholds: %w", translate(err, "settings"))
	}

	var t models.StockThresholds
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode stock thresholds: %w", err)
	}
	return &t, nil
}

func (r *settingsRepo) SaveStockThresholds(ctx context.Context, t models.StockThresholds) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode stock thresholds: %w", err)
	}

	sql := `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, sql, stockThresholdsKey, raw, time.Now()); err != nil {
		return fmt.Errorf("save stock thresholds: %w", err)
	}
	return nil
}

type inventoryRepo struct {
	db querier
}

func (r *inventoryRepo) Upsert(ctx context.Context, rec *models.InventoryRecord) error {
	rec.UpdatedAt = time.Now()

	sql := `INSERT INTO inventory (product_id, quantity, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, sql, rec.ProductID, rec.Quantity, rec.UpdatedAt); err != nil {
		return fmt.Errorf("upsert inventory for product %d: %w", rec.ProductID, translate(err, "inventory product"))
	}
	return nil
}

func (r *inventoryRepo) Adjust(ctx context.Context, productID int, change int) error {
	result, err := r.db.Exec(ctx,
		`UPDATE inventory SET quantity = quantity + $1, updated_at = $2 WHERE product_id = $3`,
		change, time.Now(), productID,
	)
	if err != nil {
		return fmt.Errorf("adjust inventory for product %d: %w", productID, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepo) GetByProductID(ctx context.Context, productID int) (*models.InventoryRecord, error) {
	var rec models.InventoryRecord
	err := r.db.QueryRow(ctx,
		`SELECT product_id, quantity, updated_at FROM inventory WHERE product_id = $1`, productID,
	).Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get inventory for product %d: %w", productID, translate(err, "inventory"))
	}
	return &rec, nil
}
