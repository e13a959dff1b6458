// Package stock classifies product quantities into display levels.
package stock

import (
	"errors"

	"backoffice-service/internal/models"
)

type Level string

const (
	LevelLow    Level = "Stock Bajo"
	LevelMedium Level = "Stock Medio"
	LevelNormal Level = "Stock Normal"
	LevelHigh   Level = "Stock Alto"
)

var ErrInvalidThresholds = errors.New("thresholds must be positive and ordered low < medium < high")

// Effective merges per-product overrides with the global defaults field by
// field: an unset (zero) override keeps the default.
func Effective(p models.ProductThresholds, defaults models.StockThresholds) models.StockThresholds {
	out := defaults
	if p.Low > 0 {
		out.LowThreshold = p.Low
	}
	if p.Medium > 0 {
		out.MediumThreshold = p.Medium
	}
	if p.High > 0 {
		out.HighThreshold = p.High
	}
	return out
}

// Classify returns the level of quantity. Quantities between medium and
// high (inclusive of high) are Normal.
func Classify(quantity int, t models.StockThresholds) Level {
	switch {
	case quantity <= t.LowThreshold:
		return LevelLow
	case quantity <= t.MediumThreshold:
		return LevelMedium
	case quantity > t.HighThreshold:
		return LevelHigh
	default:
		return LevelNormal
	}
}

func ClassifyProduct(p models.Product, defaults models.StockThresholds) Level {
	return Classify(p.Quantity, Effective(p.Thresholds, defaults))
}

func Validate(t models.StockThresholds) error {
	if t.LowThreshold <= 0 || t.MediumThreshold <= t.LowThreshold || t.HighThreshold <= t.MediumThreshold {
		return ErrInvalidThresholds
	}
	return nil
}
