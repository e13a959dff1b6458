package models

import "time"

const (
	CategoryRebosados = "rebosados"
	CategoryPollo     = "pollo"
	CategoryPescado   = "pescado"
	CategoryMariscos  = "mariscos"
	CategoryPapas     = "papas"
	CategoryOther     = "otros productos"
)

// Categories is the closed set of product categories, in display order.
var Categories = []string{
	CategoryRebosados,
	CategoryPollo,
	CategoryPescado,
	CategoryMariscos,
	CategoryPapas,
	CategoryOther,
}

func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

type Product struct {
	ProductID   int               `json:"product_id"`
	Price       float64           `json:"price"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Quantity    int               `json:"quantity"`
	Category    string            `json:"category"`
	ImageURL    string            `json:"image_url,omitempty"`
	Thresholds  ProductThresholds `json:"stock_thresholds"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ProductThresholds overrides the global stock levels for one product.
// Zero fields fall back to the global defaults.
type ProductThresholds struct {
	Low    int `json:"low,omitempty"`
	Medium int `json:"medium,omitempty"`
	High   int `json:"high,omitempty"`
}

type StockThresholds struct {
	LowThreshold    int `json:"low_threshold"`
	MediumThreshold int `json:"medium_threshold"`
	HighThreshold   int `json:"high_threshold"`
}

func DefaultStockThresholds() StockThresholds {
	return StockThresholds{LowThreshold: 5, MediumThreshold: 15, HighThreshold: 25}
}

// InventoryRecord is the denormalized stock copy kept alongside products.
type InventoryRecord struct {
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	OperationIncoming   = "incoming"
	OperationOutgoing   = "outgoing"
	OperationAdjustment = "adjustment"
)

type Operation struct {
	OperationID   int       `json:"operation_id"`
	ProductID     int       `json:"product_id"`
	TransactionID *int      `json:"transaction_id,omitempty"`
	OperationType string    `json:"operation_type"`
	ChangeQuant   int       `json:"change_quant"`
	CreatedAt     time.Time `json:"created_at"`
}
