package models

import "time"

type Customer struct {
	CustomerID   int       `json:"customer_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	Email        string    `json:"email,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

const (
	PreOrderPending   = "pending"
	PreOrderCompleted = "completed"
)

// PreOrder is a standing customer request that a later sale fulfils.
type PreOrder struct {
	PreOrderID      int       `json:"preorder_id"`
	CustomerID      int       `json:"customer_id"`
	CustomerName    string    `json:"customer_name"`
	ProductID       int       `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	DeliveryDate    string    `json:"delivery_date,omitempty"`
	CustomerAddress string    `json:"customer_address"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
