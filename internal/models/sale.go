package models

type SaleStatus string

const (
	StatusPendingScheduling SaleStatus = "pending_scheduling"
	StatusScheduled         SaleStatus = "scheduled"
	StatusInDelivery        SaleStatus = "in_delivery"
	StatusDelivered         SaleStatus = "delivered"
)

const (
	WindowMorning   = "mañana"
	WindowAfternoon = "tarde"
)

// SaleLineItem is the persisted unit of a sale. Name fields are resolved
// from the referenced rows when reading and are never written.
type SaleLineItem struct {
	ID              int        `json:"id"`
	TransactionID   int        `json:"transaction_id"`
	CustomerID      int        `json:"customer_id"`
	CustomerName    string     `json:"customer_name"`
	ProductID       int        `json:"product_id"`
	ProductName     string     `json:"product_name"`
	SellerID        string     `json:"seller_id"`
	SellerName      string     `json:"seller_name"`
	Quantity        int        `json:"quantity"`
	Date            string     `json:"date"`
	UnitPrice       float64    `json:"unit_price"`
	LineTotal       float64    `json:"line_total"`
	CustomerAddress string     `json:"customer_address"`
	Status          SaleStatus `json:"status"`
	DeliveryDate    string     `json:"delivery_date,omitempty"`
	DeliveryWindow  string     `json:"delivery_window,omitempty"`
	CourierID       string     `json:"courier_id,omitempty"`
	CourierName     string     `json:"courier_name,omitempty"`
}

// Sale is every line item sharing one transaction id.
type Sale struct {
	TransactionID   int            `json:"transaction_id"`
	CustomerID      int            `json:"customer_id"`
	CustomerName    string         `json:"customer_name"`
	SellerID        string         `json:"seller_id"`
	SellerName      string         `json:"seller_name"`
	Date            string         `json:"date"`
	CustomerAddress string         `json:"customer_address"`
	Status          SaleStatus     `json:"status"`
	DeliveryDate    string         `json:"delivery_date,omitempty"`
	DeliveryWindow  string         `json:"delivery_window,omitempty"`
	CourierID       string         `json:"courier_id,omitempty"`
	CourierName     string         `json:"courier_name,omitempty"`
	Total           float64        `json:"total"`
	Items           []SaleLineItem `json:"items"`
}
