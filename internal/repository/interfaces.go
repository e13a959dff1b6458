package repository

import (
	"context"

	"backoffice-service/internal/models"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id int) (*models.Customer, error)
	GetAll(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Count(ctx context.Context) (int, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int) error

	// GetForUpdate reads the product and, inside a transaction, locks it
	// until commit.
	GetForUpdate(ctx context.Context, id int) (*models.Product, error)
	// UpdateQuantity applies change only if the result stays non-negative.
	UpdateQuantity(ctx context.Context, id int, change int) error
	GetByCategory(ctx context.Context, category string) ([]models.Product, error)
	Search(ctx context.Context, term string) ([]models.Product, error)
	Count(ctx context.Context) (int, error)
}

type SellerRepository interface {
	Create(ctx context.Context, seller *models.Seller) error
	GetByID(ctx context.Context, id string) (*models.Seller, error)
	GetAll(ctx context.Context) ([]models.Seller, error)
	Update(ctx context.Context, seller *models.Seller) error
}

type CourierRepository interface {
	Create(ctx context.Context, courier *models.Courier) error
	GetByID(ctx context.Context, id string) (*models.Courier, error)
	GetAll(ctx context.Context) ([]models.Courier, error)
	Update(ctx context.Context, courier *models.Courier) error
}

// DeliveryUpdate is written to every line item of a transaction at once.
type DeliveryUpdate struct {
	Status         models.SaleStatus
	DeliveryDate   string
	DeliveryWindow string
	CourierID      string
}

type SaleRepository interface {
	CreateItem(ctx context.Context, item *models.SaleLineItem) error
	GetAll(ctx context.Context) ([]models.SaleLineItem, error)
	GetByStatus(ctx context.Context, statuses ...models.SaleStatus) ([]models.SaleLineItem, error)
	// GetByTransaction returns the items ordered by id and, inside a
	// transaction, locks them until commit.
	GetByTransaction(ctx context.Context, transactionID int) ([]models.SaleLineItem, error)
	UpdateDelivery(ctx context.Context, transactionID int, update DeliveryUpdate) error
}

type PreOrderRepository interface {
	Create(ctx context.Context, preorder *models.PreOrder) error
	GetByID(ctx context.Context, id int) (*models.PreOrder, error)
	// List filters by customer when customerID > 0 and by status when not empty.
	List(ctx context.Context, customerID int, status string) ([]models.PreOrder, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	// Complete moves a pending pre-order owned by customerID to completed.
	// It returns ErrConflict when the row is no longer pending or belongs
	// to someone else.
	Complete(ctx context.Context, id, customerID int) error
	Count(ctx context.Context) (int, error)
}

type CounterRepository interface {
	// Next atomically increments the named counter and returns the new
	// value; a missing counter starts at 1.
	Next(ctx context.Context, name string) (int, error)
}

type SettingsRepository interface {
	GetStockThresholds(ctx context.Context) (*models.StockThresholds, error)
	SaveStockThresholds(ctx context.Context, thresholds models.StockThresholds) error
}

type InventoryRepository interface {
	Upsert(ctx context.Context, record *models.InventoryRecord) error
	// Adjust returns ErrNotFound when the product has no inventory record.
	Adjust(ctx context.Context, productID int, change int) error
	GetByProductID(ctx context.Context, productID int) (*models.InventoryRecord, error)
}

type OperationRepository interface {
	Create(ctx context.Context, operation *models.Operation) error
	GetByProductID(ctx context.Context, productID int) ([]models.Operation, error)
	GetByTransactionID(ctx context.Context, transactionID int) ([]models.Operation, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store groups every repository over one persistence backend.
type Store interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Sellers() SellerRepository
	Couriers() CourierRepository
	Sales() SaleRepository
	PreOrders() PreOrderRepository
	Counters() CounterRepository
	Settings() SettingsRepository
	Inventory() InventoryRepository
	Operations() OperationRepository
	Users() UserRepository

	// WithinTx runs fn against a transactional view of the store. The
	// changes commit when fn returns nil and are discarded otherwise.
	// Nested calls join the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// Counter names.
const (
	CounterCustomers    = "clientes"
	CounterProducts     = "productos"
	CounterSaleItems    = "ventas"
	CounterTransactions = "transacciones"
	CounterPreOrders    = "pedidos"
)
