// Package catalog validates and maintains the reference data: customers,
// products with their stock ledger, sellers, couriers, pre-orders and the
// global stock thresholds.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/stock"
)

type Service struct {
	store    repository.Store
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(store repository.Store, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		validate: newValidator(),
		logger:   logger,
	}
}

type CustomerInput struct {
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Email = strings.TrimSpace(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
}

func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	c := &models.Customer{
		Name:        in.Name,
		Address:     in.Address,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		id, err := tx.Counters().Next(ctx, repository.CounterCustomers)
		if err != nil {
			return err
		}
		c.CustomerID = id
		return tx.Customers().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created", "customer_id", c.CustomerID)
	return c, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, id int, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	c := &models.Customer{
		CustomerID:  id,
		Name:        in.Name,
		Address:     in.Address,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}
	if err := s.store.Customers().Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.store.Customers().GetByID(ctx, id)
}

func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.store.Customers().GetAll(ctx)
}

type ProductInput struct {
	Name        string                   `json:"name" validate:"required"`
	Description string                   `json:"description"`
	Price       float64                  `json:"price" validate:"gt=0"`
	Quantity    int                      `json:"quantity" validate:"gte=0"`
	Category    string                   `json:"category" validate:"category"`
	ImageURL    string                   `json:"image_url" validate:"omitempty,url"`
	Thresholds  models.ProductThresholds `json:"stock_thresholds"`
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Category == "" {
		in.Category = models.CategoryOther
	}
}

func (s *Service) validateProduct(in ProductInput) error {
	if err := check(s.validate, in); err != nil {
		return err
	}
	t := in.Thresholds
	if t.Low < 0 || t.Medium < 0 || t.High < 0 {
		return fmt.Errorf("%w: stock thresholds cannot be negative", repository.ErrInvalidInput)
	}
	return nil
}

// CreateProduct stores the product together with its inventory record and
// an incoming ledger entry for the opening stock.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := s.validateProduct(in); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Thresholds:  in.Thresholds,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		id, err := tx.Counters().Next(ctx, repository.CounterProducts)
		if err != nil {
			return err
		}
		p.ProductID = id

		if err := tx.Products().Create(ctx, p); err != nil {
			return err
		}

		if err := tx.Inventory().Upsert(ctx, &models.InventoryRecord{ProductID: p.ProductID, Quantity: p.Quantity}); err != nil {
			return err
		}

		if p.Quantity > 0 {
			return tx.Operations().Create(ctx, &models.Operation{
				ProductID:     p.ProductID,
				OperationType: models.OperationIncoming,
				ChangeQuant:   p.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", "product_id", p.ProductID, "category", p.Category)
	return p, nil
}

// UpdateProduct records an adjustment in the ledger whenever the stock
// quantity changes.
func (s *Service) UpdateProduct(ctx context.Context, id int, in ProductInput) (*models.Product, error) {
	in.normalize()
	if err := s.validateProduct(in); err != nil {
		return nil, err
	}

	p := &models.Product{
		ProductID:   id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Thresholds:  in.Thresholds,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		old, err := tx.Products().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if err := tx.Products().Update(ctx, p); err != nil {
			return err
		}

		change := p.Quantity - old.Quantity
		if change == 0 {
			return nil
		}

		if err := tx.Operations().Create(ctx, &models.Operation{
			ProductID:     id,
			OperationType: models.OperationAdjustment,
			ChangeQuant:   change,
		}); err != nil {
			return err
		}
		return tx.Inventory().Upsert(ctx, &models.InventoryRecord{ProductID: id, Quantity: p.Quantity})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", "product_id", id)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.store.Products().GetByID(ctx, id)
}

// ListProducts returns every product, or those of one category.
func (s *Service) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	if category == "" {
		return s.store.Products().GetAll(ctx)
	}
	if !models.IsCategory(category) {
		return nil, fmt.Errorf("%w: unknown category %q", repository.ErrInvalidInput, category)
	}
	return s.store.Products().GetByCategory(ctx, category)
}

func (s *Service) ProductOperations(ctx context.Context, id int) ([]models.Operation, error) {
	if _, err := s.store.Products().GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Operations().GetByProductID(ctx, id)
}

type StaffInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (in *StaffInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

func (s *Service) CreateSeller(ctx context.Context, in StaffInput) (*models.Seller, error) {
	in.normalize()
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	seller := &models.Seller{SellerID: uuid.NewString(), Name: in.Name, Email: in.Email}
	if err := s.store.Sellers().Create(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}

func (s *Service) UpdateSeller(ctx context.Context, id string, in StaffInput) (*models.Seller, error) {
	in.normalize()
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	seller := &models.Seller{SellerID: id, Name: in.Name, Email: in.Email}
	if err := s.store.Sellers().Update(ctx, seller); err != nil {
		return nil, err
	}
	return seller, nil
}

func (s *Service) ListSellers(ctx context.Context) ([]models.Seller, error) {
	return s.store.Sellers().GetAll(ctx)
}

type CourierInput struct {
	StaffInput
	Available *bool `json:"available"`
}

func (s *Service) CreateCourier(ctx context.Context, in CourierInput) (*models.Courier, error) {
	in.normalize()
	if err := check(s.validate, in.StaffInput); err != nil {
		return nil, err
	}

	courier := &models.Courier{
		CourierID: uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Available: in.Available == nil || *in.Available,
	}
	if err := s.store.Couriers().Create(ctx, courier); err != nil {
		return nil, err
	}
	return courier, nil
}

func (s *Service) UpdateCourier(ctx context.Context, id string, in CourierInput) (*models.Courier, error) {
	in.normalize()
	if err := check(s.validate, in.StaffInput); err != nil {
		return nil, err
	}

	var courier *models.Courier
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Couriers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		current.Name = in.Name
		current.Email = in.Email
		if in.Available != nil {
			current.Available = *in.Available
		}
		courier = current
		return tx.Couriers().Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return courier, nil
}

func (s *Service) SetCourierAvailability(ctx context.Context, id string, available bool) (*models.Courier, error) {
	var courier *models.Courier
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Couriers().GetByID(ctx, id)
		if err != nil {
			return err
		}
		current.Available = available
		courier = current
		return tx.Couriers().Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	return courier, nil
}

func (s *Service) ListCouriers(ctx context.Context) ([]models.Courier, error) {
	return s.store.Couriers().GetAll(ctx)
}

type PreOrderInput struct {
	CustomerID      int    `json:"customer_id" validate:"gt=0"`
	ProductID       int    `json:"product_id" validate:"gt=0"`
	Quantity        int    `json:"quantity" validate:"gt=0"`
	DeliveryDate    string `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	CustomerAddress string `json:"customer_address"`
}

// CreatePreOrder stores a pending pre-order. The address defaults to the
// customer's own.
func (s *Service) CreatePreOrder(ctx context.Context, in PreOrderInput) (*models.PreOrder, error) {
	in.CustomerAddress = strings.TrimSpace(in.CustomerAddress)
	if err := check(s.validate, in); err != nil {
		return nil, err
	}

	o := &models.PreOrder{
		CustomerID:      in.CustomerID,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		DeliveryDate:    in.DeliveryDate,
		CustomerAddress: in.CustomerAddress,
		Status:          models.PreOrderPending,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().GetByID(ctx, in.CustomerID)
		if err != nil {
			return notFound(err, "customer %d", in.CustomerID)
		}
		product, err := tx.Products().GetByID(ctx, in.ProductID)
		if err != nil {
			return notFound(err, "product %d", in.ProductID)
		}
		if o.CustomerAddress == "" {
			o.CustomerAddress = customer.Address
		}

		id, err := tx.Counters().Next(ctx, repository.CounterPreOrders)
		if err != nil {
			return err
		}
		o.PreOrderID = id
		o.CustomerName = customer.Name
		o.ProductName = product.Name
		return tx.PreOrders().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) ListPreOrders(ctx context.Context, customerID int, status string) ([]models.PreOrder, error) {
	if status != "" && status != models.PreOrderPending && status != models.PreOrderCompleted {
		return nil, fmt.Errorf("%w: unknown pre-order status %q", repository.ErrInvalidInput, status)
	}
	return s.store.PreOrders().List(ctx, customerID, status)
}

// Thresholds returns the global stock thresholds, storing the defaults the
// first time they are read.
func (s *Service) Thresholds(ctx context.Context) (models.StockThresholds, error) {
	t, err := s.store.Settings().GetStockThresholds(ctx)
	if err == nil {
		return *t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return models.StockThresholds{}, err
	}

	defaults := models.DefaultStockThresholds()
	if err := s.store.Settings().SaveStockThresholds(ctx, defaults); err != nil {
		return models.StockThresholds{}, err
	}
	s.logger.Info("stock thresholds initialised with defaults")
	return defaults, nil
}

func (s *Service) SaveThresholds(ctx context.Context, t models.StockThresholds) error {
	if err := stock.Validate(t); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}
	return s.store.Settings().SaveStockThresholds(ctx, t)
}

type InventoryItem struct {
	models.Product
	Level     stock.Level            `json:"stock_level"`
	Effective models.StockThresholds `json:"effective_thresholds"`
}

// Inventory lists products with their stock level. A search term matches
// names across every category; otherwise one category is listed,
// rebosados when none is given.
func (s *Service) Inventory(ctx context.Context, category, search string) ([]InventoryItem, error) {
	defaults, err := s.Thresholds(ctx)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if search = strings.TrimSpace(search); search != "" {
		products, err = s.store.Products().Search(ctx, search)
	} else {
		if category == "" {
			category = models.CategoryRebosados
		}
		products, err = s.ListProducts(ctx, category)
	}
	if err != nil {
		return nil, err
	}

	items := make([]InventoryItem, 0, len(products))
	for _, p := range products {
		effective := stock.Effective(p.Thresholds, defaults)
		items = append(items, InventoryItem{
			Product:   p,
			Level:     stock.Classify(p.Quantity, effective),
			Effective: effective,
		})
	}
	return items, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
