// Package sales builds carts and turns them into persisted sales. A
// checkout is one store transaction: every line item is written and every
// stock decrement applied, or nothing is.
package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotInCart         = errors.New("product not in cart")
	ErrPreOrderClosed    = errors.New("pre-order is not pending for this customer")
)

// Notifier is told after every committed change to sales.
type Notifier interface {
	Publish()
}

type Service struct {
	store    repository.Store
	machine  *lifecycle.Machine
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store repository.Store, machine *lifecycle.Machine, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		machine:  machine,
		notifier: notifier,
		logger:   logger,
	}
}

// AddToCart validates against the product's current stock before merging
// into the cart.
func (s *Service) AddToCart(ctx context.Context, cart *Cart, productID, quantity int) error {
	p, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return err
	}
	return cart.Add(*p, quantity)
}

func (s *Service) UpdateCartLine(ctx context.Context, cart *Cart, productID, quantity int) (int, bool, error) {
	p, err := s.store.Products().GetByID(ctx, productID)
	if err != nil {
		return 0, false, err
	}
	return cart.Update(productID, quantity, p.Quantity)
}

type LineRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CheckoutRequest struct {
	CustomerID int           `json:"customer_id"`
	SellerID   string        `json:"seller_id"`
	Lines      []LineRequest `json:"lines"`
	// PreOrderID, when set, is marked completed by this sale.
	PreOrderID int `json:"preorder_id,omitempty"`
}

// mergeLines sums quantities per product, keeping first-seen order.
func mergeLines(lines []LineRequest) ([]LineRequest, error) {
	index := make(map[int]int)
	var out []LineRequest
	for _, l := range lines {
		if l.ProductID <= 0 {
			return nil, fmt.Errorf("%w: product id must be positive", repository.ErrInvalidInput)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %d must be positive", ErrInvalidQuantity, l.ProductID)
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*models.Sale, error) {
	if req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customer is required", repository.ErrInvalidInput)
	}
	if req.SellerID == "" {
		return nil, fmt.Errorf("%w: seller is required", repository.ErrInvalidInput)
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	lines, err := mergeLines(req.Lines)
	if err != nil {
		return nil, err
	}

	date := s.machine.Today()
	var items []models.SaleLineItem

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().GetByID(ctx, req.CustomerID)
		if err != nil {
			return lookupErr(err, "customer %d", req.CustomerID)
		}
		seller, err := tx.Sellers().GetByID(ctx, req.SellerID)
		if err != nil {
			return lookupErr(err, "seller %s", req.SellerID)
		}

		if req.PreOrderID > 0 {
			if err := completePreOrder(ctx, tx, req.PreOrderID, customer.CustomerID); err != nil {
				return err
			}
		}

		tid, err := tx.Counters().Next(ctx, repository.CounterTransactions)
		if err != nil {
			return err
		}

		items = make([]models.SaleLineItem, 0, len(lines))
		for _, line := range lines {
			item, err := sellLine(ctx, tx, line, tid)
			if err != nil {
				return err
			}
			item.CustomerID = customer.CustomerID
			item.CustomerName = customer.Name
			item.CustomerAddress = customer.Address
			item.SellerID = seller.SellerID
			item.SellerName = seller.Name
			item.Date = date
			items = append(items, item)
		}

		for i := range items {
			if err := tx.Sales().CreateItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.adjustInventory(ctx, lines)
	if s.notifier != nil {
		s.notifier.Publish()
	}

	sale := Group(items)[0]
	observability.Logger(ctx, s.logger).Info("sale completed",
		"transaction_id", sale.TransactionID,
		"items", len(sale.Items),
		"total", sale.Total,
	)
	return &sale, nil
}

// sellLine locks the product, re-checks live stock, allocates the line id
// and applies the stock decrement with its ledger entry.
func sellLine(ctx context.Context, tx repository.Store, line LineRequest, tid int) (models.SaleLineItem, error) {
	p, err := tx.Products().GetForUpdate(ctx, line.ProductID)
	if err != nil {
		return models.SaleLineItem{}, lookupErr(err, "product %d", line.ProductID)
	}
	if p.Quantity < line.Quantity {
		return models.SaleLineItem{}, fmt.Errorf("%w: %s has %d available, requested %d", ErrInsufficientStock, p.Name, p.Quantity, line.Quantity)
	}

	id, err := tx.Counters().Next(ctx, repository.CounterSaleItems)
	if err != nil {
		return models.SaleLineItem{}, err
	}

	if err := tx.Products().UpdateQuantity(ctx, p.ProductID, -line.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotEnough) {
			return models.SaleLineItem{}, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}
		return models.SaleLineItem{}, err
	}

	txID := tid
	if err := tx.Operations().Create(ctx, &models.Operation{
		ProductID:     p.ProductID,
		TransactionID: &txID,
		OperationType: models.OperationOutgoing,
		ChangeQuant:   -line.Quantity,
	}); err != nil {
		return models.SaleLineItem{}, err
	}

	unit := decimal.NewFromFloat(p.Price)
	total := unit.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)

	return models.SaleLineItem{
		ID:            id,
		TransactionID: tid,
		ProductID:     p.ProductID,
		ProductName:   p.Name,
		Quantity:      line.Quantity,
		UnitPrice:     p.Price,
		LineTotal:     total.InexactFloat64(),
		Status:        models.StatusPendingScheduling,
	}, nil
}

func completePreOrder(ctx context.Context, tx repository.Store, id, customerID int) error {
	o, err := tx.PreOrders().GetByID(ctx, id)
	if err != nil {
		return lookupErr(err, "pre-order %d", id)
	}
	if o.CustomerID != customerID || o.Status != models.PreOrderPending {
		return fmt.Errorf("%w: pre-order %d", ErrPreOrderClosed, id)
	}
	// A concurrent checkout may have completed it since the read.
	if err := tx.PreOrders().Complete(ctx, id, customerID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: pre-order %d", ErrPreOrderClosed, id)
		}
		return err
	}
	return nil
}

// adjustInventory mirrors the committed decrements onto the auxiliary
// inventory records. Failures are logged only.
func (s *Service) adjustInventory(ctx context.Context, lines []LineRequest) {
	logger := observability.Logger(ctx, s.logger)
	for _, line := range lines {
		err := s.store.Inventory().Adjust(ctx, line.ProductID, -line.Quantity)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrNotFound):
			logger.Debug("no inventory record to adjust", "product_id", line.ProductID)
		default:
			logger.Error("failed to adjust inventory record", "product_id", line.ProductID, "error", err)
		}
	}
}

// CheckoutCart checks out the cart's lines and removes what was sold.
func (s *Service) CheckoutCart(ctx context.Context, cart *Cart, customerID int, sellerID string, preOrderID int) (*models.Sale, error) {
	cartLines := cart.Lines()
	lines := make([]LineRequest, 0, len(cartLines))
	for _, l := range cartLines {
		lines = append(lines, LineRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	sale, err := s.Checkout(ctx, CheckoutRequest{
		CustomerID: customerID,
		SellerID:   sellerID,
		Lines:      lines,
		PreOrderID: preOrderID,
	})
	if err != nil {
		return nil, err
	}
	cart.Deduct(cartLines)
	return sale, nil
}

// History returns every sale, newest first.
func (s *Service) History(ctx context.Context) ([]models.Sale, error) {
	items, err := s.store.Sales().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Group(items), nil
}

func (s *Service) Get(ctx context.Context, transactionID int) (*models.Sale, error) {
	items, err := s.store.Sales().GetByTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	sale := Group(items)[0]
	return &sale, nil
}

func lookupErr(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
