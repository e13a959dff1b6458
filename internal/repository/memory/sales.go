package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

type saleRepo struct{ s *Store }

// resolve fills the display names from the referenced rows.
func resolve(d *data, item models.SaleLineItem) models.SaleLineItem {
	item.CustomerName = d.customers[item.CustomerID].Name
	item.ProductName = d.products[item.ProductID].Name
	item.SellerName = d.sellers[item.SellerID].Name
	item.CourierName = ""
	if item.CourierID != "" {
		item.CourierName = d.couriers[item.CourierID].Name
	}
	return item
}

func (r *saleRepo) CreateItem(_ context.Context, item *models.SaleLineItem) error {
	if item == nil {
		return fmt.Errorf("%w: sale item cannot be nil", repository.ErrInvalidInput)
	}
	if item.ID <= 0 || item.TransactionID <= 0 {
		return fmt.Errorf("%w: sale item and transaction IDs must be allocated", repository.ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.sales[item.ID]; ok {
			return fmt.Errorf("%w: sale item already exists", repository.ErrDuplicate)
		}
		if _, ok := d.customers[item.CustomerID]; !ok {
			return fmt.Errorf("%w: sale item customer", repository.ErrInUse)
		}
		if _, ok := d.products[item.ProductID]; !ok {
			return fmt.Errorf("%w: sale item product", repository.ErrInUse)
		}
		if _, ok := d.sellers[item.SellerID]; !ok {
			return fmt.Errorf("%w: sale item seller", repository.ErrInUse)
		}
		if item.CourierID != "" {
			if _, ok := d.couriers[item.CourierID]; !ok {
				return fmt.Errorf("%w: sale item courier", repository.ErrInUse)
			}
		}
		stored := *item
		stored.CustomerName, stored.ProductName, stored.SellerName, stored.CourierName = "", "", "", ""
		d.sales[item.ID] = stored
		return nil
	})
}

func (r *saleRepo) list(keep func(models.SaleLineItem) bool) ([]models.SaleLineItem, error) {
	out := []models.SaleLineItem{}
	err := r.s.read(func(d *data) error {
		for _, item := range sortedValues(d.sales) {
			if keep(item) {
				out = append(out, resolve(d, item))
			}
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetAll(_ context.Context) ([]models.SaleLineItem, error) {
	return r.list(func(models.SaleLineItem) bool { return true })
}

func (r *saleRepo) GetByStatus(ctx context.Context, statuses ...models.SaleStatus) ([]models.SaleLineItem, error) {
	if len(statuses) == 0 {
		return r.GetAll(ctx)
	}
	return r.list(func(item models.SaleLineItem) bool { return slices.Contains(statuses, item.Status) })
}

func (r *saleRepo) GetByTransaction(_ context.Context, transactionID int) ([]models.SaleLineItem, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: transaction ID must be positive", repository.ErrInvalidInput)
	}
	items, err := r.list(func(item models.SaleLineItem) bool { return item.TransactionID == transactionID })
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items, nil
}

func (r *saleRepo) UpdateDelivery(_ context.Context, transactionID int, u repository.DeliveryUpdate) error {
	if u.Status == "" {
		return fmt.Errorf("%w: status cannot be empty", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if u.CourierID != "" {
			if _, ok := d.couriers[u.CourierID]; !ok {
				return fmt.Errorf("%w: courier", repository.ErrInUse)
			}
		}
		updated := 0
		for id, item := range d.sales {
			if item.TransactionID != transactionID {
				continue
			}
			item.Status = u.Status
			item.DeliveryDate = u.DeliveryDate
			item.DeliveryWindow = u.DeliveryWindow
			item.CourierID = u.CourierID
			d.sales[id] = item
			updated++
		}
		if updated == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

type preOrderRepo struct{ s *Store }

func (r *preOrderRepo) Create(_ context.Context, o *models.PreOrder) error {
	if o.PreOrderID <= 0 {
		return fmt.Errorf("%w: pre-order ID must be allocated", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.preorders[o.PreOrderID]; ok {
			return fmt.Errorf("%w: pre-order already exists", repository.ErrDuplicate)
		}
		if _, ok := d.customers[o.CustomerID]; !ok {
			return fmt.Errorf("%w: pre-order customer or product", repository.ErrInUse)
		}
		if _, ok := d.products[o.ProductID]; !ok {
			return fmt.Errorf("%w: pre-order customer or product", repository.ErrInUse)
		}
		o.CreatedAt = time.Now()
		stored := *o
		stored.CustomerName, stored.ProductName = "", ""
		d.preorders[o.PreOrderID] = stored
		return nil
	})
}

func resolvePreOrder(d *data, o models.PreOrder) models.PreOrder {
	o.CustomerName = d.customers[o.CustomerID].Name
	o.ProductName = d.products[o.ProductID].Name
	return o
}

func (r *preOrderRepo) GetByID(_ context.Context, id int) (*models.PreOrder, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: pre-order ID must be positive", repository.ErrInvalidInput)
	}
	var out models.PreOrder
	err := r.s.read(func(d *data) error {
		o, ok := d.preorders[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = resolvePreOrder(d, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *preOrderRepo) List(_ context.Context, customerID int, status string) ([]models.PreOrder, error) {
	out := []models.PreOrder{}
	err := r.s.read(func(d *data) error {
		for _, o := range sortedValues(d.preorders) {
			if customerID > 0 && o.CustomerID != customerID {
				continue
			}
			if status != "" && o.Status != status {
				continue
			}
			out = append(out, resolvePreOrder(d, o))
		}
		return nil
	})
	return out, err
}

func (r *preOrderRepo) UpdateStatus(_ context.Context, id int, status string) error {
	if status != models.PreOrderPending && status != models.PreOrderCompleted {
		return fmt.Errorf("%w: invalid status '%s'", repository.ErrInvalidInput, status)
	}
	return r.s.write(func(d *data) error {
		o, ok := d.preorders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Status = status
		d.preorders[id] = o
		return nil
	})
}

func (r *preOrderRepo) Complete(_ context.Context, id, customerID int) error {
	return r.s.write(func(d *data) error {
		o, ok := d.preorders[id]
		if !ok || o.CustomerID != customerID || o.Status != models.PreOrderPending {
			return fmt.Errorf("%w: pre-order %d is not pending for customer %d", repository.ErrConflict, id, customerID)
		}
		o.Status = models.PreOrderCompleted
		d.preorders[id] = o
		return nil
	})
}

func (r *preOrderRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.s.read(func(d *data) error {
		n = len(d.preorders)
		return nil
	})
	return n, err
}
