package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(_ context.Context, c *models.Customer) error {
	if c.CustomerID <= 0 {
		return fmt.Errorf("%w: customer ID must be allocated", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.customers[c.CustomerID]; ok {
			return fmt.Errorf("%w: customer already exists", repository.ErrDuplicate)
		}
		c.RegisteredAt = time.Now()
		d.customers[c.CustomerID] = *c
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id int) (*models.Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	var out models.Customer
	err := r.s.read(func(d *data) error {
		c, ok := d.customers[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *customerRepo) GetAll(_ context.Context) ([]models.Customer, error) {
	var out []models.Customer
	err := r.s.read(func(d *data) error {
		out = sortedValues(d.customers)
		return nil
	})
	return out, err
}

func (r *customerRepo) Update(_ context.Context, c *models.Customer) error {
	if c.CustomerID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		existing, ok := d.customers[c.CustomerID]
		if !ok {
			return repository.ErrNotFound
		}
		c.RegisteredAt = existing.RegisteredAt
		d.customers[c.CustomerID] = *c
		return nil
	})
}

func (r *customerRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.s.read(func(d *data) error {
		n = len(d.customers)
		return nil
	})
	return n, err
}

type productRepo struct{ s *Store }

func nameTaken(d *data, name string, except int) bool {
	for id, p := range d.products {
		if id != except && p.Name == name {
			return true
		}
	}
	return false
}

func checkProduct(p *models.Product) error {
	if p.Price <= 0 {
		return fmt.Errorf("%w: product violates products_price_check", repository.ErrInvalidInput)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: product violates products_quantity_check", repository.ErrInvalidInput)
	}
	return nil
}

func (r *productRepo) Create(_ context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be allocated", repository.ErrInvalidInput)
	}
	if err := checkProduct(p); err != nil {
		return err
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.products[p.ProductID]; ok || nameTaken(d, p.Name, 0) {
			return fmt.Errorf("%w: product name already exists", repository.ErrDuplicate)
		}
		now := time.Now()
		p.CreatedAt, p.UpdatedAt = now, now
		d.products[p.ProductID] = *p
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	var out models.Product
	err := r.s.read(func(d *data) error {
		p, ok := d.products[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no row lock: a transaction already owns the store.
func (r *productRepo) GetForUpdate(ctx context.Context, id int) (*models.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) filter(keep func(models.Product) bool) ([]models.Product, error) {
	out := []models.Product{}
	err := r.s.read(func(d *data) error {
		for _, p := range sortedValues(d.products) {
			if keep(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetAll(_ context.Context) ([]models.Product, error) {
	return r.filter(func(models.Product) bool { return true })
}

func (r *productRepo) GetByCategory(_ context.Context, category string) ([]models.Product, error) {
	if category == "" {
		return nil, fmt.Errorf("category cannot be empty: %w", repository.ErrInvalidInput)
	}
	return r.filter(func(p models.Product) bool { return p.Category == category })
}

func (r *productRepo) Search(_ context.Context, term string) ([]models.Product, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	return r.filter(func(p models.Product) bool { return strings.Contains(strings.ToLower(p.Name), term) })
}

func (r *productRepo) Update(_ context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	if err := checkProduct(p); err != nil {
		return err
	}
	return r.s.write(func(d *data) error {
		existing, ok := d.products[p.ProductID]
		if !ok {
			return repository.ErrNotFound
		}
		if nameTaken(d, p.Name, p.ProductID) {
			return fmt.Errorf("%w: product name already exists", repository.ErrDuplicate)
		}
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = time.Now()
		d.products[p.ProductID] = *p
		return nil
	})
}

func (r *productRepo) Delete(_ context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", repository.ErrInvalidInput)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.products[id]; !ok {
			return repository.ErrNotFound
		}
		for _, item := range d.sales {
			if item.ProductID == id {
				return fmt.Errorf("%w: product has sales or pre-orders", repository.ErrInUse)
			}
		}
		for _, o := range d.preorders {
			if o.ProductID == id {
				return fmt.Errorf("%w: product has sales or pre-orders", repository.ErrInUse)
			}
		}
		delete(d.products, id)
		delete(d.inventory, id)
		ops := d.operations[:0]
		for _, op := range d.operations {
			if op.ProductID != id {
				ops = append(ops, op)
			}
		}
		d.operations = ops
		return nil
	})
}

func (r *productRepo) UpdateQuantity(_ context.Context, id int, change int) error {
	return r.s.write(func(d *data) error {
		p, ok := d.products[id]
		if !ok {
			return repository.ErrNotFound
		}
		if p.Quantity+change < 0 {
			return fmt.Errorf("%w: product %d, requested change %d", repository.ErrNotEnough, id, change)
		}
		p.Quantity += change
		p.UpdatedAt = time.Now()
		d.products[id] = p
		return nil
	})
}

func (r *productRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.s.read(func(d *data) error {
		n = len(d.products)
		return nil
	})
	return n, err
}

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) Upsert(_ context.Context, rec *models.InventoryRecord) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.products[rec.ProductID]; !ok {
			return fmt.Errorf("%w: inventory product", repository.ErrInUse)
		}
		rec.UpdatedAt = time.Now()
		d.inventory[rec.ProductID] = *rec
		return nil
	})
}

func (r *inventoryRepo) Adjust(_ context.Context, productID int, change int) error {
	return r.s.write(func(d *data) error {
		rec, ok := d.inventory[productID]
		if !ok {
			return repository.ErrNotFound
		}
		rec.Quantity += change
		rec.UpdatedAt = time.Now()
		d.inventory[productID] = rec
		return nil
	})
}

func (r *inventoryRepo) GetByProductID(_ context.Context, productID int) (*models.InventoryRecord, error) {
	var out models.InventoryRecord
	err := r.s.read(func(d *data) error {
		rec, ok := d.inventory[productID]
		if !ok {
			return repository.ErrNotFound
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type operationRepo struct{ s *Store }

func (r *operationRepo) Create(_ context.Context, o *models.Operation) error {
	if o == nil {
		return fmt.Errorf("%w: operation cannot be nil", repository.ErrInvalidInput)
	}
	if o.ProductID <= 0 {
		return fmt.Errorf("%w: product ID must be positive", repository.ErrInvalidInput)
	}
	if o.ChangeQuant == 0 {
		return fmt.Errorf("%w: the variable quantity cannot be 0", repository.ErrInvalidInput)
	}
	switch o.OperationType {
	case models.OperationIncoming, models.OperationOutgoing, models.OperationAdjustment:
	default:
		return fmt.Errorf("%w: invalid operation type '%s'", repository.ErrInvalidInput, o.OperationType)
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.products[o.ProductID]; !ok {
			return fmt.Errorf("%w: operation product", repository.ErrInUse)
		}
		d.nextOperationID++
		o.OperationID = d.nextOperationID
		o.CreatedAt = time.Now()
		d.operations = append(d.operations, *o)
		return nil
	})
}

func (r *operationRepo) list(keep func(models.Operation) bool) ([]models.Operation, error) {
	out := []models.Operation{}
	err := r.s.read(func(d *data) error {
		for _, op := range d.operations {
			if keep(op) {
				out = append(out, op)
			}
		}
		return nil
	})
	return out, err
}

func (r *operationRepo) GetByProductID(_ context.Context, productID int) ([]models.Operation, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", repository.ErrInvalidInput)
	}
	return r.list(func(op models.Operation) bool { return op.ProductID == productID })
}

func (r *operationRepo) GetByTransactionID(_ context.Context, transactionID int) ([]models.Operation, error) {
	if transactionID <= 0 {
		return nil, fmt.Errorf("%w: ID must be positive", repository.ErrInvalidInput)
	}
	return r.list(func(op models.Operation) bool {
		return op.TransactionID != nil && *op.TransactionID == transactionID
	})
}

type settingsRepo struct{ s *Store }

func (r *settingsRepo) GetStockThresholds(_ context.Context) (*models.StockThresholds, error) {
	var out models.StockThresholds
	err := r.s.read(func(d *data) error {
		if d.thresholds == nil {
			return repository.ErrNotFound
		}
		out = *d.thresholds
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *settingsRepo) SaveStockThresholds(_ context.Context, t models.StockThresholds) error {
	return r.s.write(func(d *data) error {
		d.thresholds = &t
		return nil
	})
}

type counterRepo struct{ s *Store }

func (r *counterRepo) Next(_ context.Context, name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: counter name cannot be empty", repository.ErrInvalidInput)
	}
	var id int
	err := r.s.write(func(d *data) error {
		d.counters[name]++
		id = d.counters[name]
		return nil
	})
	return id, err
}
