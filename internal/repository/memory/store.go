// Package memory provides an in-process repository.Store guarded by a single
// RWMutex. It backs the test suites and the DATABASE_DRIVER=memory mode, and
// mirrors the error semantics of the Postgres store.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

type data struct {
	customers       map[int]models.Customer
	products        map[int]models.Product
	sellers         map[string]models.Seller
	couriers        map[string]models.Courier
	sales           map[int]models.SaleLineItem
	preorders       map[int]models.PreOrder
	counters        map[string]int
	inventory       map[int]models.InventoryRecord
	users           map[string]models.User
	thresholds      *models.StockThresholds
	operations      []models.Operation
	nextOperationID int
}

func newData() *data {
	return &data{
		customers: make(map[int]models.Customer),
		products:  make(map[int]models.Product),
		sellers:   make(map[string]models.Seller),
		couriers:  make(map[string]models.Courier),
		sales:     make(map[int]models.SaleLineItem),
		preorders: make(map[int]models.PreOrder),
		counters:  make(map[string]int),
		inventory: make(map[int]models.InventoryRecord),
		users:     make(map[string]models.User),
	}
}

func (d *data) clone() *data {
	c := &data{
		customers:       maps.Clone(d.customers),
		products:        maps.Clone(d.products),
		sellers:         maps.Clone(d.sellers),
		couriers:        maps.Clone(d.couriers),
		sales:           maps.Clone(d.sales),
		preorders:       maps.Clone(d.preorders),
		counters:        maps.Clone(d.counters),
		inventory:       maps.Clone(d.inventory),
		users:           maps.Clone(d.users),
		operations:      slices.Clone(d.operations),
		nextOperationID: d.nextOperationID,
	}
	if d.thresholds != nil {
		t := *d.thresholds
		c.thresholds = &t
	}
	return c
}

type state struct {
	mu   sync.RWMutex
	data *data
}

// Store is safe for concurrent use. A transaction holds the write lock for
// its whole duration and works on a copy that replaces the live data on
// success.
type Store struct {
	state *state
	tx    *data
}

func NewStore() *Store {
	return &Store{state: &state{data: newData()}}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) read(fn func(d *data) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	return fn(s.state.data)
}

func (s *Store) write(fn func(d *data) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return fn(s.state.data)
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	work := s.state.data.clone()
	if err := fn(&Store{state: s.state, tx: work}); err != nil {
		return err
	}
	s.state.data = work
	return nil
}

func (s *Store) Customers() repository.CustomerRepository   { return &customerRepo{s} }
func (s *Store) Products() repository.ProductRepository     { return &productRepo{s} }
func (s *Store) Sellers() repository.SellerRepository       { return &sellerRepo{s} }
func (s *Store) Couriers() repository.CourierRepository     { return &courierRepo{s} }
func (s *Store) Sales() repository.SaleRepository           { return &saleRepo{s} }
func (s *Store) PreOrders() repository.PreOrderRepository   { return &preOrderRepo{s} }
func (s *Store) Counters() repository.CounterRepository     { return &counterRepo{s} }
func (s *Store) Settings() repository.SettingsRepository    { return &settingsRepo{s} }
func (s *Store) Inventory() repository.InventoryRepository  { return &inventoryRepo{s} }
func (s *Store) Operations() repository.OperationRepository { return &operationRepo{s} }
func (s *Store) Users() repository.UserRepository           { return &userRepo{s} }

// sortedValues returns the map values ordered by key.
func sortedValues[K int | string, V any](m map[K]V) []V {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
