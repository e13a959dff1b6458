package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Customers().Create(ctx, &models.Customer{CustomerID: 1, Name: "Ana", Address: "Calle 1"}))
	require.NoError(t, s.Products().Create(ctx, &models.Product{ProductID: 1, Name: "Milanesa", Price: 5, Quantity: 10, Category: models.CategoryRebosados}))
	require.NoError(t, s.Sellers().Create(ctx, &models.Seller{SellerID: "s-1", Name: "Vera"}))
	require.NoError(t, s.Couriers().Create(ctx, &models.Courier{CourierID: "c-1", Name: "Leo", Available: true}))
}

func TestCounterStartsAtOne(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	first, err := s.Counters().Next(ctx, repository.CounterCustomers)
	require.NoError(t, err)
	second, err := s.Counters().Next(ctx, repository.CounterCustomers)
	require.NoError(t, err)
	other, err := s.Counters().Next(ctx, repository.CounterProducts)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 1, other)
}

func TestCounterConcurrentNextIsUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	const n = 50
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.Counters().Next(ctx, repository.CounterTransactions)
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d allocated twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Products().UpdateQuantity(ctx, 1, -3))
		_, err := tx.Counters().Next(ctx, repository.CounterTransactions)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, p.Quantity)

	next, err := s.Counters().Next(ctx, repository.CounterTransactions)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestWithinTxCommitsAndNestedJoins(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Products().UpdateQuantity(ctx, 1, -3); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return inner.Products().UpdateQuantity(ctx, 1, -2)
		})
	})
	require.NoError(t, err)

	p, err := s.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Quantity)
}

func TestUpdateQuantityNeverGoesNegative(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	err := s.Products().UpdateQuantity(ctx, 1, -11)
	require.ErrorIs(t, err, repository.ErrNotEnough)

	err = s.Products().UpdateQuantity(ctx, 99, -1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Products().UpdateQuantity(ctx, 1, -10))
	p, err := s.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Quantity)
}

func TestProductNameUnique(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	err := s.Products().Create(ctx, &models.Product{ProductID: 2, Name: "Milanesa", Price: 1, Category: models.CategoryPollo})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, s.Products().Create(ctx, &models.Product{ProductID: 2, Name: "Patitas", Price: 1, Category: models.CategoryPollo}))
	err = s.Products().Update(ctx, &models.Product{ProductID: 2, Name: "Milanesa", Price: 1, Category: models.CategoryPollo})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestProductDeleteBlockedBySales(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Sales().CreateItem(ctx, &models.SaleLineItem{
		ID: 1, TransactionID: 1, CustomerID: 1, ProductID: 1, SellerID: "s-1",
		Quantity: 1, UnitPrice: 5, LineTotal: 5, Status: models.StatusPendingScheduling,
	}))

	err := s.Products().Delete(ctx, 1)
	require.ErrorIs(t, err, repository.ErrInUse)

	err = s.Products().Delete(ctx, 42)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSalesResolveNamesOnRead(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Sales().CreateItem(ctx, &models.SaleLineItem{
		ID: 1, TransactionID: 7, CustomerID: 1, ProductID: 1, SellerID: "s-1",
		Quantity: 2, UnitPrice: 5, LineTotal: 10, Status: models.StatusPendingScheduling,
		CustomerName: "stale",
	}))
	require.NoError(t, s.Customers().Update(ctx, &models.Customer{CustomerID: 1, Name: "Ana Maria", Address: "Calle 1"}))
	require.NoError(t, s.Sales().UpdateDelivery(ctx, 7, repository.DeliveryUpdate{
		Status: models.StatusInDelivery, DeliveryDate: "2026-10-20", DeliveryWindow: models.WindowMorning, CourierID: "c-1",
	}))

	items, err := s.Sales().GetByTransaction(ctx, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ana Maria", items[0].CustomerName)
	assert.Equal(t, "Milanesa", items[0].ProductName)
	assert.Equal(t, "Vera", items[0].SellerName)
	assert.Equal(t, "Leo", items[0].CourierName)
	assert.Equal(t, models.StatusInDelivery, items[0].Status)

	_, err = s.Sales().GetByTransaction(ctx, 8)
	require.ErrorIs(t, err, repository.ErrNotFound)

	byStatus, err := s.Sales().GetByStatus(ctx, models.StatusScheduled)
	require.NoError(t, err)
	assert.Empty(t, byStatus)
}

func TestThresholdsMissingUntilSaved(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_, err := s.Settings().GetStockThresholds(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Settings().SaveStockThresholds(ctx, models.DefaultStockThresholds()))
	got, err := s.Settings().GetStockThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStockThresholds(), *got)
}

func TestPreOrderListFilters(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 2, Status: models.PreOrderPending}))
	require.NoError(t, s.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 2, CustomerID: 1, ProductID: 1, Quantity: 1, Status: models.PreOrderPending}))
	require.NoError(t, s.PreOrders().UpdateStatus(ctx, 2, models.PreOrderCompleted))

	pending, err := s.PreOrders().List(ctx, 1, models.PreOrderPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Ana", pending[0].CustomerName)

	all, err := s.PreOrders().List(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = s.PreOrders().UpdateStatus(ctx, 1, "lost")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestPreOrderCompleteOnlyFromPending(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 2, Status: models.PreOrderPending}))

	err := s.PreOrders().Complete(ctx, 1, 2)
	require.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, s.PreOrders().Complete(ctx, 1, 1))
	o, err := s.PreOrders().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PreOrderCompleted, o.Status)

	err = s.PreOrders().Complete(ctx, 1, 1)
	require.ErrorIs(t, err, repository.ErrConflict)

	err = s.PreOrders().Complete(ctx, 9, 1)
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestProductSearchIsLiteral(t *testing.T) {
	s := NewStore()
	seed(t, s)
	ctx := context.Background()

	found, err := s.Products().Search(ctx, "  MILA ")
	require.NoError(t, err)
	require.Len(t, found, 1)

	for _, term := range []string{"%", "_ilanesa"} {
		found, err := s.Products().Search(ctx, term)
		require.NoError(t, err)
		assert.Empty(t, found, term)
	}
}
