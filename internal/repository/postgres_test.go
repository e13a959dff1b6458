package repository_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-service/internal/database"
	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/sales"
)

// testPostgres connects to POSTGRES_TEST_DSN, applies the migrations and
// empties every table the tests write to.
func testPostgres(t *testing.T) repository.Store {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, database.Migrate(ctx, pool, quietLogger()))

	_, err = pool.Exec(ctx, `TRUNCATE operations, inventory, preorders, sale_items,
		couriers, sellers, products, customers, counters RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return repository.NewPostgresStore(pool)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCatalog(t *testing.T, store repository.Store, stock int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Customers().Create(ctx, &models.Customer{CustomerID: 1, Name: "Ana", Address: "Calle 1"}))
	require.NoError(t, store.Customers().Create(ctx, &models.Customer{CustomerID: 2, Name: "Beto", Address: "Calle 2"}))
	require.NoError(t, store.Sellers().Create(ctx, &models.Seller{SellerID: "s-1", Name: "Sofia", Email: "sofia@example.com"}))
	require.NoError(t, store.Products().Create(ctx, &models.Product{ProductID: 1, Name: "Milanesa", Price: 12.35, Quantity: stock, Category: models.CategoryRebosados}))
}

func newSalesService(store repository.Store) *sales.Service {
	now := func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	return sales.NewService(store, lifecycle.NewMachine(time.UTC, now), sales.NewFeed(), quietLogger())
}

func TestPostgresCounterSequence(t *testing.T) {
	store := testPostgres(t)
	ctx := context.Background()

	first, err := store.Counters().Next(ctx, repository.CounterTransactions)
	require.NoError(t, err)
	second, err := store.Counters().Next(ctx, repository.CounterTransactions)
	require.NoError(t, err)
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)

	other, err := store.Counters().Next(ctx, repository.CounterProducts)
	require.NoError(t, err)
	assert.Equal(t, 1, other)

	_, err = store.Counters().Next(ctx, "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestPostgresCounterConcurrentUnique(t *testing.T) {
	store := testPostgres(t)
	ctx := context.Background()

	const callers = 20
	var (
		mu   sync.Mutex
		seen = map[int]bool{}
		wg   sync.WaitGroup
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Counters().Next(ctx, repository.CounterCustomers)
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			assert.False(t, seen[id], "id %d allocated twice", id)
			seen[id] = true
		}()
	}
	wg.Wait()

	assert.Len(t, seen, callers)
	for id := 1; id <= callers; id++ {
		assert.True(t, seen[id], "missing id %d", id)
	}
}

func TestPostgresPriceRoundTrip(t *testing.T) {
	store := testPostgres(t)
	seedCatalog(t, store, 5)
	ctx := context.Background()

	p, err := store.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 12.35, p.Price)
	assert.Equal(t, 5, p.Quantity)

	found, err := store.Products().Search(ctx, "  MILA ")
	require.NoError(t, err)
	require.Len(t, found, 1)

	wild, err := store.Products().Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, wild)
}

func TestPostgresUpdateQuantityNeverNegative(t *testing.T) {
	store := testPostgres(t)
	seedCatalog(t, store, 3)
	ctx := context.Background()

	require.NoError(t, store.Products().UpdateQuantity(ctx, 1, -2))

	err := store.Products().UpdateQuantity(ctx, 1, -2)
	require.ErrorIs(t, err, repository.ErrNotEnough)

	err = store.Products().UpdateQuantity(ctx, 99, -1)
	require.ErrorIs(t, err, repository.ErrNotFound)

	p, err := store.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)
}

func TestPostgresDeleteReferencedProduct(t *testing.T) {
	store := testPostgres(t)
	seedCatalog(t, store, 3)
	ctx := context.Background()

	require.NoError(t, store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 1, Status: models.PreOrderPending}))

	err := store.Products().Delete(ctx, 1)
	require.ErrorIs(t, err, repository.ErrInUse)

	err = store.Products().Delete(ctx, 99)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPostgresCompletePreOrderOnce(t *testing.T) {
	store := testPostgres(t)
	seedCatalog(t, store, 3)
	ctx := context.Background()

	require.NoError(t, store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 1, Status: models.PreOrderPending}))

	err := store.PreOrders().Complete(ctx, 1, 2)
	require.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, store.PreOrders().Complete(ctx, 1, 1))

	err = store.PreOrders().Complete(ctx, 1, 1)
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestPostgresConcurrentCheckoutsNeverOversell(t *testing.T) {
	store := testPostgres(t)
	seedCatalog(t, store, 10)
	svc := newSalesService(store)
	ctx := context.Background()

	const buyers = 8
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(ctx, sales.CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []sales.LineRequest{{ProductID: 1, Quantity: 3}}})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, sales.ErrInsufficientStock)
	}
	assert.Equal(t, 3, succeeded)

	p, err := store.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Quantity)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	seen := map[int]bool{}
	for _, sale := range history {
		assert.False(t, seen[sale.TransactionID])
		seen[sale.TransactionID] = true
		assert.Equal(t, 37.05, sale.Total)
	}
}

func TestPostgresConcurrentPreOrderCheckouts(t *testing.T) {
	store := testPostgres(t)
	seedCatalog(t, store, 10)
	svc := newSalesService(store)
	ctx := context.Background()

	require.NoError(t, store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 1, Status: models.PreOrderPending}))

	const attempts = 4
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(ctx, sales.CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []sales.LineRequest{{ProductID: 1, Quantity: 1}}, PreOrderID: 1})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, sales.ErrPreOrderClosed)
	}
	assert.Equal(t, 1, succeeded)

	p, err := store.Products().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Quantity)

	o, err := store.PreOrders().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PreOrderCompleted, o.Status)
}
