package sales

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/memory"
)

type fixture struct {
	svc   *Service
	store *memory.Store
	feed  *Feed
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Customers().Create(ctx, &models.Customer{CustomerID: 1, Name: "C", Address: "Calle 1"}))
	require.NoError(t, store.Customers().Create(ctx, &models.Customer{CustomerID: 2, Name: "D", Address: "Calle 2"}))
	require.NoError(t, store.Sellers().Create(ctx, &models.Seller{SellerID: "s-1", Name: "S"}))
	require.NoError(t, store.Products().Create(ctx, &models.Product{ProductID: 1, Name: "P", Price: 5, Quantity: 10, Category: models.CategoryRebosados}))
	require.NoError(t, store.Products().Create(ctx, &models.Product{ProductID: 2, Name: "Q", Price: 2.5, Quantity: 1, Category: models.CategoryPapas}))
	require.NoError(t, store.Inventory().Upsert(ctx, &models.InventoryRecord{ProductID: 1, Quantity: 10}))

	now := func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	feed := NewFeed()
	svc := NewService(store, lifecycle.NewMachine(time.UTC, now), feed, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return fixture{svc: svc, store: store, feed: feed}
}

func (f fixture) quantity(t *testing.T, productID int) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Quantity
}

func TestCheckoutSingleLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signals, cancel := f.feed.Subscribe()
	defer cancel()

	cart := &Cart{}
	require.NoError(t, f.svc.AddToCart(ctx, cart, 1, 3))

	sale, err := f.svc.CheckoutCart(ctx, cart, 1, "s-1", 0)
	require.NoError(t, err)

	assert.Equal(t, 7, f.quantity(t, 1))
	assert.Equal(t, 1, sale.TransactionID)
	assert.Equal(t, 15.0, sale.Total)
	assert.Equal(t, models.StatusPendingScheduling, sale.Status)
	assert.Equal(t, "2026-10-16", sale.Date)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, 5.0, sale.Items[0].UnitPrice)
	assert.Equal(t, 15.0, sale.Items[0].LineTotal)
	assert.Empty(t, cart.Lines())

	items, err := f.store.Sales().GetByTransaction(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "C", items[0].CustomerName)
	assert.Equal(t, "Calle 1", items[0].CustomerAddress)

	rec, err := f.store.Inventory().GetByProductID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Quantity)

	ops, err := f.store.Operations().GetByTransactionID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.OperationOutgoing, ops[0].OperationType)
	assert.Equal(t, -3, ops[0].ChangeQuant)

	select {
	case <-signals:
	default:
		t.Fatal("expected feed signal after checkout")
	}
}

func TestCheckoutRollsBackWhenALineFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, CheckoutRequest{
		CustomerID: 1,
		SellerID:   "s-1",
		Lines: []LineRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 5},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, f.quantity(t, 1))
	assert.Equal(t, 1, f.quantity(t, 2))

	all, err := f.store.Sales().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	next, err := f.store.Counters().Next(ctx, repository.CounterTransactions)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestCheckoutValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := []LineRequest{{ProductID: 1, Quantity: 1}}

	tests := []struct {
		name string
		req  CheckoutRequest
		want error
	}{
		{name: "no customer", req: CheckoutRequest{SellerID: "s-1", Lines: line}, want: repository.ErrInvalidInput},
		{name: "no seller", req: CheckoutRequest{CustomerID: 1, Lines: line}, want: repository.ErrInvalidInput},
		{name: "empty cart", req: CheckoutRequest{CustomerID: 1, SellerID: "s-1"}, want: ErrEmptyCart},
		{name: "unknown customer", req: CheckoutRequest{CustomerID: 9, SellerID: "s-1", Lines: line}, want: repository.ErrNotFound},
		{name: "unknown seller", req: CheckoutRequest{CustomerID: 1, SellerID: "nope", Lines: line}, want: repository.ErrNotFound},
		{name: "unknown product", req: CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 9, Quantity: 1}}}, want: repository.ErrNotFound},
		{name: "zero quantity", req: CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1}}}, want: ErrInvalidQuantity},
		{name: "merged lines exceed stock", req: CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 6}, {ProductID: 1, Quantity: 5}}}, want: ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Checkout(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, 10, f.quantity(t, 1))
}

func TestCheckoutCompletesPreOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 2, Status: models.PreOrderPending}))
	require.NoError(t, f.store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 2, CustomerID: 2, ProductID: 1, Quantity: 2, Status: models.PreOrderPending}))

	_, err := f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 2}}, PreOrderID: 2})
	require.ErrorIs(t, err, ErrPreOrderClosed)

	_, err = f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 2}}, PreOrderID: 1})
	require.NoError(t, err)

	o, err := f.store.PreOrders().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PreOrderCompleted, o.Status)

	_, err = f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 1}}, PreOrderID: 1})
	require.ErrorIs(t, err, ErrPreOrderClosed)
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const buyers = 8
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 3}}})
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
		assert.ErrorIs(t, err, ErrInsufficientStock)
	}

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 1, f.quantity(t, 1))

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 3)
	seen := map[int]bool{}
	for _, sale := range history {
		assert.False(t, seen[sale.TransactionID])
		seen[sale.TransactionID] = true
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}}})
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 2, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 2}}})
	require.NoError(t, err)

	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].TransactionID)
	assert.Equal(t, "D", history[0].CustomerName)
	assert.Equal(t, 1, history[1].TransactionID)
	assert.Len(t, history[1].Items, 2)
	assert.Equal(t, 7.5, history[1].Total)

	sale, err := f.svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7.5, sale.Total)

	_, err = f.svc.Get(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGroupUsesLeastAdvancedStatus(t *testing.T) {
	items := []models.SaleLineItem{
		{ID: 1, TransactionID: 4, LineTotal: 1.1, Status: models.StatusDelivered},
		{ID: 2, TransactionID: 4, LineTotal: 2.2, Status: models.StatusScheduled},
		{ID: 3, TransactionID: 5, LineTotal: 1, Status: models.StatusDelivered},
	}

	sales := Group(items)
	require.Len(t, sales, 2)
	assert.Equal(t, 5, sales[0].TransactionID)
	assert.Equal(t, models.StatusScheduled, sales[1].Status)
	assert.Equal(t, 3.3, sales[1].Total)
}

// staleStore reads every pre-order as pending, the view a checkout has
// when another transaction completes it after the read.
type staleStore struct{ repository.Store }

func (s staleStore) PreOrders() repository.PreOrderRepository {
	return stalePreOrders{s.Store.PreOrders()}
}

func (s staleStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error { return fn(staleStore{tx}) })
}

type stalePreOrders struct{ repository.PreOrderRepository }

func (r stalePreOrders) GetByID(ctx context.Context, id int) (*models.PreOrder, error) {
	o, err := r.PreOrderRepository.GetByID(ctx, id)
	if err == nil {
		o.Status = models.PreOrderPending
	}
	return o, err
}

func TestCheckoutRejectsPreOrderCompletedAfterRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 2, Status: models.PreOrderPending}))
	require.NoError(t, f.store.PreOrders().Complete(ctx, 1, 1))

	now := func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	svc := NewService(staleStore{f.store}, lifecycle.NewMachine(time.UTC, now), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 2}}, PreOrderID: 1})
	require.ErrorIs(t, err, ErrPreOrderClosed)

	assert.Equal(t, 10, f.quantity(t, 1))
	history, err := f.svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConcurrentPreOrderCheckoutsCompleteOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.PreOrders().Create(ctx, &models.PreOrder{PreOrderID: 1, CustomerID: 1, ProductID: 1, Quantity: 1, Status: models.PreOrderPending}))

	const attempts = 4
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Checkout(ctx, CheckoutRequest{CustomerID: 1, SellerID: "s-1", Lines: []LineRequest{{ProductID: 1, Quantity: 1}}, PreOrderID: 1})
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
		assert.ErrorIs(t, err, ErrPreOrderClosed)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 9, f.quantity(t, 1))
}

// addOnPublish adds to the cart between commit and cart cleanup.
type addOnPublish struct {
	cart    *Cart
	product models.Product
}

func (n addOnPublish) Publish() {
	_ = n.cart.Add(n.product, 1)
}

func TestCheckoutCartKeepsLinesAddedMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart := &Cart{}
	require.NoError(t, f.svc.AddToCart(ctx, cart, 1, 2))

	papas, err := f.store.Products().GetByID(ctx, 2)
	require.NoError(t, err)
	sameProduct := models.Product{ProductID: 1, Name: "P", Price: 5, Quantity: 10}

	now := func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(f.store, lifecycle.NewMachine(time.UTC, now), addOnPublish{cart: cart, product: *papas}, quiet)
	_, err = svc.CheckoutCart(ctx, cart, 1, "s-1", 0)
	require.NoError(t, err)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].ProductID)

	svc = NewService(f.store, lifecycle.NewMachine(time.UTC, now), addOnPublish{cart: cart, product: sameProduct}, quiet)
	cart.Clear()
	require.NoError(t, f.svc.AddToCart(ctx, cart, 1, 2))
	_, err = svc.CheckoutCart(ctx, cart, 1, "s-1", 0)
	require.NoError(t, err)

	lines = cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Quantity)
}
