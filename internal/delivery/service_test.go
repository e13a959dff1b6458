package delivery

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/memory"
	"backoffice-service/internal/sales"
)

var today = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	store *memory.Store
	feed  *sales.Feed
	now   *time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, store.Customers().Create(ctx, &models.Customer{CustomerID: 1, Name: "C", Address: "Calle 1"}))
	require.NoError(t, store.Sellers().Create(ctx, &models.Seller{SellerID: "s-1", Name: "S"}))
	require.NoError(t, store.Couriers().Create(ctx, &models.Courier{CourierID: "r-1", Name: "Leo", Available: true}))
	require.NoError(t, store.Couriers().Create(ctx, &models.Courier{CourierID: "r-2", Name: "Ema", Available: false}))
	require.NoError(t, store.Products().Create(ctx, &models.Product{ProductID: 1, Name: "P", Price: 5, Quantity: 10, Category: models.CategoryPollo}))
	for id := 1; id <= 2; id++ {
		require.NoError(t, store.Sales().CreateItem(ctx, &models.SaleLineItem{
			ID: id, TransactionID: 7, CustomerID: 1, ProductID: 1, SellerID: "s-1",
			Quantity: 1, Date: "2026-10-15", UnitPrice: 5, LineTotal: 5,
			CustomerAddress: "Calle 1", Status: models.StatusPendingScheduling,
		}))
	}

	now := today
	machine := lifecycle.NewMachine(time.UTC, func() time.Time { return now })
	feed := sales.NewFeed()
	svc := NewService(store, machine, feed, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return fixture{svc: svc, store: store, feed: feed, now: &now}
}

func (f fixture) items(t *testing.T) []models.SaleLineItem {
	t.Helper()
	items, err := f.store.Sales().GetByTransaction(context.Background(), 7)
	require.NoError(t, err)
	return items
}

func TestFullDeliveryFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.Schedule(ctx, 7, "2026-10-16", models.WindowMorning)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, sale.Status)
	for _, item := range f.items(t) {
		assert.Equal(t, models.StatusScheduled, item.Status)
		assert.Equal(t, "2026-10-16", item.DeliveryDate)
		assert.Equal(t, models.WindowMorning, item.DeliveryWindow)
	}

	sale, err = f.svc.AssignCourier(ctx, 7, "r-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInDelivery, sale.Status)
	assert.Equal(t, "Leo", sale.CourierName)
	assert.Equal(t, "2026-10-16", sale.DeliveryDate)

	sale, err = f.svc.MarkDelivered(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, sale.Status)
	for _, item := range f.items(t) {
		assert.Equal(t, models.StatusDelivered, item.Status)
		assert.Equal(t, "r-1", item.CourierID)
	}

	_, err = f.svc.Schedule(ctx, 7, "2026-10-20", models.WindowAfternoon)
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)
	assert.Equal(t, models.StatusDelivered, f.items(t)[0].Status)
}

func TestScheduleGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		date   string
		window string
	}{
		{name: "missing date", window: models.WindowMorning},
		{name: "missing window", date: "2026-10-17"},
		{name: "bad window", date: "2026-10-17", window: "noche"},
		{name: "bad date", date: "17/10/2026", window: models.WindowMorning},
		{name: "past date", date: "2026-10-15", window: models.WindowMorning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Schedule(ctx, 7, tt.date, tt.window)
			assert.ErrorIs(t, err, lifecycle.ErrGuardRejected)
		})
	}
	assert.Equal(t, models.StatusPendingScheduling, f.items(t)[0].Status)

	_, err := f.svc.Schedule(ctx, 99, "2026-10-17", models.WindowMorning)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAssignCourierRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AssignCourier(ctx, 7, "r-1")
	assert.ErrorIs(t, err, lifecycle.ErrInvalidTransition)

	_, err = f.svc.Schedule(ctx, 7, "2026-10-18", models.WindowAfternoon)
	require.NoError(t, err)

	_, err = f.svc.AssignCourier(ctx, 7, "")
	assert.ErrorIs(t, err, lifecycle.ErrGuardRejected)

	_, err = f.svc.AssignCourier(ctx, 7, "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	sale, err := f.svc.AssignCourier(ctx, 7, "r-2")
	require.NoError(t, err)
	assert.Equal(t, "Ema", sale.CourierName)
}

func TestMarkDeliveredOnlyOnDeliveryDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Schedule(ctx, 7, "2026-10-17", models.WindowMorning)
	require.NoError(t, err)
	_, err = f.svc.AssignCourier(ctx, 7, "r-1")
	require.NoError(t, err)

	_, err = f.svc.MarkDelivered(ctx, 7)
	assert.ErrorIs(t, err, lifecycle.ErrGuardRejected)
	assert.Equal(t, models.StatusInDelivery, f.items(t)[0].Status)

	*f.now = today.Add(24 * time.Hour)
	sale, err := f.svc.MarkDelivered(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, sale.Status)
}

func TestBoardAndFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signals, cancel := f.feed.Subscribe()
	defer cancel()

	pending, err := f.svc.Board(ctx, models.StatusPendingScheduling)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Len(t, pending[0].Items, 2)

	_, err = f.svc.Schedule(ctx, 7, "2026-10-16", models.WindowMorning)
	require.NoError(t, err)

	select {
	case <-signals:
	default:
		t.Fatal("expected feed signal after schedule")
	}

	board, err := f.svc.Board(ctx, models.StatusScheduled, models.StatusInDelivery)
	require.NoError(t, err)
	assert.Len(t, board, 1)

	pending, err = f.svc.Board(ctx, models.StatusPendingScheduling)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.svc.Board(ctx, "lost")
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}
