package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/repository/memory"
	"backoffice-service/internal/stock"
)

func newTestService() (*Service, *memory.Store) {
	store := memory.NewStore()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func TestCreateCustomerAllocatesSequentialIDs(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateCustomer(ctx, CustomerInput{Name: "Ana", Address: "Calle 1"})
	require.NoError(t, err)
	second, err := svc.CreateCustomer(ctx, CustomerInput{Name: "Beto", Address: "Calle 2", Email: "beto@example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.CustomerID)
	assert.Equal(t, 2, second.CustomerID)

	all, err := svc.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   CustomerInput
	}{
		{name: "missing name", in: CustomerInput{Address: "Calle 1"}},
		{name: "blank name", in: CustomerInput{Name: "   ", Address: "Calle 1"}},
		{name: "missing address", in: CustomerInput{Name: "Ana"}},
		{name: "bad email", in: CustomerInput{Name: "Ana", Address: "Calle 1", Email: "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(ctx, tt.in)
			assert.ErrorIs(t, err, repository.ErrInvalidInput)
		})
	}

	n, err := store.Customers().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateCustomerNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateCustomer(context.Background(), 9, CustomerInput{Name: "Ana", Address: "Calle 1"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateProductWritesInventoryAndLedger(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Milanesa", Price: 5, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, p.ProductID)
	assert.Equal(t, models.CategoryOther, p.Category)

	rec, err := store.Inventory().GetByProductID(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.Quantity)

	ops, err := svc.ProductOperations(ctx, p.ProductID)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, models.OperationIncoming, ops[0].OperationType)
	assert.Equal(t, 10, ops[0].ChangeQuant)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   ProductInput
	}{
		{name: "missing name", in: ProductInput{Price: 1}},
		{name: "zero price", in: ProductInput{Name: "X", Price: 0}},
		{name: "negative quantity", in: ProductInput{Name: "X", Price: 1, Quantity: -1}},
		{name: "unknown category", in: ProductInput{Name: "X", Price: 1, Category: "verduras"}},
		{name: "negative threshold", in: ProductInput{Name: "X", Price: 1, Thresholds: models.ProductThresholds{Low: -1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, repository.ErrInvalidInput)
		})
	}
}

func TestCreateProductDuplicateNameRollsBackCounter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Milanesa", Price: 5, Quantity: 1})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Milanesa", Price: 6, Quantity: 1})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	next, err := svc.CreateProduct(ctx, ProductInput{Name: "Patitas", Price: 6, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, next.ProductID)
}

func TestUpdateProductRecordsAdjustment(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Merluza", Price: 9, Quantity: 10, Category: models.CategoryPescado})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, p.ProductID, ProductInput{Name: "Merluza", Price: 10, Quantity: 4, Category: models.CategoryPescado})
	require.NoError(t, err)

	ops, err := svc.ProductOperations(ctx, p.ProductID)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, models.OperationAdjustment, ops[1].OperationType)
	assert.Equal(t, -6, ops[1].ChangeQuant)

	rec, err := store.Inventory().GetByProductID(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Quantity)

	_, err = svc.UpdateProduct(ctx, p.ProductID, ProductInput{Name: "Merluza", Price: 11, Quantity: 4, Category: models.CategoryPescado})
	require.NoError(t, err)
	ops, err = svc.ProductOperations(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestListProductsByCategory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Milanesa", Price: 5, Category: models.CategoryRebosados})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Merluza", Price: 9, Category: models.CategoryPescado})
	require.NoError(t, err)

	fish, err := svc.ListProducts(ctx, models.CategoryPescado)
	require.NoError(t, err)
	require.Len(t, fish, 1)
	assert.Equal(t, "Merluza", fish[0].Name)

	all, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListProducts(ctx, "verduras")
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestStaffCreateAndCourierAvailability(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	seller, err := svc.CreateSeller(ctx, StaffInput{Name: "Vera", Email: "Vera@Example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, seller.SellerID)
	assert.Equal(t, "vera@example.com", seller.Email)

	_, err = svc.CreateSeller(ctx, StaffInput{Name: "Vera"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	courier, err := svc.CreateCourier(ctx, CourierInput{StaffInput: StaffInput{Name: "Leo", Email: "leo@example.com"}})
	require.NoError(t, err)
	assert.True(t, courier.Available)

	updated, err := svc.SetCourierAvailability(ctx, courier.CourierID, false)
	require.NoError(t, err)
	assert.False(t, updated.Available)

	renamed, err := svc.UpdateCourier(ctx, courier.CourierID, CourierInput{StaffInput: StaffInput{Name: "Leonel", Email: "leo@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "Leonel", renamed.Name)
	assert.False(t, renamed.Available)

	_, err = svc.SetCourierAvailability(ctx, "missing", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreatePreOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, CustomerInput{Name: "Ana", Address: "Calle 1"})
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, ProductInput{Name: "Milanesa", Price: 5, Quantity: 10})
	require.NoError(t, err)

	o, err := svc.CreatePreOrder(ctx, PreOrderInput{CustomerID: c.CustomerID, ProductID: p.ProductID, Quantity: 3, DeliveryDate: "2026-11-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, o.PreOrderID)
	assert.Equal(t, models.PreOrderPending, o.Status)
	assert.Equal(t, "Calle 1", o.CustomerAddress)

	_, err = svc.CreatePreOrder(ctx, PreOrderInput{CustomerID: 99, ProductID: p.ProductID, Quantity: 1})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.CreatePreOrder(ctx, PreOrderInput{CustomerID: c.CustomerID, ProductID: p.ProductID, Quantity: 1, DeliveryDate: "02/11/2026"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	pending, err := svc.ListPreOrders(ctx, c.CustomerID, models.PreOrderPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Milanesa", pending[0].ProductName)

	_, err = svc.ListPreOrders(ctx, 0, "lost")
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestThresholdsDefaultAndSave(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	got, err := svc.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStockThresholds(), got)

	stored, err := store.Settings().GetStockThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStockThresholds(), *stored)

	err = svc.SaveThresholds(ctx, models.StockThresholds{LowThreshold: 10, MediumThreshold: 5, HighThreshold: 20})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	require.NoError(t, svc.SaveThresholds(ctx, models.StockThresholds{LowThreshold: 2, MediumThreshold: 4, HighThreshold: 8}))
	got, err = svc.Thresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, got.HighThreshold)
}

func TestInventoryLevels(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "Milanesa", Price: 5, Quantity: 3, Category: models.CategoryRebosados})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Nuggets", Price: 5, Quantity: 30, Category: models.CategoryRebosados,
		Thresholds: models.ProductThresholds{High: 40}})
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, ProductInput{Name: "Milanesa de pollo", Price: 5, Quantity: 20, Category: models.CategoryPollo})
	require.NoError(t, err)

	items, err := svc.Inventory(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, stock.LevelLow, items[0].Level)
	assert.Equal(t, stock.LevelNormal, items[1].Level)
	assert.Equal(t, 40, items[1].Effective.HighThreshold)
	assert.Equal(t, 15, items[1].Effective.MediumThreshold)

	found, err := svc.Inventory(ctx, models.CategoryPescado, "milanesa")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
