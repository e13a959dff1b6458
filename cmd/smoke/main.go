// Command smoke runs one sale through a real PostgreSQL database: it
// migrates, seeds reference data, checks out, walks the delivery lifecycle
// and renders the receipt. Point it at a throwaway database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"backoffice-service/internal/catalog"
	"backoffice-service/internal/config"
	"backoffice-service/internal/database"
	"backoffice-service/internal/delivery"
	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/reporting"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/sales"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	logger := observability.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.ConnectDB(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		log.Fatal("migrations failed: ", err)
	}

	var now time.Time
	if err := pool.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		log.Fatal("query failed: ", err)
	}
	fmt.Println("Current database time:", now)

	store := repository.NewPostgresStore(pool)
	machine := lifecycle.NewMachine(cfg.Location(), time.Now)
	feed := sales.NewFeed()

	cat := catalog.NewService(store, logger)
	salesSvc := sales.NewService(store, machine, feed, logger)
	deliverySvc := delivery.NewService(store, machine, feed, logger)
	reports := reporting.NewService(store, machine, reporting.Company{Name: cfg.Business.CompanyName}, logger)

	fmt.Println("\n=== Seeding reference data ===")
	customer, err := cat.CreateCustomer(ctx, catalog.CustomerInput{Name: "Cliente de prueba", Address: "Calle Falsa 123"})
	must("create customer", err)
	seller, err := cat.CreateSeller(ctx, catalog.StaffInput{Name: "Vendedor de prueba", Email: "vendedor@example.com"})
	must("create seller", err)
	courier, err := cat.CreateCourier(ctx, catalog.CourierInput{StaffInput: catalog.StaffInput{Name: "Repartidor de prueba", Email: "repartidor@example.com"}})
	must("create courier", err)
	product, err := cat.CreateProduct(ctx, catalog.ProductInput{
		Name:     fmt.Sprintf("Producto %d", time.Now().UnixNano()),
		Price:    5,
		Quantity: 10,
		Category: models.CategoryPollo,
	})
	must("create product", err)
	fmt.Printf("✅ customer %d, seller %s, courier %s, product %d\n",
		customer.CustomerID, seller.SellerID, courier.CourierID, product.ProductID)

	fmt.Println("\n=== Checkout ===")
	_, err = salesSvc.Checkout(ctx, sales.CheckoutRequest{
		CustomerID: customer.CustomerID,
		SellerID:   seller.SellerID,
		Lines:      []sales.LineRequest{{ProductID: product.ProductID, Quantity: 11}},
	})
	if !errors.Is(err, sales.ErrInsufficientStock) {
		log.Fatal("❌ checkout above stock should fail with insufficient stock, got: ", err)
	}
	fmt.Println("✅ checkout above stock rejected")

	sale, err := salesSvc.Checkout(ctx, sales.CheckoutRequest{
		CustomerID: customer.CustomerID,
		SellerID:   seller.SellerID,
		Lines:      []sales.LineRequest{{ProductID: product.ProductID, Quantity: 3}},
	})
	must("checkout", err)
	after, err := cat.GetProduct(ctx, product.ProductID)
	must("reload product", err)
	if after.Quantity != 7 {
		log.Fatalf("❌ stock should be 7 after selling 3, got %d", after.Quantity)
	}
	fmt.Printf("✅ sale %d total %.2f, stock now %d\n", sale.TransactionID, sale.Total, after.Quantity)

	fmt.Println("\n=== Delivery lifecycle ===")
	today := machine.Today()
	_, err = deliverySvc.Schedule(ctx, sale.TransactionID, today, models.WindowMorning)
	must("schedule", err)
	_, err = deliverySvc.AssignCourier(ctx, sale.TransactionID, courier.CourierID)
	must("assign courier", err)
	delivered, err := deliverySvc.MarkDelivered(ctx, sale.TransactionID)
	must("mark delivered", err)
	fmt.Printf("✅ sale %d is %s\n", delivered.TransactionID, delivered.Status)

	ops, err := cat.ProductOperations(ctx, product.ProductID)
	must("list operations", err)
	fmt.Printf("✅ %d ledger operations for product %d\n", len(ops), product.ProductID)

	fmt.Println("\n=== Reports ===")
	d, err := reports.Dashboard(ctx)
	must("dashboard", err)
	fmt.Printf("✅ dashboard: %d transactions, total %.2f, today %.2f\n", d.Transactions, d.TotalSales, d.TodaySales)

	doc, err := reports.Receipt(ctx, sale.TransactionID)
	must("receipt", err)
	if err := os.WriteFile(doc.Filename, doc.Content, 0o644); err != nil {
		log.Fatal("❌ write receipt: ", err)
	}
	fmt.Printf("✅ receipt written to %s (%d bytes)\n", doc.Filename, len(doc.Content))
}

func must(step string, err error) {
	if err != nil {
		log.Fatalf("❌ %s failed: %v", step, err)
	}
}
