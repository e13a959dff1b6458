// Package api wires the HTTP surface: middleware, role gates and handlers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"backoffice-service/internal/api/handlers"
	"backoffice-service/internal/api/middleware"
	"backoffice-service/internal/auth"
	"backoffice-service/internal/catalog"
	"backoffice-service/internal/config"
	"backoffice-service/internal/delivery"
	"backoffice-service/internal/reporting"
	"backoffice-service/internal/sales"
)

type Services struct {
	Auth      *auth.Service
	Catalog   *catalog.Service
	Sales     *sales.Service
	Carts     *sales.CartStore
	Feed      *sales.Feed
	Delivery  *delivery.Service
	Reporting *reporting.Service
	// Health checks by name, run by GET /health.
	Health map[string]handlers.Check
}

func NewRouter(cfg config.SecurityConfig, svc Services, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	var (
		authH      = handlers.NewAuthHandler(svc.Auth, logger)
		customerH  = handlers.NewCustomerHandler(svc.Catalog, logger)
		productH   = handlers.NewProductHandler(svc.Catalog, logger)
		staffH     = handlers.NewStaffHandler(svc.Catalog, logger)
		preorderH  = handlers.NewPreOrderHandler(svc.Catalog, logger)
		inventoryH = handlers.NewInventoryHandler(svc.Catalog, logger)
		salesH     = handlers.NewSalesHandler(svc.Sales, svc.Carts, logger)
		streamH    = handlers.NewStreamHandler(svc.Sales, svc.Feed, logger)
		deliveryH  = handlers.NewDeliveryHandler(svc.Delivery, logger)
		reportH    = handlers.NewReportHandler(svc.Reporting, logger)
		healthH    = handlers.NewHealthHandler(svc.Health, logger)
	)

	page := func(pages ...auth.Page) func(http.Handler) http.Handler {
		return middleware.RequirePage(logger, pages...)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg),
		middleware.RateLimit(limiter, logger),
	)

	r.Get("/health", healthH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/sign-in", authH.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(svc.Auth, logger))

			r.Get("/auth/me", authH.Me)

			r.With(page(auth.PageDashboard)).Get("/dashboard", reportH.Dashboard)

			r.Route("/customers", func(r chi.Router) {
				r.With(page(auth.PageClientes, auth.PageVentas, auth.PagePedidos)).Get("/", customerH.GetAll)
				r.With(page(auth.PageClientes, auth.PageVentas, auth.PagePedidos)).Get("/{id}", customerH.GetByID)
				r.With(page(auth.PageClientes)).Post("/", customerH.Create)
				r.With(page(auth.PageClientes)).Put("/{id}", customerH.Update)
			})

			r.Route("/products", func(r chi.Router) {
				r.With(page(auth.PageProductos, auth.PageVentas, auth.PageInventory, auth.PagePedidos)).Get("/", productH.GetAll)
				r.With(page(auth.PageProductos, auth.PageVentas, auth.PageInventory)).Get("/{id}", productH.GetByID)
				r.Group(func(r chi.Router) {
					r.Use(page(auth.PageProductos))
					r.Post("/", productH.Create)
					r.Put("/{id}", productH.Update)
					r.Delete("/{id}", productH.Delete)
					r.Get("/{id}/operations", productH.Operations)
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(page(auth.PageInventory))
				r.Get("/inventory", inventoryH.GetAll)
				r.Put("/settings/stock-thresholds", inventoryH.SaveThresholds)
			})
			r.With(page(auth.PageInventory, auth.PageProductos)).Get("/settings/stock-thresholds", inventoryH.GetThresholds)

			r.Route("/sellers", func(r chi.Router) {
				r.With(page(auth.PageVentas, auth.PageAdmin)).Get("/", staffH.ListSellers)
				r.With(page(auth.PageAdmin)).Post("/", staffH.CreateSeller)
				r.With(page(auth.PageAdmin)).Put("/{id}", staffH.UpdateSeller)
			})

			r.Route("/couriers", func(r chi.Router) {
				r.With(page(auth.PageRepartos, auth.PageAdmin)).Get("/", staffH.ListCouriers)
				r.With(page(auth.PageRepartos, auth.PageAdmin)).Put("/{id}/availability", staffH.SetCourierAvailability)
				r.With(page(auth.PageAdmin)).Post("/", staffH.CreateCourier)
				r.With(page(auth.PageAdmin)).Put("/{id}", staffH.UpdateCourier)
			})

			r.Route("/preorders", func(r chi.Router) {
				r.Use(page(auth.PagePedidos, auth.PageVentas))
				r.Get("/", preorderH.GetAll)
				r.Post("/", preorderH.Create)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(page(auth.PageVentas))
				r.Get("/", salesH.GetCart)
				r.Delete("/", salesH.ClearCart)
				r.Post("/items", salesH.AddToCart)
				r.Put("/items/{productID}", salesH.UpdateCartLine)
				r.Delete("/items/{productID}", salesH.RemoveFromCart)
				r.Post("/checkout", salesH.CheckoutCart)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(page(auth.PageVentas))
					r.Get("/", salesH.GetAll)
					r.Post("/", salesH.Create)
					r.Get("/stream", streamH.SalesHistory)
				})
				r.With(page(auth.PageVentas, auth.PagePedidos, auth.PageRepartos)).Get("/{tid}", salesH.GetByID)
				r.With(page(auth.PageVentas)).Get("/{tid}/receipt", reportH.Receipt)
				r.With(page(auth.PagePedidos)).Post("/{tid}/schedule", deliveryH.Schedule)
				r.With(page(auth.PageRepartos)).Post("/{tid}/courier", deliveryH.AssignCourier)
				r.With(page(auth.PageRepartos)).Post("/{tid}/delivered", deliveryH.MarkDelivered)
			})

			r.With(page(auth.PagePedidos, auth.PageRepartos)).Get("/deliveries", deliveryH.Board)

			r.With(page(auth.PageAdmin)).Post("/admin/users", authH.CreateUser)
		})
	})

	return r
}
