// Package reporting builds the read-only views: the dashboard summary and
// the printable sale receipt.
package reporting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/sales"
)

// Company is printed in the receipt header.
type Company struct {
	Name    string
	Address string
	Phone   string
}

type Service struct {
	store   repository.Store
	machine *lifecycle.Machine
	company Company
	logger  *slog.Logger
}

func NewService(store repository.Store, machine *lifecycle.Machine, company Company, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		machine: machine,
		company: company,
		logger:  logger,
	}
}

type Dashboard struct {
	TotalSales      float64                   `json:"total_sales"`
	Products        int                       `json:"products"`
	Customers       int                       `json:"customers"`
	PreOrders       int                       `json:"preorders"`
	Transactions    int                       `json:"transactions"`
	TodaySales      float64                   `json:"today_sales"`
	TodayDeliveries int                       `json:"today_deliveries"`
	ByStatus        map[models.SaleStatus]int `json:"by_status"`
	Date            string                    `json:"date"`
}

// Dashboard runs the counts and the sales scan concurrently. Nothing is
// cached; every call reads the store.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{Date: s.machine.Today()}
	var items []models.SaleLineItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Products().Count(gctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		d.Products = n
		return nil
	})
	g.Go(func() error {
		n, err := s.store.Customers().Count(gctx)
		if err != nil {
			return fmt.Errorf("count customers: %w", err)
		}
		d.Customers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.store.PreOrders().Count(gctx)
		if err != nil {
			return fmt.Errorf("count preorders: %w", err)
		}
		d.PreOrders = n
		return nil
	})
	g.Go(func() error {
		all, err := s.store.Sales().GetAll(gctx)
		if err != nil {
			return fmt.Errorf("list sales: %w", err)
		}
		items = all
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	today := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.LineTotal)
		total = total.Add(line)
		if item.Date == d.Date {
			today = today.Add(line)
		}
	}
	d.TotalSales = total.Round(2).InexactFloat64()
	d.TodaySales = today.Round(2).InexactFloat64()

	grouped := sales.Group(items)
	d.Transactions = len(grouped)
	d.ByStatus = make(map[models.SaleStatus]int, 4)
	for _, sale := range grouped {
		d.ByStatus[sale.Status]++
		if sale.DeliveryDate == d.Date {
			d.TodayDeliveries++
		}
	}
	return d, nil
}
