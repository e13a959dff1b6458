// Package delivery moves sales through scheduling, courier assignment and
// delivery. Every move goes through the lifecycle machine and rewrites all
// line items of the transaction in one store transaction.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"backoffice-service/internal/lifecycle"
	"backoffice-service/internal/models"
	"backoffice-service/internal/observability"
	"backoffice-service/internal/repository"
	"backoffice-service/internal/sales"
)

type Service struct {
	store    repository.Store
	machine  *lifecycle.Machine
	notifier sales.Notifier
	logger   *slog.Logger
}

func NewService(store repository.Store, machine *lifecycle.Machine, notifier sales.Notifier, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		machine:  machine,
		notifier: notifier,
		logger:   logger,
	}
}

// transition loads and locks the transaction's items, lets step compute the
// update from the aggregate status and writes it to every item.
func (s *Service) transition(ctx context.Context, tid int, step func(tx repository.Store, current models.SaleLineItem, status models.SaleStatus) (repository.DeliveryUpdate, error)) (*models.Sale, error) {
	var sale models.Sale

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		items, err := tx.Sales().GetByTransaction(ctx, tid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: transaction %d", repository.ErrNotFound, tid)
			}
			return err
		}

		statuses := make([]models.SaleStatus, 0, len(items))
		for _, item := range items {
			statuses = append(statuses, item.Status)
		}

		update, err := step(tx, items[0], lifecycle.Aggregate(statuses))
		if err != nil {
			return err
		}

		if err := tx.Sales().UpdateDelivery(ctx, tid, update); err != nil {
			return err
		}

		items, err = tx.Sales().GetByTransaction(ctx, tid)
		if err != nil {
			return err
		}
		sale = sales.Group(items)[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Publish()
	}
	return &sale, nil
}

func (s *Service) Schedule(ctx context.Context, tid int, date, window string) (*models.Sale, error) {
	sale, err := s.transition(ctx, tid, func(_ repository.Store, current models.SaleLineItem, status models.SaleStatus) (repository.DeliveryUpdate, error) {
		next, err := s.machine.Schedule(status, date, window)
		if err != nil {
			return repository.DeliveryUpdate{}, err
		}
		return repository.DeliveryUpdate{
			Status:         next,
			DeliveryDate:   date,
			DeliveryWindow: window,
			CourierID:      current.CourierID,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	observability.Logger(ctx, s.logger).Info("delivery scheduled",
		"transaction_id", tid,
		"date", date,
		"window", window,
	)
	return sale, nil
}

// AssignCourier hands the sale to a courier. Availability is advisory: an
// unavailable courier is logged, not refused.
func (s *Service) AssignCourier(ctx context.Context, tid int, courierID string) (*models.Sale, error) {
	logger := observability.Logger(ctx, s.logger)

	sale, err := s.transition(ctx, tid, func(tx repository.Store, current models.SaleLineItem, status models.SaleStatus) (repository.DeliveryUpdate, error) {
		next, err := s.machine.AssignCourier(status, courierID)
		if err != nil {
			return repository.DeliveryUpdate{}, err
		}

		courier, err := tx.Couriers().GetByID(ctx, courierID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.DeliveryUpdate{}, fmt.Errorf("%w: courier %s", repository.ErrNotFound, courierID)
			}
			return repository.DeliveryUpdate{}, err
		}
		if !courier.Available {
			logger.Warn("assigning unavailable courier", "transaction_id", tid, "courier_id", courierID)
		}

		return repository.DeliveryUpdate{
			Status:         next,
			DeliveryDate:   current.DeliveryDate,
			DeliveryWindow: current.DeliveryWindow,
			CourierID:      courier.CourierID,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("courier assigned", "transaction_id", tid, "courier_id", courierID)
	return sale, nil
}

// MarkDelivered closes the sale. It is only accepted on the scheduled
// delivery date in the business time zone.
func (s *Service) MarkDelivered(ctx context.Context, tid int) (*models.Sale, error) {
	sale, err := s.transition(ctx, tid, func(_ repository.Store, current models.SaleLineItem, status models.SaleStatus) (repository.DeliveryUpdate, error) {
		next, err := s.machine.MarkDelivered(status, current.DeliveryDate)
		if err != nil {
			return repository.DeliveryUpdate{}, err
		}
		return repository.DeliveryUpdate{
			Status:         next,
			DeliveryDate:   current.DeliveryDate,
			DeliveryWindow: current.DeliveryWindow,
			CourierID:      current.CourierID,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	observability.Logger(ctx, s.logger).Info("sale delivered", "transaction_id", tid)
	return sale, nil
}

// Board lists the sales whose items are in any of the given statuses,
// newest first. No statuses means every sale.
func (s *Service) Board(ctx context.Context, statuses ...models.SaleStatus) ([]models.Sale, error) {
	for _, st := range statuses {
		if !lifecycle.Valid(st) {
			return nil, fmt.Errorf("%w: unknown status %q", repository.ErrInvalidInput, st)
		}
	}

	items, err := s.store.Sales().GetByStatus(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return sales.Group(items), nil
}
