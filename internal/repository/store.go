package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Customers() CustomerRepository   { return &customerRepo{db: s.db} }
func (s *pgStore) Products() ProductRepository     { return &productRepo{db: s.db, inTx: s.inTx} }
func (s *pgStore) Sellers() SellerRepository       { return &sellerRepo{db: s.db} }
func (s *pgStore) Couriers() CourierRepository     { return &courierRepo{db: s.db} }
func (s *pgStore) Sales() SaleRepository           { return &saleRepo{db: s.db, inTx: s.inTx} }
func (s *pgStore) PreOrders() PreOrderRepository   { return &preOrderRepo{db: s.db} }
func (s *pgStore) Counters() CounterRepository     { return &counterRepo{db: s.db} }
func (s *pgStore) Settings() SettingsRepository    { return &settingsRepo{db: s.db} }
func (s *pgStore) Inventory() InventoryRepository  { return &inventoryRepo{db: s.db} }
func (s *pgStore) Operations() OperationRepository { return &operationRepo{db: s.db} }
func (s *pgStore) Users() UserRepository           { return &userRepo{db: s.db} }

func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgStore{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translate maps driver errors onto the package sentinels.
func translate(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s already exists", ErrDuplicate, what)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s (%s)", ErrInUse, what, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s violates %s", ErrInvalidInput, what, pgErr.ConstraintName)
		}
	}
	return err
}
