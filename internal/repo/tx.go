package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// beginner is satisfied by *pgxpool.Pool and pgx.Tx. Beginning on a pgx.Tx
// opens a savepoint, so integration tests can run WithinTx inside their
// rolled-back test transaction.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles the repositories bound to one transaction.
type Repos struct {
	Trips     TripRepo
	Items     ItemRepo
	Bags      BagRepo
	Templates TemplateRepo
	Weather   WeatherCacheRepo
}

// Transactor runs a unit of work atomically.
type Transactor interface {
	// WithinTx calls fn with repositories bound to a new transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}

type pgTransactor struct {
	db beginner
}

// NewTransactor constructs a Transactor over a pool (or, in tests, a transaction).
func NewTransactor(db beginner) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(ctx, Repos{
		Trips:     NewTripRepo(tx),
		Items:     NewItemRepo(tx),
		Bags:      NewBagRepo(tx),
		Templates: NewTemplateRepo(tx),
		Weather:   NewWeatherCacheRepo(tx),
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Transactor.WithinTx: commit: %w", err)
	}
	return nil
}
