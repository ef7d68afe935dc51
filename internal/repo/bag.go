package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// BagRepo defines the persistence operations for bags.
// Every operation is scoped by tripID.
type BagRepo interface {
	Create(ctx context.Context, bag domain.Bag) (domain.Bag, error)

	// GetByID returns domain.ErrNotFound when the bag does not belong to tripID.
	GetByID(ctx context.Context, tripID, bagID uuid.UUID) (domain.Bag, error)

	// List returns the trip's bags in creation order.
	List(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error)

	Update(ctx context.Context, bag domain.Bag) (domain.Bag, error)

	// Delete removes the bag. Items that were in it become unassigned.
	Delete(ctx context.Context, tripID, bagID uuid.UUID) error
}

type pgBagRepo struct {
	db db
}

// NewBagRepo constructs a BagRepo backed by the provided db connection.
func NewBagRepo(db db) BagRepo {
	return &pgBagRepo{db: db}
}

const bagColumns = `id, trip_id, name, weight_limit, created_at`

func (r *pgBagRepo) Create(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	const q = `
		INSERT INTO bags (trip_id, name, weight_limit)
		VALUES (@trip_id, @name, @weight_limit)
		RETURNING ` + bagColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id":      bag.TripID,
		"name":         bag.Name,
		"weight_limit": bag.WeightLimit.Ptr(),
	})
	result, err := scanBag(row)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("repo.BagRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBagRepo) GetByID(ctx context.Context, tripID, bagID uuid.UUID) (domain.Bag, error) {
	const q = `SELECT ` + bagColumns + ` FROM bags WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": bagID, "trip_id": tripID})
	result, err := scanBag(row)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("repo.BagRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBagRepo) List(ctx context.Context, tripID uuid.UUID) ([]domain.Bag, error) {
	const q = `SELECT ` + bagColumns + ` FROM bags WHERE trip_id = @trip_id ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.BagRepo.List: %w", err)
	}
	bags, err := collect(rows, scanBag)
	if err != nil {
		return nil, fmt.Errorf("repo.BagRepo.List: scan: %w", err)
	}
	return bags, nil
}

func (r *pgBagRepo) Update(ctx context.Context, bag domain.Bag) (domain.Bag, error) {
	const q = `
		UPDATE bags
		SET name = @name, weight_limit = @weight_limit
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + bagColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":           bag.ID,
		"trip_id":      bag.TripID,
		"name":         bag.Name,
		"weight_limit": bag.WeightLimit.Ptr(),
	})
	result, err := scanBag(row)
	if err != nil {
		return domain.Bag{}, fmt.Errorf("repo.BagRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgBagRepo) Delete(ctx context.Context, tripID, bagID uuid.UUID) error {
	const q = `DELETE FROM bags WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": bagID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.BagRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BagRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanBag(s scanner) (domain.Bag, error) {
	var (
		b      domain.Bag
		id     pgtype.UUID
		tripID pgtype.UUID
		limit  pgtype.Int8
	)

	if err := s.Scan(&id, &tripID, &b.Name, &limit, &b.CreatedAt); err != nil {
		return domain.Bag{}, notFound(err)
	}

	b.ID = uuid.UUID(id.Bytes)
	b.TripID = uuid.UUID(tripID.Bytes)
	b.WeightLimit = optionalInt8(limit)
	return b, nil
}
