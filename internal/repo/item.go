package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/optional"
)

// ItemRepo defines the persistence operations for packing items.
// Every operation is scoped by tripID; callers verify trip ownership first.
type ItemRepo interface {
	// Create inserts one item and returns the persisted record.
	Create(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)

	// CreateMany inserts items in one round trip and returns them in input order.
	CreateMany(ctx context.Context, items []domain.PackingItem) ([]domain.PackingItem, error)

	// GetByID retrieves one item of a trip. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error)

	// List returns the trip's items matching filter, oldest first.
	List(ctx context.Context, tripID uuid.UUID, filter domain.ItemFilter) ([]domain.PackingItem, error)

	// Update overwrites name, category, quantity, weight and bag.
	Update(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error)

	// TogglePacked flips the packed flag atomically and returns the new record.
	TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error)

	// AssignBag sets or clears (absent bagID) the item's bag.
	AssignBag(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error)

	// Delete removes one item. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, tripID, itemID uuid.UUID) error
}

type pgItemRepo struct {
	db db
}

// NewItemRepo constructs an ItemRepo backed by the provided db connection.
func NewItemRepo(db db) ItemRepo {
	return &pgItemRepo{db: db}
}

const itemColumns = `id, trip_id, name, category, quantity, weight, bag_id, packed, created_at`

const insertItemSQL = `
	INSERT INTO items (trip_id, name, category, quantity, weight, bag_id, packed)
	VALUES (@trip_id, @name, @category, @quantity, @weight, @bag_id, @packed)
	RETURNING ` + itemColumns

func (r *pgItemRepo) Create(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	row := r.db.QueryRow(ctx, insertItemSQL, itemArgs(item))
	result, err := scanItem(row)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("repo.ItemRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) CreateMany(ctx context.Context, items []domain.PackingItem) ([]domain.PackingItem, error) {
	if len(items) == 0 {
		return []domain.PackingItem{}, nil
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(insertItemSQL, itemArgs(it))
	}

	results := r.db.SendBatch(ctx, batch)
	created := make([]domain.PackingItem, 0, len(items))
	for range items {
		it, err := scanItem(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("repo.ItemRepo.CreateMany: %w", err)
		}
		created = append(created, it)
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.CreateMany: close batch: %w", err)
	}
	return created, nil
}

func (r *pgItemRepo) GetByID(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": itemID, "trip_id": tripID})
	result, err := scanItem(row)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("repo.ItemRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) List(ctx context.Context, tripID uuid.UUID, filter domain.ItemFilter) ([]domain.PackingItem, error) {
	// A NULL @packed means both states.
	const q = `
		SELECT ` + itemColumns + `
		FROM items
		WHERE trip_id = @trip_id
		  AND (@packed::boolean IS NULL OR packed = @packed::boolean)
		  AND CASE @bag_kind::text
		        WHEN 'unassigned' THEN bag_id IS NULL
		        WHEN 'specific'   THEN bag_id = @bag_id::uuid
		        ELSE true
		      END
		ORDER BY created_at, id`

	args := pgx.NamedArgs{
		"trip_id":  tripID,
		"packed":   filter.Packed.Ptr(),
		"bag_kind": bagKind(filter.Bag),
		"bag_id":   nil,
	}
	if filter.Bag.Kind == domain.BagFilterSpecific {
		args["bag_id"] = filter.Bag.BagID
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.List: %w", err)
	}
	items, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("repo.ItemRepo.List: scan: %w", err)
	}
	return items, nil
}

func (r *pgItemRepo) Update(ctx context.Context, item domain.PackingItem) (domain.PackingItem, error) {
	const q = `
		UPDATE items
		SET name     = @name,
		    category = @category,
		    quantity = @quantity,
		    weight   = @weight,
		    bag_id   = @bag_id
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + itemColumns

	args := itemArgs(item)
	args["id"] = item.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanItem(row)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("repo.ItemRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) TogglePacked(ctx context.Context, tripID, itemID uuid.UUID) (domain.PackingItem, error) {
	const q = `
		UPDATE items SET packed = NOT packed
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + itemColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": itemID, "trip_id": tripID})
	result, err := scanItem(row)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("repo.ItemRepo.TogglePacked: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) AssignBag(ctx context.Context, tripID, itemID uuid.UUID, bagID optional.Value[uuid.UUID]) (domain.PackingItem, error) {
	const q = `
		UPDATE items SET bag_id = @bag_id
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + itemColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": itemID, "trip_id": tripID, "bag_id": bagID.Ptr()})
	result, err := scanItem(row)
	if err != nil {
		return domain.PackingItem{}, fmt.Errorf("repo.ItemRepo.AssignBag: %w", err)
	}
	return result, nil
}

func (r *pgItemRepo) Delete(ctx context.Context, tripID, itemID uuid.UUID) error {
	const q = `DELETE FROM items WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": itemID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItemRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func itemArgs(it domain.PackingItem) pgx.NamedArgs {
	return pgx.NamedArgs{
		"trip_id":  it.TripID,
		"name":     it.Name,
		"category": it.Category,
		"quantity": it.Quantity,
		"weight":   it.Weight.Ptr(),
		"bag_id":   it.BagID.Ptr(),
		"packed":   it.Packed,
	}
}

func bagKind(f domain.BagFilter) string {
	switch f.Kind {
	case domain.BagFilterUnassigned:
		return "unassigned"
	case domain.BagFilterSpecific:
		return "specific"
	default:
		return "all"
	}
}

func scanItem(s scanner) (domain.PackingItem, error) {
	var (
		it     domain.PackingItem
		id     pgtype.UUID
		tripID pgtype.UUID
		weight pgtype.Int8
		bagID  pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &it.Name, &it.Category, &it.Quantity, &weight, &bagID, &it.Packed, &it.CreatedAt)
	if err != nil {
		return domain.PackingItem{}, notFound(err)
	}

	it.ID = uuid.UUID(id.Bytes)
	it.TripID = uuid.UUID(tripID.Bytes)
	it.Weight = optionalInt8(weight)
	it.BagID = optionalUUID(bagID)
	return it, nil
}
