package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for custom activities.
// Suggested items are stored as an ordered JSONB array.
type ActivityRepo interface {
	// Create returns domain.ErrValidation if owner already has an activity
	// with the same name.
	Create(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.CustomActivity, error)

	// List returns owner's activities in creation order.
	List(ctx context.Context, owner string) ([]domain.CustomActivity, error)

	// ListByIDs returns the activities among ids that owner has, in ids order.
	// Unknown ids are skipped.
	ListByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]domain.CustomActivity, error)

	Update(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}

type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, owner_id, name, suggested_items, created_at`

func (r *pgActivityRepo) Create(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	const q = `
		INSERT INTO custom_activities (owner_id, name, suggested_items)
		VALUES (@owner_id, @name, @suggested_items)
		RETURNING ` + activityColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_id":        a.Owner,
		"name":            a.Name,
		"suggested_items": nonNil(a.SuggestedItems),
	})
	result, err := scanActivity(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CustomActivity{}, fmt.Errorf("repo.ActivityRepo.Create: %w: an activity named %q already exists", domain.ErrValidation, a.Name)
		}
		return domain.CustomActivity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.CustomActivity, error) {
	const q = `SELECT ` + activityColumns + ` FROM custom_activities WHERE id = @id AND owner_id = @owner_id`

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner}))
	if err != nil {
		return domain.CustomActivity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) List(ctx context.Context, owner string) ([]domain.CustomActivity, error) {
	const q = `SELECT ` + activityColumns + ` FROM custom_activities WHERE owner_id = @owner_id ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.List: %w", err)
	}
	out, err := collect(rows, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.List: scan: %w", err)
	}
	return out, nil
}

func (r *pgActivityRepo) ListByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]domain.CustomActivity, error) {
	if len(ids) == 0 {
		return []domain.CustomActivity{}, nil
	}

	// WITH ORDINALITY keeps the caller's order, duplicates included.
	const q = `
		SELECT a.id, a.owner_id, a.name, a.suggested_items, a.created_at
		FROM unnest(@ids::uuid[]) WITH ORDINALITY AS want(id, ord)
		JOIN custom_activities a ON a.id = want.id
		WHERE a.owner_id = @owner_id
		ORDER BY want.ord`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids, "owner_id": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByIDs: %w", err)
	}
	out, err := collect(rows, scanActivity)
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByIDs: scan: %w", err)
	}
	return out, nil
}

func (r *pgActivityRepo) Update(ctx context.Context, a domain.CustomActivity) (domain.CustomActivity, error) {
	const q = `
		UPDATE custom_activities
		SET name = @name, suggested_items = @suggested_items
		WHERE id = @id AND owner_id = @owner_id
		RETURNING ` + activityColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":              a.ID,
		"owner_id":        a.Owner,
		"name":            a.Name,
		"suggested_items": nonNil(a.SuggestedItems),
	})
	result, err := scanActivity(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CustomActivity{}, fmt.Errorf("repo.ActivityRepo.Update: %w: an activity named %q already exists", domain.ErrValidation, a.Name)
		}
		return domain.CustomActivity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	const q = `DELETE FROM custom_activities WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanActivity(s scanner) (domain.CustomActivity, error) {
	var (
		a  domain.CustomActivity
		id pgtype.UUID
	)
	if err := s.Scan(&id, &a.Owner, &a.Name, &a.SuggestedItems, &a.CreatedAt); err != nil {
		return domain.CustomActivity{}, notFound(err)
	}
	a.ID = uuid.UUID(id.Bytes)
	if a.SuggestedItems == nil {
		a.SuggestedItems = []domain.SuggestedItem{}
	}
	return a, nil
}
