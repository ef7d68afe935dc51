package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// CategoryRepo defines the persistence operations for custom categories.
type CategoryRepo interface {
	Create(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	List(ctx context.Context, owner string) ([]domain.CustomCategory, error)
	Update(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}

type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

const categoryColumns = `id, owner_id, name, created_at`

func (r *pgCategoryRepo) Create(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	const q = `
		INSERT INTO custom_categories (owner_id, name)
		VALUES (@owner_id, @name)
		RETURNING ` + categoryColumns

	result, err := scanCategory(r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": c.Owner, "name": c.Name}))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CustomCategory{}, fmt.Errorf("repo.CategoryRepo.Create: %w: a category named %q already exists", domain.ErrValidation, c.Name)
		}
		return domain.CustomCategory{}, fmt.Errorf("repo.CategoryRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCategoryRepo) List(ctx context.Context, owner string) ([]domain.CustomCategory, error) {
	const q = `SELECT ` + categoryColumns + ` FROM custom_categories WHERE owner_id = @owner_id ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: %w", err)
	}
	out, err := collect(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: scan: %w", err)
	}
	return out, nil
}

func (r *pgCategoryRepo) Update(ctx context.Context, c domain.CustomCategory) (domain.CustomCategory, error) {
	const q = `
		UPDATE custom_categories SET name = @name
		WHERE id = @id AND owner_id = @owner_id
		RETURNING ` + categoryColumns

	result, err := scanCategory(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": c.ID, "owner_id": c.Owner, "name": c.Name}))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.CustomCategory{}, fmt.Errorf("repo.CategoryRepo.Update: %w: a category named %q already exists", domain.ErrValidation, c.Name)
		}
		return domain.CustomCategory{}, fmt.Errorf("repo.CategoryRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgCategoryRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	const q = `DELETE FROM custom_categories WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanCategory(s scanner) (domain.CustomCategory, error) {
	var (
		c  domain.CustomCategory
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Owner, &c.Name, &c.CreatedAt); err != nil {
		return domain.CustomCategory{}, notFound(err)
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
