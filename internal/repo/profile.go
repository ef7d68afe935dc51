package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/packlist/backend/internal/domain"
)

// ProfileRepo stores one display profile per principal.
type ProfileRepo interface {
	// Get returns domain.ErrNotFound until the user has set a profile.
	Get(ctx context.Context, owner string) (domain.Profile, error)

	// Upsert creates or replaces the profile.
	Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error)
}

type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

func (r *pgProfileRepo) Get(ctx context.Context, owner string) (domain.Profile, error) {
	const q = `SELECT owner_id, name FROM profiles WHERE owner_id = @owner_id`

	var p domain.Profile
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": owner}).Scan(&p.Owner, &p.Name); err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", notFound(err))
	}
	return p, nil
}

func (r *pgProfileRepo) Upsert(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	const q = `
		INSERT INTO profiles (owner_id, name) VALUES (@owner_id, @name)
		ON CONFLICT (owner_id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING owner_id, name`

	var out domain.Profile
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"owner_id": p.Owner, "name": p.Name}).Scan(&out.Owner, &out.Name); err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.Upsert: %w", err)
	}
	return out, nil
}
