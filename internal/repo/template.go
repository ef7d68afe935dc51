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

// TemplateRepo defines the persistence operations for templates and their
// snapshot rows. Header operations are scoped to the owner; content
// operations take a template id the caller has already resolved for that owner.
type TemplateRepo interface {
	// Create inserts the header plus t.Bags and t.Items. Item BagIDs refer to
	// the IDs of entries in t.Bags and are rewritten to the stored bag ids.
	// Call inside a transaction so a failure leaves nothing behind.
	Create(ctx context.Context, t domain.Template) (domain.Template, error)

	// GetByID returns the header with counts, bags and items.
	GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.Template, error)

	// List returns owner's template headers with counts, newest first.
	List(ctx context.Context, owner string) ([]domain.Template, error)

	// Update overwrites name, description and activities.
	Update(ctx context.Context, t domain.Template) (domain.Template, error)

	Delete(ctx context.Context, owner string, id uuid.UUID) error

	AddBag(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error)
	DeleteBag(ctx context.Context, templateID, bagID uuid.UUID) error
	AddItem(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error)
	DeleteItem(ctx context.Context, templateID, itemID uuid.UUID) error
}

type pgTemplateRepo struct {
	db db
}

// NewTemplateRepo constructs a TemplateRepo backed by the provided db connection.
func NewTemplateRepo(db db) TemplateRepo {
	return &pgTemplateRepo{db: db}
}

const templateColumns = `
	t.id, t.owner_id, t.name, t.description, t.activities, t.created_at,
	(SELECT count(*) FROM template_items i WHERE i.template_id = t.id),
	(SELECT count(*) FROM template_bags b WHERE b.template_id = t.id)`

func (r *pgTemplateRepo) Create(ctx context.Context, t domain.Template) (domain.Template, error) {
	const q = `
		INSERT INTO templates (owner_id, name, description, activities)
		VALUES (@owner_id, @name, @description, @activities)
		RETURNING id`

	var id pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"owner_id":    t.Owner,
		"name":        t.Name,
		"description": t.Description,
		"activities":  nonNil(t.Activities),
	}).Scan(&id)
	if err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.Create: %w", err)
	}
	templateID := uuid.UUID(id.Bytes)

	remap := make(map[uuid.UUID]uuid.UUID, len(t.Bags))
	for pos, b := range t.Bags {
		stored, err := r.insertBag(ctx, templateID, b, pos)
		if err != nil {
			return domain.Template{}, fmt.Errorf("repo.TemplateRepo.Create: bag: %w", err)
		}
		remap[b.ID] = stored.ID
	}
	for pos, it := range t.Items {
		if old, ok := it.BagID.Get(); ok {
			it.BagID = optional.None[uuid.UUID]()
			if mapped, found := remap[old]; found {
				it.BagID = optional.Some(mapped)
			}
		}
		if _, err := r.insertItem(ctx, templateID, it, pos); err != nil {
			return domain.Template{}, fmt.Errorf("repo.TemplateRepo.Create: item: %w", err)
		}
	}

	return r.GetByID(ctx, t.Owner, templateID)
}

func (r *pgTemplateRepo) GetByID(ctx context.Context, owner string, id uuid.UUID) (domain.Template, error) {
	const q = `SELECT ` + templateColumns + ` FROM templates t WHERE t.id = @id AND t.owner_id = @owner_id`

	t, err := scanTemplate(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner}))
	if err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.GetByID: %w", err)
	}

	const bagsQ = `
		SELECT id, name, weight_limit FROM template_bags
		WHERE template_id = @id ORDER BY position, id`
	rows, err := r.db.Query(ctx, bagsQ, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.GetByID: bags: %w", err)
	}
	if t.Bags, err = collect(rows, scanTemplateBag); err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.GetByID: bags: %w", err)
	}

	const itemsQ = `
		SELECT id, name, category, quantity, weight, bag_id FROM template_items
		WHERE template_id = @id ORDER BY position, id`
	rows, err = r.db.Query(ctx, itemsQ, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.GetByID: items: %w", err)
	}
	if t.Items, err = collect(rows, scanTemplateItem); err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.GetByID: items: %w", err)
	}

	return t, nil
}

func (r *pgTemplateRepo) List(ctx context.Context, owner string) ([]domain.Template, error) {
	const q = `
		SELECT ` + templateColumns + `
		FROM templates t
		WHERE t.owner_id = @owner_id
		ORDER BY t.created_at DESC, t.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"owner_id": owner})
	if err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: %w", err)
	}
	templates, err := collect(rows, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("repo.TemplateRepo.List: scan: %w", err)
	}
	return templates, nil
}

func (r *pgTemplateRepo) Update(ctx context.Context, t domain.Template) (domain.Template, error) {
	const q = `
		UPDATE templates
		SET name = @name, description = @description, activities = @activities
		WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":          t.ID,
		"owner_id":    t.Owner,
		"name":        t.Name,
		"description": t.Description,
		"activities":  nonNil(t.Activities),
	})
	if err != nil {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Template{}, fmt.Errorf("repo.TemplateRepo.Update: %w", domain.ErrNotFound)
	}
	return r.GetByID(ctx, t.Owner, t.ID)
}

func (r *pgTemplateRepo) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	const q = `DELETE FROM templates WHERE id = @id AND owner_id = @owner_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "owner_id": owner})
	if err != nil {
		return fmt.Errorf("repo.TemplateRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TemplateRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTemplateRepo) AddBag(ctx context.Context, templateID uuid.UUID, bag domain.TemplateBag) (domain.TemplateBag, error) {
	stored, err := r.insertBag(ctx, templateID, bag, -1)
	if err != nil {
		return domain.TemplateBag{}, fmt.Errorf("repo.TemplateRepo.AddBag: %w", err)
	}
	return stored, nil
}

func (r *pgTemplateRepo) DeleteBag(ctx context.Context, templateID, bagID uuid.UUID) error {
	const q = `DELETE FROM template_bags WHERE id = @id AND template_id = @template_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": bagID, "template_id": templateID})
	if err != nil {
		return fmt.Errorf("repo.TemplateRepo.DeleteBag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TemplateRepo.DeleteBag: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTemplateRepo) AddItem(ctx context.Context, templateID uuid.UUID, item domain.TemplateItem) (domain.TemplateItem, error) {
	stored, err := r.insertItem(ctx, templateID, item, -1)
	if err != nil {
		return domain.TemplateItem{}, fmt.Errorf("repo.TemplateRepo.AddItem: %w", err)
	}
	return stored, nil
}

func (r *pgTemplateRepo) DeleteItem(ctx context.Context, templateID, itemID uuid.UUID) error {
	const q = `DELETE FROM template_items WHERE id = @id AND template_id = @template_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": itemID, "template_id": templateID})
	if err != nil {
		return fmt.Errorf("repo.TemplateRepo.DeleteItem: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TemplateRepo.DeleteItem: %w", domain.ErrNotFound)
	}
	return nil
}

// insertBag stores a bag at pos; a negative pos appends after the last bag.
func (r *pgTemplateRepo) insertBag(ctx context.Context, templateID uuid.UUID, b domain.TemplateBag, pos int) (domain.TemplateBag, error) {
	const q = `
		INSERT INTO template_bags (template_id, name, weight_limit, position)
		VALUES (@template_id, @name, @weight_limit,
		        CASE WHEN @position::int >= 0 THEN @position::int
		             ELSE (SELECT coalesce(max(position) + 1, 0) FROM template_bags WHERE template_id = @template_id) END)
		RETURNING id, name, weight_limit`

	return scanTemplateBag(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"template_id":  templateID,
		"name":         b.Name,
		"weight_limit": b.WeightLimit.Ptr(),
		"position":     pos,
	}))
}

// insertItem stores an item at pos; a negative pos appends. A BagID that does
// not name a bag of this template fails on the foreign key.
func (r *pgTemplateRepo) insertItem(ctx context.Context, templateID uuid.UUID, it domain.TemplateItem, pos int) (domain.TemplateItem, error) {
	const q = `
		INSERT INTO template_items (template_id, name, category, quantity, weight, bag_id, position)
		VALUES (@template_id, @name, @category, @quantity, @weight, @bag_id,
		        CASE WHEN @position::int >= 0 THEN @position::int
		             ELSE (SELECT coalesce(max(position) + 1, 0) FROM template_items WHERE template_id = @template_id) END)
		RETURNING id, name, category, quantity, weight, bag_id`

	return scanTemplateItem(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"template_id": templateID,
		"name":        it.Name,
		"category":    it.Category,
		"quantity":    it.Quantity,
		"weight":      it.Weight.Ptr(),
		"bag_id":      it.BagID.Ptr(),
		"position":    pos,
	}))
}

func scanTemplate(s scanner) (domain.Template, error) {
	var (
		t         domain.Template
		id        pgtype.UUID
		itemCount int64
		bagCount  int64
	)

	err := s.Scan(&id, &t.Owner, &t.Name, &t.Description, &t.Activities, &t.CreatedAt, &itemCount, &bagCount)
	if err != nil {
		return domain.Template{}, notFound(err)
	}

	t.ID = uuid.UUID(id.Bytes)
	t.ItemCount = int(itemCount)
	t.BagCount = int(bagCount)
	if t.Activities == nil {
		t.Activities = []string{}
	}
	return t, nil
}

func scanTemplateBag(s scanner) (domain.TemplateBag, error) {
	var (
		b     domain.TemplateBag
		id    pgtype.UUID
		limit pgtype.Int8
	)
	if err := s.Scan(&id, &b.Name, &limit); err != nil {
		return domain.TemplateBag{}, notFound(err)
	}
	b.ID = uuid.UUID(id.Bytes)
	b.WeightLimit = optionalInt8(limit)
	return b, nil
}

func scanTemplateItem(s scanner) (domain.TemplateItem, error) {
	var (
		it     domain.TemplateItem
		id     pgtype.UUID
		weight pgtype.Int8
		bagID  pgtype.UUID
	)
	if err := s.Scan(&id, &it.Name, &it.Category, &it.Quantity, &weight, &bagID); err != nil {
		return domain.TemplateItem{}, notFound(err)
	}
	it.ID = uuid.UUID(id.Bytes)
	it.Weight = optionalInt8(weight)
	it.BagID = optionalUUID(bagID)
	return it, nil
}
