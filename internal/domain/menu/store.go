package menu

import (
	"context"
	"errors"
	"fmt"

	"tarelka/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) List(ctx context.Context, category string, limit, offset int) ([]Item, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	where := "available = true"
	args := []any{}
	arg := 1

	if category != "" {
		where += fmt.Sprintf(" AND category = $%d", arg)
		args = append(args, category)
		arg++
	}

	q := fmt.Sprintf(`
SELECT id, name, description, price, weight, image_url, category, available,
       created_at, updated_at,
       COUNT(*) OVER() AS total
FROM menu_items
WHERE %s
ORDER BY category, sort_order, name
LIMIT $%d OFFSET $%d
`, where, arg, arg+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []Item
	total := 0

	for rows.Next() {
		var it Item
		var t int
		if err := rows.Scan(
			&it.ID,
			&it.Name,
			&it.Description,
			&it.Price,
			&it.Weight,
			&it.ImageURL,
			&it.Category,
			&it.Available,
			&it.CreatedAt,
			&it.UpdatedAt,
			&t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan menu item: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, it)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("menu rows: %w", err)
	}

	return out, total, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Item, error) {
	var it Item
	err := r.db.QueryRow(ctx, `
SELECT id, name, description, price, weight, image_url, category, available,
       created_at, updated_at
FROM menu_items
WHERE id = $1
`, id).Scan(
		&it.ID,
		&it.Name,
		&it.Description,
		&it.Price,
		&it.Weight,
		&it.ImageURL,
		&it.Category,
		&it.Available,
		&it.CreatedAt,
		&it.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	return &it, nil
}

func (r *Repository) PricesByIDs(ctx context.Context, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return map[string]int{}, nil
	}

	rows, err := r.db.Query(ctx, `
SELECT id, price
FROM menu_items
WHERE id = ANY($1)
  AND available = true
`, ids)
	if err != nil {
		return nil, fmt.Errorf("prices by ids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int, len(ids))
	for rows.Next() {
		var id string
		var price int
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out[id] = price
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("price rows: %w", err)
	}

	return out, nil
}
