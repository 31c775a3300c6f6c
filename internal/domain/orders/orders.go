package orders

import (
	"context"
	"errors"
	"fmt"

	"tarelka/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct {
	db  dbx.TxBeginner
	gen *OrderNumberGenerator
}

func NewRepository(db dbx.TxBeginner, gen *OrderNumberGenerator) *Repository {
	if gen == nil {
		panic("orders: OrderNumberGenerator is nil")
	}
	return &Repository{db: db, gen: gen}
}

// Create persists the order and its items in one transaction. The order
// number is derived from the generated row id inside the same transaction,
// so a visible order always carries its public number.
//
// When in.IdempotencyKey is set and an order with that key already exists,
// the existing order is returned and nothing new is written.
func (r *Repository) Create(ctx context.Context, in *NewOrder) (*Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("create order: no items")
	}

	if in.IdempotencyKey != nil {
		if existing, err := r.getByIdempotencyKey(ctx, *in.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			return existing, nil
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var o Order
	err = tx.QueryRow(ctx, `
INSERT INTO orders (order_number, customer_name, customer_phone, order_type,
                    delivery_address, comment, subtotal, delivery_fee, total,
                    status, idempotency_key)
VALUES ('', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at
`,
		in.CustomerName,
		in.CustomerPhone,
		in.OrderType,
		in.DeliveryAddress,
		in.Comment,
		in.Subtotal,
		in.DeliveryFee,
		in.Total,
		StatusAccepted,
		in.IdempotencyKey,
	).Scan(&o.ID, &o.CreatedAt)

	if err != nil {
		// Lost an idempotency race: another request with the same key
		// committed first. Return its order.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && in.IdempotencyKey != nil {
			existing, serr := r.getByIdempotencyKey(ctx, *in.IdempotencyKey)
			if serr != nil {
				return nil, serr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	number, err := r.gen.FromID(o.ID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET order_number = $2 WHERE id = $1`, o.ID, number); err != nil {
		return nil, fmt.Errorf("set order number: %w", err)
	}

	for _, it := range in.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (order_id, menu_item_id, name, unit_price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6)
`, o.ID, it.MenuItemID, it.Name, it.UnitPrice, it.Quantity, it.UnitPrice*it.Quantity); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	o.OrderNumber = number
	o.CustomerName = in.CustomerName
	o.CustomerPhone = in.CustomerPhone
	o.OrderType = in.OrderType
	o.DeliveryAddress = in.DeliveryAddress
	o.Comment = in.Comment
	o.Subtotal = in.Subtotal
	o.DeliveryFee = in.DeliveryFee
	o.Total = in.Total
	o.Status = StatusAccepted

	return &o, nil
}

func (r *Repository) getByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
SELECT id, order_number, customer_name, customer_phone, order_type,
       delivery_address, comment, subtotal, delivery_fee, total, status, created_at
FROM orders
WHERE idempotency_key = $1
`, key).Scan(
		&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.OrderType,
		&o.DeliveryAddress, &o.Comment, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&o.Status, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select by idempotency key: %w", err)
	}
	return &o, nil
}

func (r *Repository) GetByNumber(ctx context.Context, number string) (*Detail, error) {
	var d Detail
	err := r.db.QueryRow(ctx, `
SELECT id, order_number, customer_name, customer_phone, order_type,
       delivery_address, comment, subtotal, delivery_fee, total, status, created_at
FROM orders
WHERE order_number = $1
`, number).Scan(
		&d.Order.ID, &d.Order.OrderNumber, &d.Order.CustomerName, &d.Order.CustomerPhone,
		&d.Order.OrderType, &d.Order.DeliveryAddress, &d.Order.Comment,
		&d.Order.Subtotal, &d.Order.DeliveryFee, &d.Order.Total,
		&d.Order.Status, &d.Order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
SELECT id, order_id, menu_item_id, name, unit_price, quantity, line_total
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`, d.Order.ID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.UnitPrice, &it.Quantity, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		d.Items = append(d.Items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order item rows: %w", err)
	}

	return &d, nil
}

func (r *Repository) ListRecent(ctx context.Context, status string, limit, offset int) ([]Order, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	where := "1=1"
	args := []any{}
	arg := 1

	if status != "" {
		where += fmt.Sprintf(" AND status = $%d", arg)
		args = append(args, status)
		arg++
	}

	q := fmt.Sprintf(`
SELECT id, order_number, customer_name, customer_phone, order_type,
       delivery_address, comment, subtotal, delivery_fee, total, status, created_at,
       COUNT(*) OVER() AS total_rows
FROM orders
WHERE %s
ORDER BY id DESC
LIMIT $%d OFFSET $%d
`, where, arg, arg+1)

	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	total := 0

	for rows.Next() {
		var o Order
		var t int
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.OrderType,
			&o.DeliveryAddress, &o.Comment, &o.Subtotal, &o.DeliveryFee, &o.Total,
			&o.Status, &o.CreatedAt, &t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, o)
	}

	return out, total, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.db.Exec(ctx, `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
`, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
