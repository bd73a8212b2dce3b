package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

// Create inserts the order row, then its items. A failed item insert deletes
// the order row again so no zero-item order is ever readable.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO orders (id,user_id,status,payment_status,amount_cents,currency,payment_method,shipping_address,notes,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,NOW(),NOW())`,
		o.ID, o.UserID, o.Status, o.PaymentStatus, o.Amount.Cents, o.Amount.Currency,
		o.PaymentMethod, o.ShippingAddress, o.Notes)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,quantity,price_cents)
VALUES (?,?,?,?)`, o.ID, it.ProductID, it.Quantity, it.UnitPriceCents)
		if err != nil {
			if _, derr := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=?`, o.ID); derr != nil {
				err = errors.Join(err, derr)
			}
			if _, derr := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=?`, o.ID); derr != nil {
				err = errors.Join(err, derr)
			}
			return fmt.Errorf("insert order item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

// GetByID scopes to userID unless it is empty (administrative read).
func (r *MySQLOrderRepo) GetByID(ctx context.Context, id, userID string) (*domain.Order, error) {
	q := `
SELECT id,user_id,status,payment_status,amount_cents,currency,payment_method,shipping_address,notes,created_at,updated_at
FROM orders WHERE id=?`
	args := []any{id}
	if userID != "" {
		q += ` AND user_id=?`
		args = append(args, userID)
	}

	var o domain.Order
	var notes sql.NullString
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Amount.Cents, &o.Amount.Currency,
		&o.PaymentMethod, &o.ShippingAddress, &notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	o.Notes = notes.String

	if o.Items, err = r.itemsFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,user_id,status,payment_status,amount_cents,currency,payment_method,shipping_address,notes,created_at,updated_at
FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var notes sql.NullString
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.Status, &o.PaymentStatus, &o.Amount.Cents, &o.Amount.Currency,
			&o.PaymentMethod, &o.ShippingAddress, &notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Notes = notes.String
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Items, err = r.itemsFor(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *MySQLOrderRepo) itemsFor(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id,quantity,price_cents FROM order_items WHERE order_id=?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateStatusIf is a guarded status write; rows==0 means not found or the
// status already moved.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, from, to domain.Status, note string) (bool, error) {
	var res sql.Result
	var err error
	if note == "" {
		res, err = r.db.ExecContext(ctx, `
UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?`, to, id, from)
	} else {
		res, err = r.db.ExecContext(ctx, `
UPDATE orders
SET status=?, notes=TRIM(LEADING '\n' FROM CONCAT(COALESCE(notes,''),'\n',?)), updated_at=NOW()
WHERE id=? AND status=?`, to, note, id, from)
	}
	if err != nil {
		return false, fmt.Errorf("update status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// Deliver sets status=delivered and decrements stock for every item in one
// transaction. The status CAS plus the row locks taken by the item updates
// serialize concurrent delivers on the same order across instances.
func (r *MySQLOrderRepo) Deliver(ctx context.Context, id string, from domain.Status) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE orders SET status=?, updated_at=NOW() WHERE id=? AND status=?`,
		domain.StatusDelivered, id, from)
	if err != nil {
		return false, fmt.Errorf("deliver status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	items, err := tx.QueryContext(ctx, `
SELECT product_id,quantity FROM order_items WHERE order_id=?`, id)
	if err != nil {
		return false, fmt.Errorf("deliver items: %w", err)
	}
	type line struct {
		productID string
		quantity  int
	}
	var lines []line
	for items.Next() {
		var l line
		if err := items.Scan(&l.productID, &l.quantity); err != nil {
			items.Close()
			return false, err
		}
		lines = append(lines, l)
	}
	if err := items.Close(); err != nil {
		return false, err
	}

	for _, l := range lines {
		// NULL stock means untracked: the decrement keeps it NULL.
		res, err := tx.ExecContext(ctx, `
UPDATE products
SET stock_quantity = stock_quantity - ?
WHERE id=? AND (stock_quantity IS NULL OR stock_quantity >= ?)`,
			l.quantity, l.productID, l.quantity)
		if err != nil {
			return false, fmt.Errorf("decrement stock %s: %w", l.productID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		if n == 0 {
			var avail sql.NullInt64
			if err := tx.QueryRowContext(ctx,
				`SELECT stock_quantity FROM products WHERE id=?`, l.productID).Scan(&avail); err != nil {
				return false, fmt.Errorf("read stock %s: %w", l.productID, err)
			}
			return false, &usecase.InsufficientStockError{
				ProductID: l.productID,
				Requested: l.quantity,
				Available: avail.Int64,
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit deliver: %w", err)
	}
	return true, nil
}

func (r *MySQLOrderRepo) PatchPending(ctx context.Context, id, userID string, shippingAddress, notes *string) (bool, error) {
	set := "updated_at=NOW()"
	args := []any{}
	if shippingAddress != nil {
		set += ", shipping_address=?"
		args = append(args, *shippingAddress)
	}
	if notes != nil {
		// Notes accumulate; a patch never erases earlier entries.
		set += ", notes=TRIM(LEADING '\n' FROM CONCAT(COALESCE(notes,''),'\n',?))"
		args = append(args, *notes)
	}
	args = append(args, id, userID, domain.StatusPending)

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+set+` WHERE id=? AND user_id=? AND status=?`, args...)
	if err != nil {
		return false, fmt.Errorf("patch order: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLOrderRepo) MarkPaid(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders SET payment_status=?, status=?, updated_at=NOW()
WHERE id=? AND payment_status=?`,
		domain.PaymentPaid, domain.StatusProcessing, id, domain.PaymentPending)
	if err != nil {
		return false, fmt.Errorf("mark paid: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
