package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

type MySQLPaymentTxRepo struct{ db *sql.DB }

func NewMySQLPaymentTxRepo(db *sql.DB) *MySQLPaymentTxRepo { return &MySQLPaymentTxRepo{db: db} }

func (r *MySQLPaymentTxRepo) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	var orderID any
	if tx.OrderID != "" {
		orderID = tx.OrderID
	}
	var completedAt any
	if tx.CompletedAt != nil {
		completedAt = *tx.CompletedAt
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO payment_transactions (reference,order_id,amount_cents,currency,provider,phone,status,attempt,created_at,completed_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		tx.Reference, orderID, tx.Amount.Cents, tx.Amount.Currency, tx.Provider, tx.Phone,
		tx.Status, tx.Attempt, tx.CreatedAt, completedAt)
	if err != nil {
		return fmt.Errorf("insert payment transaction: %w", err)
	}
	return nil
}

func (r *MySQLPaymentTxRepo) GetByReference(ctx context.Context, ref string) (*domain.PaymentTransaction, error) {
	var tx domain.PaymentTransaction
	var orderID sql.NullString
	var phone sql.NullString
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT reference,order_id,amount_cents,currency,provider,phone,status,attempt,created_at,completed_at
FROM payment_transactions WHERE reference=?`, ref).Scan(
		&tx.Reference, &orderID, &tx.Amount.Cents, &tx.Amount.Currency, &tx.Provider, &phone,
		&tx.Status, &tx.Attempt, &tx.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, usecase.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query payment transaction: %w", err)
	}
	tx.OrderID = orderID.String
	tx.Phone = phone.String
	if completedAt.Valid {
		t := completedAt.Time
		tx.CompletedAt = &t
	}
	return &tx, nil
}

func (r *MySQLPaymentTxRepo) LinkOrder(ctx context.Context, ref, orderID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_transactions SET order_id=? WHERE reference=?`, orderID, ref)
	if err != nil {
		return fmt.Errorf("link order: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return usecase.ErrNotFound
	}
	return nil
}

// Finalize is a pending->terminal compare-and-set; false means the
// transaction was already terminal (or missing).
func (r *MySQLPaymentTxRepo) Finalize(ctx context.Context, ref string, status domain.TxStatus, completedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE payment_transactions SET status=?, completed_at=?
WHERE reference=? AND status=?`,
		status, completedAt, ref, domain.TxPending)
	if err != nil {
		return false, fmt.Errorf("finalize payment transaction: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

var _ usecase.PaymentTxRepo = (*MySQLPaymentTxRepo)(nil)
