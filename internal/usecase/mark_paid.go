package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

// MarkPaid is the privileged office-payment confirmation. It bypasses
// per-user scoping, flips payment_status to paid and status to processing,
// and records a completed PaymentTransaction with a synthesized reference.
// It never re-validates or re-prices the order.
type MarkPaid struct {
	orders      OrderRepo
	payments    PaymentTxRepo
	notifier    Notifier
	invalidator CacheInvalidator
	log         *slog.Logger
}

func NewMarkPaid(orders OrderRepo, payments PaymentTxRepo, n Notifier, inv CacheInvalidator, log *slog.Logger) *MarkPaid {
	return &MarkPaid{orders: orders, payments: payments, notifier: n, invalidator: inv, log: log}
}

func (uc *MarkPaid) Execute(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID, "")
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	ok, err := uc.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyPaid
	}

	now := time.Now().UTC()
	tx := &domain.PaymentTransaction{
		Reference:   "OFFICE-" + uuid.NewString(),
		OrderID:     orderID,
		Amount:      order.Amount,
		Provider:    "office",
		Status:      domain.TxCompleted,
		Attempt:     1,
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := uc.payments.Create(ctx, tx); err != nil {
		// The order is already paid; the missing financial record must not
		// be swallowed like the optional notification below.
		uc.log.Error("record office payment", "order_id", orderID, "err", err)
		return nil, fmt.Errorf("record office payment: %w", err)
	}

	if err := uc.notifier.PaymentSucceeded(ctx, PaymentSucceededMsg{
		OrderID:   orderID,
		UserID:    order.UserID,
		Reference: tx.Reference,
		Cents:     order.Amount.Cents,
		Currency:  order.Amount.Currency,
	}); err != nil {
		uc.log.Warn("payment success notification failed", "order_id", orderID, "err", err)
	}
	invalidateOrderTags(ctx, uc.invalidator, uc.log, orderID, order.UserID)
	return uc.orders.GetByID(ctx, orderID, "")
}
