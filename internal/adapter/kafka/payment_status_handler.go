package kafka

import (
	"context"
	"time"

	"github.com/iamciscoo/TISCOfinal-sub002/internal/adapter/payment"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// PaymentStatusHandler applies terminal provider statuses relayed through the
// status topic. It is the secondary completion signal: if the poll path
// already created the order this is a no-op on the order and only finalizes
// the transaction.
type PaymentStatusHandler struct {
	checkout *usecase.MobileCheckout
}

func NewPaymentStatusHandler(checkout *usecase.MobileCheckout) *PaymentStatusHandler {
	return &PaymentStatusHandler{checkout: checkout}
}

func (h *PaymentStatusHandler) Handle(ctx context.Context, ev usecase.PaymentStatusMsg) error {
	switch payment.Classify(ev.Status) {
	case usecase.ProviderCompleted:
		return h.checkout.Confirm(ctx, ev.Reference, true, completedAt(ev))
	case usecase.ProviderFailed:
		return h.checkout.Confirm(ctx, ev.Reference, false, completedAt(ev))
	}
	// non-terminal statuses carry no information the poll path lacks
	return nil
}

func completedAt(ev usecase.PaymentStatusMsg) time.Time {
	if ev.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, ev.CompletedAt); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
