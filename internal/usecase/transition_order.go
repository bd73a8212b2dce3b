package usecase

import (
	"context"
	"log/slog"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

// TransitionOrder applies the order status state machine on behalf of the
// owning user. The delivered transition runs through the store's atomic
// deliver operation, which is the only place stock is ever decremented.
type TransitionOrder struct {
	orders      OrderRepo
	invalidator CacheInvalidator
	log         *slog.Logger
}

func NewTransitionOrder(orders OrderRepo, inv CacheInvalidator, log *slog.Logger) *TransitionOrder {
	return &TransitionOrder{orders: orders, invalidator: inv, log: log}
}

// Execute moves the order to the requested status. reason, when supplied, is
// appended to the order's notes. userID scopes ownership; pass "" only from
// administrative callers.
func (uc *TransitionOrder) Execute(ctx context.Context, orderID, userID string, to domain.Status, reason string) (*domain.Order, error) {
	if !domain.ValidStatus(to) {
		return nil, &domain.IllegalTransitionError{From: "", To: to}
	}
	order, err := uc.orders.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, &domain.IllegalTransitionError{From: order.Status, To: to}
	}

	var ok bool
	if to == domain.StatusDelivered {
		ok, err = uc.orders.Deliver(ctx, orderID, order.Status)
	} else {
		ok, err = uc.orders.UpdateStatusIf(ctx, orderID, order.Status, to, reason)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a concurrent race; re-read to report the real pair.
		cur, gerr := uc.orders.GetByID(ctx, orderID, userID)
		if gerr != nil {
			return nil, gerr
		}
		return nil, &domain.IllegalTransitionError{From: cur.Status, To: to}
	}

	uc.log.Info("order status changed", "order_id", orderID, "from", order.Status, "to", to)
	invalidateOrderTags(ctx, uc.invalidator, uc.log, orderID, order.UserID)
	return uc.orders.GetByID(ctx, orderID, userID)
}
