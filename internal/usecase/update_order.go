package usecase

import (
	"context"
	"log/slog"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

type UpdateOrderInput struct {
	ShippingAddress *string
	Notes           *string
}

// UpdateOrder is the PATCH path: shipping address and notes only, and only
// while the order is still pending.
type UpdateOrder struct {
	orders      OrderRepo
	invalidator CacheInvalidator
	log         *slog.Logger
}

func NewUpdateOrder(orders OrderRepo, inv CacheInvalidator, log *slog.Logger) *UpdateOrder {
	return &UpdateOrder{orders: orders, invalidator: inv, log: log}
}

func (uc *UpdateOrder) Execute(ctx context.Context, orderID, userID string, in UpdateOrderInput) (*domain.Order, error) {
	if in.ShippingAddress == nil && in.Notes == nil {
		return uc.orders.GetByID(ctx, orderID, userID)
	}
	order, err := uc.orders.GetByID(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPending {
		return nil, ErrOrderNotEditable
	}
	ok, err := uc.orders.PatchPending(ctx, orderID, userID, in.ShippingAddress, in.Notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Status moved between the read and the guarded write.
		return nil, ErrOrderNotEditable
	}
	invalidateOrderTags(ctx, uc.invalidator, uc.log, orderID, userID)
	return uc.orders.GetByID(ctx, orderID, userID)
}
