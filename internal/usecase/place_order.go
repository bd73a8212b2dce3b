package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
)

type PlaceOrderInput struct {
	UserID          string
	Email           string
	Items           []LineItemInput
	Currency        string
	PaymentMethod   string
	ShippingAddress string
	Notes           string
}

// PlaceOrder handles the immediate-order payment methods (card, pay at
// office): the order is created as soon as pricing validation succeeds, with
// payment still pending. Payment confirmation happens later via the admin
// mark-paid path and never re-prices the order.
type PlaceOrder struct {
	pricer      *Pricer
	orders      OrderRepo
	notifier    Notifier
	invalidator CacheInvalidator
	log         *slog.Logger
}

func NewPlaceOrder(pricer *Pricer, orders OrderRepo, n Notifier, inv CacheInvalidator, log *slog.Logger) *PlaceOrder {
	return &PlaceOrder{pricer: pricer, orders: orders, notifier: n, invalidator: inv, log: log}
}

func (uc *PlaceOrder) Execute(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, ErrShippingAddressRequired
	}
	quote, err := uc.pricer.Quote(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Items:           quote.Lines,
		Amount:          domain.Money{Cents: quote.TotalCents, Currency: in.Currency},
		PaymentMethod:   in.PaymentMethod,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	fireOrderSideEffects(ctx, uc.notifier, uc.invalidator, uc.log, order, in.Email)
	return order, nil
}

// fireOrderSideEffects dispatches the created-order notification and cache
// invalidation. Failures here are logged only; the order is already committed.
func fireOrderSideEffects(ctx context.Context, n Notifier, inv CacheInvalidator, log *slog.Logger, o *domain.Order, email string) {
	items := make([]ItemSummary, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemSummary{ProductID: it.ProductID, Quantity: it.Quantity, Cents: it.UnitPriceCents})
	}
	if err := n.OrderCreated(ctx, OrderCreatedMsg{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Email:         email,
		Cents:         o.Amount.Cents,
		Currency:      o.Amount.Currency,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
	}); err != nil {
		log.Warn("order created notification failed", "order_id", o.ID, "err", err)
	}
	invalidateOrderTags(ctx, inv, log, o.ID, o.UserID)
}

func invalidateOrderTags(ctx context.Context, inv CacheInvalidator, log *slog.Logger, orderID, userID string) {
	if err := inv.Invalidate(ctx, "orders", "order:"+orderID, "user-orders:"+userID); err != nil {
		log.Warn("cache invalidation failed", "order_id", orderID, "err", err)
	}
}
