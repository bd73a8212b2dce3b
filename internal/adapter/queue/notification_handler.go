package queue

import (
	"context"
	"log/slog"

	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// Sender is the port to the actual mail/SMS delivery service.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, msg usecase.OrderCreatedMsg) error
	SendPaymentReceipt(ctx context.Context, msg usecase.PaymentSucceededMsg) error
}

// NotificationHandler drains the notification queues and hands each event to
// the sender. Used with JSONHandler via the Router.
type NotificationHandler struct {
	sender Sender
}

func NewNotificationHandler(s Sender) *NotificationHandler {
	return &NotificationHandler{sender: s}
}

func (h *NotificationHandler) HandleOrderCreated(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	return h.sender.SendOrderConfirmation(ctx, msg)
}

func (h *NotificationHandler) HandlePaymentSucceeded(ctx context.Context, msg usecase.PaymentSucceededMsg) error {
	return h.sender.SendPaymentReceipt(ctx, msg)
}

// LogSender is the default delivery shim: it records what would have been
// sent. Swap in the real mail/SMS client in bootstrap.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) SendOrderConfirmation(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	s.Log.Info("order confirmation dispatched",
		"order_id", msg.OrderID, "user_id", msg.UserID, "email", msg.Email,
		"cents", msg.Cents, "currency", msg.Currency, "items", len(msg.Items))
	return nil
}

func (s LogSender) SendPaymentReceipt(ctx context.Context, msg usecase.PaymentSucceededMsg) error {
	s.Log.Info("payment receipt dispatched",
		"order_id", msg.OrderID, "user_id", msg.UserID, "reference", msg.Reference,
		"cents", msg.Cents, "currency", msg.Currency)
	return nil
}

var _ Sender = LogSender{}
