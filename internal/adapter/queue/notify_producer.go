package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "storefront.events"

	rkOrderCreated     = "notify.order.created"
	rkPaymentSucceeded = "notify.payment.succeeded"

	QueueOrderCreated     = "notify.order-created.q"
	QueuePaymentSucceeded = "notify.payment-succeeded.q"
)

// NotifyProducer publishes notification events for the side-effect workers.
// The core treats publish failures as log-only; nothing here may roll back an
// order or payment that already committed.
type NotifyProducer struct {
	ch *amqp.Channel
}

// NewNotifyProducer declares the exchange, queues, and bindings once at
// startup and enables publisher confirms.
func NewNotifyProducer(ch *amqp.Channel) (*NotifyProducer, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for q, rk := range map[string]string{
		QueueOrderCreated:     rkOrderCreated,
		QueuePaymentSucceeded: rkPaymentSucceeded,
	} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", q, err)
		}
		if err := ch.QueueBind(q, rk, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}
	return &NotifyProducer{ch: ch}, nil
}

func (p *NotifyProducer) OrderCreated(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	return p.publish(ctx, rkOrderCreated, msg)
}

func (p *NotifyProducer) PaymentSucceeded(ctx context.Context, msg usecase.PaymentSucceededMsg) error {
	return p.publish(ctx, rkPaymentSucceeded, msg)
}

func (p *NotifyProducer) publish(ctx context.Context, rk string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, exchangeName, rk, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", rk, err)
	}
	return nil
}

var _ usecase.Notifier = (*NotifyProducer)(nil)
