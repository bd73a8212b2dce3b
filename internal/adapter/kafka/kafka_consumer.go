package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
)

// HandlerFunc processes one decoded payment status event.
type HandlerFunc func(ctx context.Context, ev usecase.PaymentStatusMsg) error

// Consumer drains the payment status topic with a single handler.
type Consumer struct {
	Group  sarama.ConsumerGroup
	Topics []string
	Handle HandlerFunc
	Log    *slog.Logger
}

func NewConsumer(group sarama.ConsumerGroup, topics []string, h HandlerFunc, log *slog.Logger) *Consumer {
	return &Consumer{Group: group, Topics: topics, Handle: h, Log: log}
}

func (c *Consumer) Start(ctx context.Context) error {
	// The group is built with Return.Errors; drain them or Consume stalls.
	go func() {
		for err := range c.Group.Errors() {
			c.Log.Error("payment status consumer error", "err", err)
		}
	}()

	handler := &cgHandler{handle: c.Handle, log: c.Log}
	for {
		if err := c.Group.Consume(ctx, c.Topics, handler); err != nil {
			return err
		}
		// Consume returns on rebalance or cancellation.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type cgHandler struct {
	handle HandlerFunc
	log    *slog.Logger
}

func (h *cgHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *cgHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *cgHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var ev usecase.PaymentStatusMsg
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			h.log.Error("payment status decode failed", "offset", msg.Offset, "err", err)
			// mark so the poison message is not reprocessed
			sess.MarkMessage(msg, "decode-error")
			continue
		}
		if err := h.handle(sess.Context(), ev); err != nil {
			h.log.Error("payment status handler failed",
				"reference", ev.Reference, "offset", msg.Offset, "err", err)
			// not marked: retried on the next poll
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
