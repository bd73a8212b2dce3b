package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

// NewGroup builds the consumer group for the payment status topic. Offsets
// start from the oldest retained message: a settlement signal emitted while
// the service was down must still be consumed, Confirm makes redelivery
// harmless.
func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = "storefront-api"
	cfg.Version = sarama.V3_6_0_0
	cfg.Net.DialTimeout = 10 * time.Second
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	cfg.Consumer.Group.Session.Timeout = 30 * time.Second
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}
