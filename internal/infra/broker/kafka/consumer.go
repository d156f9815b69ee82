package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

// MessageHandler processes one consumed record. Returning an error leaves the
// offset unmarked so the record is redelivered after a rebalance.
type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// Consumer wraps a sarama consumer group around a single handler. Payment
// confirmations arrive through here.
type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler) (*Consumer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
		cfg.ClientID = "fleetbook"
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	cfg.Version = sarama.V2_5_0_0
	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: join group %s: %w", groupID, err)
	}
	return &Consumer{group: group, handler: handler, logger: slog.Default()}, nil
}

// Run blocks consuming the given topics until ctx is cancelled. Consume
// returns on every rebalance, so it loops.
func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, claimLoop{handler: c.handler, logger: c.logger}); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type claimLoop struct {
	handler MessageHandler
	logger  *slog.Logger
}

func (l claimLoop) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (l claimLoop) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (l claimLoop) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := l.handler.Handle(sess.Context(), msg); err != nil {
			// unmarked, redelivered on the next session
			l.logger.Warn("message handling failed",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err)
			continue
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}
