package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/service"
	"github.com/safarika/busbook/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// GroupFactory opens a new consumer group client. Every worker needs its own
// client: sarama serializes Consume calls on a single ConsumerGroup, so
// workers sharing one client would block each other out of the session.
type GroupFactory func() (sarama.ConsumerGroup, error)

const consumeRetryDelay = time.Second

// Consumer pulls one topic with a pool of workers sharing a consumer group id.
// Offsets are committed only after the handler succeeds; a failed handler ends
// the session so consumption resumes from the last committed offset and the
// message is redelivered.
type Consumer struct {
	newGroup GroupFactory
	topics   []string
	workers  int
	bkSvc    service.BookingService
	l        logger.Logger

	groups []sarama.ConsumerGroup
	eg     errgroup.Group
}

func NewConsumer(
	newGroup GroupFactory,
	topics []string,
	workers int,
	bkSvc service.BookingService,
	l logger.Logger,
) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		newGroup: newGroup,
		topics:   topics,
		workers:  workers,
		bkSvc:    bkSvc,
		l:        l,
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	switch msg.Topic {
	case kafka.TopicBookingCreated:
		return c.HandleBookingCreated(ctx, msg)
	case kafka.TopicBookingPayment:
		return c.HandleBookingPayment(ctx, msg)
	case kafka.TopicPaymentCallback:
		return c.HandlePaymentCallback(ctx, msg)
	default:
		c.l.Warn(ctx, "Unknown topic", "topic", msg.Topic)
		return nil
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	for i := 0; i < c.workers; i++ {
		consGr, err := c.newGroup()
		if err != nil {
			c.closeGroups()
			return fmt.Errorf("failed to open consumer group: %w", err)
		}
		c.groups = append(c.groups, consGr)
	}

	for _, consGr := range c.groups {
		gr := consGr

		c.eg.Go(func() error {
			for {
				if err := gr.Consume(ctx, c.topics, c); err != nil {
					c.l.Errorf(ctx, "delivery.kafka.consumer.Consumer.Start: %v", err)

					// A handler failure surfaces here. Back off before
					// re-joining so a persistent failure does not hot-loop.
					select {
					case <-time.After(consumeRetryDelay):
					case <-ctx.Done():
					}
				}

				if ctx.Err() != nil {
					c.l.Infof(ctx, "delivery.kafka.consumer.Consumer.Start: %v", ctx.Err())
					return nil
				}
			}
		})

		// Handle errors
		c.eg.Go(func() error {
			for err := range gr.Errors() {
				c.l.Errorf(ctx, "delivery.kafka.consumer.Consumer.Start: %v", err)
			}
			return nil
		})
	}

	c.l.Infof(ctx, "Consumer is consuming topics: %v with %d workers", c.topics, c.workers)
	return nil
}

func (c *Consumer) Close() error {
	c.closeGroups()
	return c.eg.Wait()
}

func (c *Consumer) closeGroups() {
	for _, gr := range c.groups {
		if err := gr.Close(); err != nil {
			c.l.Errorf(context.Background(), "delivery.kafka.consumer.Consumer.Close: %v", err)
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	c.l.Debug(context.Background(), "Consumer group session started")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	c.l.Debug(context.Background(), "Consumer group session ended")
	return nil
}

func (c *Consumer) ConsumeClaim(ss sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := c.processMessage(ss.Context(), message); err != nil {
				c.l.Error(ss.Context(), "Message handling failed, ending session for redelivery",
					"topic", message.Topic,
					"offset", message.Offset,
					"error", err,
				)
				// Not marked. Ending the session here keeps later offsets on
				// this partition uncommitted too, so the next session resumes
				// at this message instead of acking past it.
				return err
			}

			ss.MarkMessage(message, "")

		case <-ss.Context().Done():
			return nil
		}
	}
}
