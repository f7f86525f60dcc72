package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/service"
)

func (c *Consumer) HandleBookingCreated(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.BookingCreatedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleBookingCreated: %v", err)
		// A malformed payload never becomes valid on redelivery.
		return nil
	}

	if err := c.bkSvc.HandleBookingCreated(ctx, service.BookingCreatedInput{
		EventID:    e.EventID,
		BookingUID: e.BookingUID,
		Timestamp:  e.Timestamp,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleBookingCreated: %v", err)
		return err
	}

	return nil
}

func (c *Consumer) HandleBookingPayment(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.BookingPaymentEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleBookingPayment: %v", err)
		return nil
	}

	if err := c.bkSvc.HandleBookingPayment(ctx, e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleBookingPayment: %v", err)
		return err
	}

	return nil
}

func (c *Consumer) HandlePaymentCallback(ctx context.Context, message *sarama.ConsumerMessage) error {
	var e kafka.PaymentCallbackEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentCallback: %v", err)
		return nil
	}

	if err := c.bkSvc.HandlePaymentCallback(ctx, service.PaymentCallbackInput{
		EventID:           e.EventID,
		BookingUID:        e.BookingUID,
		PaymentStatus:     e.PaymentStatus,
		TransactionID:     e.TransactionID,
		ProviderReference: e.ProviderReference,
		FailureReason:     e.FailureReason,
		Timestamp:         e.Timestamp,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandlePaymentCallback: %v", err)
		return err
	}

	return nil
}
