package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/pkg/logger"
)

type Producer interface {
	PublishBookingCreated(ctx context.Context, event kafka.BookingCreatedEvent) error
	PublishBookingPayment(ctx context.Context, event kafka.BookingPaymentEvent) error
	PublishPaymentCallback(ctx context.Context, event kafka.PaymentCallbackEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishBookingCreated(ctx context.Context, event kafka.BookingCreatedEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicBookingCreated, event.BookingUID, event)
}

func (p *implProducer) PublishBookingPayment(ctx context.Context, event kafka.BookingPaymentEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicBookingPayment, event.BookingUID, event)
}

func (p *implProducer) PublishPaymentCallback(ctx context.Context, event kafka.PaymentCallbackEvent) error {
	event.Timestamp = time.Now()
	return p.publish(ctx, kafka.TopicPaymentCallback, event.BookingUID, event)
}

func (p *implProducer) publish(ctx context.Context, topic, bookingUID string, event any) error {
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.implProducer.publish: %v", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(bookingUID), // Partition by booking_uid for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	partition, offset, err := p.prod.SendMessage(msg)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.implProducer.publish: %v", err)
		return err
	}

	p.l.Debug(ctx, "Kafka message sent",
		"topic", topic,
		"partition", partition,
		"offset", offset,
		"booking_uid", bookingUID,
	)

	return nil
}

func (p *implProducer) Close() error {
	if err := p.prod.Close(); err != nil {
		return err
	}

	return nil
}
