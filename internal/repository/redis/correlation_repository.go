package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/safarika/busbook/pkg/logger"
)

// CorrelationRecord is the provider-specific audit trail of a booking. It is a
// non-critical side channel: losing a record never fails the saga.
type CorrelationRecord struct {
	BookingUID    string    `json:"booking_uid"`
	Provider      string    `json:"provider"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	CustomerPhone string    `json:"customer_phone"`
	PartnerCode   string    `json:"partner_code"`
	CreatedAt     time.Time `json:"created_at"`
}

type CorrelationRepository interface {
	Save(ctx context.Context, rec *CorrelationRecord) error
	Get(ctx context.Context, bookingUID string) (*CorrelationRecord, error)
}

type redisCorrelationRepository struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

func NewRedisCorrelationRepository(cli *redis.Client, ttl time.Duration, l logger.Logger) CorrelationRepository {
	return &redisCorrelationRepository{
		cli: cli,
		ttl: ttl,
		l:   l,
	}
}

func (r *redisCorrelationRepository) Save(ctx context.Context, rec *CorrelationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal correlation record: %w", err)
	}

	if err := r.cli.Set(ctx, r.key(rec.BookingUID), data, r.ttl).Err(); err != nil {
		r.l.Errorf(ctx, "repository.redisCorrelationRepository.Save: %v", err)
		return err
	}

	return nil
}

func (r *redisCorrelationRepository) Get(ctx context.Context, bookingUID string) (*CorrelationRecord, error) {
	data, err := r.cli.Get(ctx, r.key(bookingUID)).Bytes()
	if err != nil {
		r.l.Errorf(ctx, "repository.redisCorrelationRepository.Get: %v", err)
		return nil, err
	}

	var rec CorrelationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal correlation record: %w", err)
	}

	return &rec, nil
}

func (r *redisCorrelationRepository) key(bookingUID string) string {
	return fmt.Sprintf("busbook:audit:%s", bookingUID)
}
