package repository

import (
	"context"
	"errors"
	"time"

	"github.com/safarika/busbook/internal/models"
)

var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository is the persistence port the saga depends on. The saga only
// needs load-by-uid and save; the stale query feeds the reconciliation sweeper.
type BookingRepository interface {
	Create(ctx context.Context, bk *models.Booking) error
	FindByUID(ctx context.Context, uid string) (*models.Booking, error)
	Update(ctx context.Context, bk *models.Booking) error
	FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Booking, error)
}

type PaymentAttemptRepository interface {
	Create(ctx context.Context, at *models.PaymentAttempt) error
	CountByBookingUID(ctx context.Context, uid string) (int64, error)
}
