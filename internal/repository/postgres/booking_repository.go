package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safarika/busbook/internal/models"
	"github.com/safarika/busbook/pkg/logger"
	"gorm.io/gorm"
)

type gormBookingRepository struct {
	db *gorm.DB
	l  logger.Logger
}

func NewGormBookingRepository(db *gorm.DB, l logger.Logger) BookingRepository {
	return &gormBookingRepository{
		db: db,
		l:  l,
	}
}

// Create persists the booking and its passengers as one unit. gorm writes the
// association inside a single transaction, so no partial aggregate is ever
// visible to the consumers.
func (r *gormBookingRepository) Create(ctx context.Context, bk *models.Booking) error {
	if err := r.db.WithContext(ctx).Create(bk).Error; err != nil {
		r.l.Errorf(ctx, "repository.gormBookingRepository.Create: %v", err)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *gormBookingRepository) FindByUID(ctx context.Context, uid string) (*models.Booking, error) {
	var bk models.Booking
	err := r.db.WithContext(ctx).
		Preload("Passengers").
		Where("uid = ?", uid).
		First(&bk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		r.l.Errorf(ctx, "repository.gormBookingRepository.FindByUID: %v", err)
		return nil, fmt.Errorf("failed to load booking: %w", err)
	}

	return &bk, nil
}

func (r *gormBookingRepository) Update(ctx context.Context, bk *models.Booking) error {
	if err := r.db.WithContext(ctx).Save(bk).Error; err != nil {
		r.l.Errorf(ctx, "repository.gormBookingRepository.Update: %v", err)
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

// FindStaleProcessing returns PROCESSING bookings older than the threshold for
// which no payment attempt was ever recorded.
func (r *gormBookingRepository) FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Booking, error) {
	var bks []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", models.BookingStatusProcessing).
		Where("created_at < ?", olderThan).
		Where("uid NOT IN (?)", r.db.Model(&models.PaymentAttempt{}).Select("booking_uid")).
		Order("created_at asc").
		Limit(limit).
		Find(&bks).Error
	if err != nil {
		r.l.Errorf(ctx, "repository.gormBookingRepository.FindStaleProcessing: %v", err)
		return nil, fmt.Errorf("failed to query stale bookings: %w", err)
	}

	return bks, nil
}

type gormPaymentAttemptRepository struct {
	db *gorm.DB
	l  logger.Logger
}

func NewGormPaymentAttemptRepository(db *gorm.DB, l logger.Logger) PaymentAttemptRepository {
	return &gormPaymentAttemptRepository{
		db: db,
		l:  l,
	}
}

func (r *gormPaymentAttemptRepository) Create(ctx context.Context, at *models.PaymentAttempt) error {
	if err := r.db.WithContext(ctx).Create(at).Error; err != nil {
		r.l.Errorf(ctx, "repository.gormPaymentAttemptRepository.Create: %v", err)
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}

	return nil
}

func (r *gormPaymentAttemptRepository) CountByBookingUID(ctx context.Context, uid string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentAttempt{}).
		Where("booking_uid = ?", uid).
		Count(&count).Error
	if err != nil {
		r.l.Errorf(ctx, "repository.gormPaymentAttemptRepository.CountByBookingUID: %v", err)
		return 0, fmt.Errorf("failed to count payment attempts: %w", err)
	}

	return count, nil
}
