package models

import "time"

// PaymentAttempt records the outcome of one provider initiation call. The
// reconciliation sweeper uses the absence of attempts to detect bookings whose
// payment request was never delivered.
type PaymentAttempt struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookingUID string    `gorm:"type:varchar(36);index;not null" json:"booking_uid"`
	Provider   string    `gorm:"type:varchar(20);not null" json:"provider"`
	Outcome    string    `gorm:"type:varchar(20);not null" json:"outcome"`
	Reference  string    `gorm:"type:varchar(100)" json:"reference,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}
