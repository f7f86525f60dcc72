package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusProcessing BookingStatus = "PROCESSING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusFailed     BookingStatus = "FAILED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "ACTIVE"
	TicketStatusCancelled TicketStatus = "CANCELLED"
)

type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "NONE"
	RefundStatusRequested RefundStatus = "REQUESTED"
	RefundStatusProcessed RefundStatus = "PROCESSED"
)

// Booking is the aggregate root of the booking-to-payment saga. UID is a
// time-ordered identifier used as the idempotency and partition key across
// all saga topics.
type Booking struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	UID              string        `gorm:"type:varchar(36);uniqueIndex;not null" json:"uid"`
	Status           BookingStatus `gorm:"type:varchar(20);default:'PROCESSING'" json:"status"`
	PaymentStatus    PaymentStatus `gorm:"type:varchar(20);default:'PENDING'" json:"payment_status"`
	TotalBookingFare float64       `gorm:"not null" json:"total_booking_fare"`
	Currency         string        `gorm:"type:varchar(3);default:'TZS'" json:"currency"`
	PaymentMethod    string        `gorm:"type:varchar(50)" json:"payment_method"`

	PartnerCode   string `gorm:"type:varchar(50);index" json:"partner_code"`
	AgentCode     string `gorm:"type:varchar(50)" json:"agent_code"`
	BusSystemCode string `gorm:"type:varchar(50)" json:"bus_system_code"`

	RouteFrom     string    `gorm:"type:varchar(100)" json:"route_from"`
	RouteTo       string    `gorm:"type:varchar(100)" json:"route_to"`
	TravelDate    time.Time `json:"travel_date"`
	CustomerPhone string    `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerEmail string    `gorm:"type:varchar(100)" json:"customer_email"`

	// Provider-assigned identifiers, populated only after a successful callback.
	ExternalBookingID string `gorm:"type:varchar(100)" json:"external_booking_id,omitempty"`
	ExternalReference string `gorm:"type:varchar(100)" json:"external_reference,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Passengers []Passenger `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;" json:"passengers,omitempty"`
}

// Passenger cannot outlive its booking.
type Passenger struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	BookingID      uint         `gorm:"index;not null" json:"booking_id"`
	FullName       string       `gorm:"type:varchar(100)" json:"full_name"`
	SeatID         string       `gorm:"type:varchar(20);not null" json:"seat_id"`
	IndividualFare float64      `gorm:"not null" json:"individual_fare"`
	TicketStatus   TicketStatus `gorm:"type:varchar(20);default:'ACTIVE'" json:"ticket_status"`
	IsCancelled    bool         `gorm:"default:false" json:"is_cancelled"`
	RefundStatus   RefundStatus `gorm:"type:varchar(20);default:'NONE'" json:"refund_status"`
	RefundAmount   float64      `gorm:"default:0" json:"refund_amount"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (Passenger) TableName() string {
	return "passengers"
}

// NewBookingUID returns a sortable, time-ordered identifier.
func NewBookingUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsTerminal reports whether the booking reached a state no event may leave.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusConfirmed, BookingStatusFailed, BookingStatusCancelled:
		return true
	}
	return false
}

// TotalFare recomputes the fare invariant from the passengers.
func (b *Booking) TotalFare() float64 {
	var total float64
	for _, p := range b.Passengers {
		total += p.IndividualFare
	}
	return total
}

// AppendNote accumulates failure reasons without discarding earlier ones.
func (b *Booking) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if b.Notes == "" {
		b.Notes = note
		return
	}
	b.Notes = b.Notes + "; " + note
}
