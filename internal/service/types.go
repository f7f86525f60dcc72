package service

import (
	"time"

	"github.com/safarika/busbook/internal/models"
)

type PassengerInput struct {
	FullName       string  `json:"full_name"`
	SeatID         string  `json:"seat_id" validate:"required"`
	IndividualFare float64 `json:"individual_fare" validate:"gte=0"`
}

type CreateBookingInput struct {
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"payment_method"`
	PartnerCode   string           `json:"partner_code"`
	AgentCode     string           `json:"agent_code"`
	BusSystemCode string           `json:"bus_system_code"`
	RouteFrom     string           `json:"route_from"`
	RouteTo       string           `json:"route_to"`
	TravelDate    time.Time        `json:"travel_date" validate:"required"`
	CustomerPhone string           `json:"customer_phone"`
	CustomerEmail string           `json:"customer_email"`
	Passengers    []PassengerInput `json:"passengers" validate:"required,min=1,dive"`
}

type CreateBookingOutput struct {
	BookingUID string               `json:"booking_uid"`
	Status     models.BookingStatus `json:"status"`
	TotalFare  float64              `json:"total_fare"`
}

type BookingCreatedInput struct {
	EventID    string
	BookingUID string
	Timestamp  time.Time
}

type PaymentCallbackInput struct {
	EventID           string
	BookingUID        string
	PaymentStatus     string
	TransactionID     string
	ProviderReference string
	FailureReason     string
	Timestamp         time.Time
}
