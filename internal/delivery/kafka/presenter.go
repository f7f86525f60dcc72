package kafka

import "time"

// Every envelope carries an event_id unique per publish (tracing only) and the
// booking_uid, which is both the dedup key and the partition key of the topic.

type BookingCreatedEvent struct {
	EventID       string    `json:"event_id"`
	BookingUID    string    `json:"booking_uid"`
	Status        string    `json:"status"`
	TotalFare     float64   `json:"total_fare"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"payment_method"`
	PartnerCode   string    `json:"partner_code"`
	AgentCode     string    `json:"agent_code"`
	RouteFrom     string    `json:"route_from"`
	RouteTo       string    `json:"route_to"`
	TravelDate    time.Time `json:"travel_date"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	Timestamp     time.Time `json:"timestamp"`
}

type BookingPaymentEvent struct {
	EventID           string    `json:"event_id"`
	BookingUID        string    `json:"booking_uid"`
	Amount            float64   `json:"amount"`
	Currency          string    `json:"currency"`
	PaymentMethod     string    `json:"payment_method"`
	PaymentProvider   string    `json:"payment_provider"`
	CustomerPhone     string    `json:"customer_phone"`
	CustomerEmail     string    `json:"customer_email"`
	ProviderReference string    `json:"provider_reference,omitempty"`
	CallbackURL       string    `json:"callback_url"`
	ReturnURL         string    `json:"return_url,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

type PaymentCallbackEvent struct {
	EventID           string    `json:"event_id"`
	BookingUID        string    `json:"booking_uid"`
	PaymentStatus     string    `json:"payment_status"`
	TransactionID     string    `json:"transaction_id,omitempty"`
	ProviderReference string    `json:"payment_provider_reference,omitempty"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}
