package kafka

const (
	TopicBookingCreated  = "booking.created"
	TopicBookingPayment  = "booking.payment"
	TopicPaymentCallback = "payment.callback"
)

// Callback payment statuses as delivered by the providers.
const (
	CallbackStatusSuccess   = "SUCCESS"
	CallbackStatusFailed    = "FAILED"
	CallbackStatusPending   = "PENDING"
	CallbackStatusCancelled = "CANCELLED"
)
