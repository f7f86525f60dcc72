package payment

import (
	"context"

	kafka "github.com/safarika/busbook/internal/delivery/kafka"
)

type Provider string

const (
	ProviderMixx  Provider = "MIXX"
	ProviderBmslg Provider = "BMSLG"
	ProviderCash  Provider = "CASH"
)

// Outcome is the tri-state result of a payment initiation. Accepted means the
// provider took the request and will deliver an out-of-band callback later; it
// does not mean payment succeeded.
type Outcome string

const (
	OutcomeAccepted    Outcome = "ACCEPTED"
	OutcomeRejected    Outcome = "REJECTED"
	OutcomeUnavailable Outcome = "UNAVAILABLE"
)

// Attempt is what an adapter reports for one initiation call. Adapters absorb
// transport errors into the Unavailable outcome instead of raising them, so a
// caller cannot accidentally swallow a provider failure in a catch-all.
type Attempt struct {
	Outcome   Outcome
	Reference string
	Reason    string
}

type Gateway interface {
	Initiate(ctx context.Context, event kafka.BookingPaymentEvent) Attempt
}

type AuthOutcome string

const (
	AuthOutcomeGranted AuthOutcome = "GRANTED"
	AuthOutcomeDenied  AuthOutcome = "DENIED"
)

// PartnerAuthenticator is the narrow port over the BMSLG wire handshake.
type PartnerAuthenticator interface {
	Authenticate(ctx context.Context, username, password, ownerID string) (AuthOutcome, error)
}
