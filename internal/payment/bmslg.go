package payment

import (
	"context"
	"time"

	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/pkg/cipher"
	"github.com/safarika/busbook/pkg/logger"
)

// BmslgCredentials carry the encrypted partner-gateway login.
type BmslgCredentials struct {
	UsernameEnc string
	PasswordEnc string
	OwnerID     string
}

type bmslgGateway struct {
	creds   BmslgCredentials
	ciph    cipher.Cipher
	auth    PartnerAuthenticator
	latency time.Duration
	l       logger.Logger
}

// NewBmslgGateway wraps the partner-gateway handshake. The settlement flow
// itself is a placeholder: it authenticates, simulates the gateway round trip
// and reports Accepted. The real integration replaces the body of Initiate
// without changing the Gateway contract.
func NewBmslgGateway(creds BmslgCredentials, ciph cipher.Cipher, auth PartnerAuthenticator, l logger.Logger) Gateway {
	return &bmslgGateway{
		creds:   creds,
		ciph:    ciph,
		auth:    auth,
		latency: 200 * time.Millisecond,
		l:       l,
	}
}

func (g *bmslgGateway) Initiate(ctx context.Context, event kafka.BookingPaymentEvent) Attempt {
	username, err := g.ciph.Decrypt(g.creds.UsernameEnc)
	if err != nil {
		g.l.Errorf(ctx, "payment.bmslgGateway.Initiate: %v", err)
		return Attempt{Outcome: OutcomeRejected, Reason: "invalid gateway credentials"}
	}
	password, err := g.ciph.Decrypt(g.creds.PasswordEnc)
	if err != nil {
		g.l.Errorf(ctx, "payment.bmslgGateway.Initiate: %v", err)
		return Attempt{Outcome: OutcomeRejected, Reason: "invalid gateway credentials"}
	}

	outcome, err := g.auth.Authenticate(ctx, username, password, g.creds.OwnerID)
	if err != nil {
		g.l.Errorf(ctx, "payment.bmslgGateway.Initiate: %v", err)
		return Attempt{Outcome: OutcomeUnavailable, Reason: err.Error()}
	}
	if outcome != AuthOutcomeGranted {
		return Attempt{Outcome: OutcomeRejected, Reason: "gateway authentication denied"}
	}

	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return Attempt{Outcome: OutcomeUnavailable, Reason: ctx.Err().Error()}
	}

	g.l.Info(ctx, "BMSLG payment initiated",
		"booking_uid", event.BookingUID,
		"amount", event.Amount,
	)

	return Attempt{Outcome: OutcomeAccepted, Reference: "BMSLG-" + event.BookingUID}
}

// NoopAuthenticator grants every login. It stands in for the BMSLG crypto
// handshake until the wire protocol client is wired.
type NoopAuthenticator struct{}

func (NoopAuthenticator) Authenticate(ctx context.Context, username, password, ownerID string) (AuthOutcome, error) {
	return AuthOutcomeGranted, nil
}
