package payment

import (
	"context"
	"time"

	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/pkg/logger"
)

type cashGateway struct {
	latency time.Duration
	l       logger.Logger
}

// NewCashGateway settles over the counter: there is no provider to call, the
// agent collects cash and the back office posts the callback manually.
func NewCashGateway(l logger.Logger) Gateway {
	return &cashGateway{
		latency: 100 * time.Millisecond,
		l:       l,
	}
}

func (g *cashGateway) Initiate(ctx context.Context, event kafka.BookingPaymentEvent) Attempt {
	select {
	case <-time.After(g.latency):
	case <-ctx.Done():
		return Attempt{Outcome: OutcomeUnavailable, Reason: ctx.Err().Error()}
	}

	g.l.Info(ctx, "Cash payment registered",
		"booking_uid", event.BookingUID,
		"amount", event.Amount,
	)

	return Attempt{Outcome: OutcomeAccepted, Reference: "CASH-" + event.BookingUID}
}
