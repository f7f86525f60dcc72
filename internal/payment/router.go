package payment

import (
	"context"
	"strings"

	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/pkg/logger"
)

// ResolveProvider maps a partner code to its settlement provider. Unknown or
// empty codes settle in cash.
func ResolveProvider(partnerCode string) Provider {
	switch strings.ToUpper(strings.TrimSpace(partnerCode)) {
	case string(ProviderMixx):
		return ProviderMixx
	case string(ProviderBmslg):
		return ProviderBmslg
	default:
		return ProviderCash
	}
}

// Router dispatches payment events to registered gateways. Registration is
// data-driven: adding a provider is a Register call, not a consumer change.
type Router struct {
	gateways map[Provider]Gateway
	l        logger.Logger
}

func NewRouter(l logger.Logger) *Router {
	return &Router{
		gateways: make(map[Provider]Gateway),
		l:        l,
	}
}

func (r *Router) Register(p Provider, gw Gateway) {
	r.gateways[p] = gw
}

func (r *Router) Dispatch(ctx context.Context, event kafka.BookingPaymentEvent) Attempt {
	p := Provider(strings.ToUpper(event.PaymentProvider))

	gw, ok := r.gateways[p]
	if !ok {
		r.l.Warn(ctx, "No gateway registered for provider",
			"provider", event.PaymentProvider,
			"booking_uid", event.BookingUID,
		)
		return Attempt{
			Outcome: OutcomeRejected,
			Reason:  "unknown payment provider: " + event.PaymentProvider,
		}
	}

	return gw.Initiate(ctx, event)
}
