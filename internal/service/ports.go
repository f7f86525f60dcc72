package service

import (
	"context"

	"github.com/safarika/busbook/internal/models"
)

// Post-success side effects. They run outside the saga's consistency boundary:
// the saga triggers them and never consumes their result.

type NotificationService interface {
	NotifyBookingConfirmed(ctx context.Context, bk *models.Booking) error
}

type TicketService interface {
	GenerateTickets(ctx context.Context, bk *models.Booking) error
}

type PartnerHook interface {
	OnBookingConfirmed(ctx context.Context, bk *models.Booking) error
}
