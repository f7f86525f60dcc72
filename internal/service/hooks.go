package service

import (
	"context"

	"github.com/safarika/busbook/internal/models"
	"github.com/safarika/busbook/pkg/logger"
)

// Logging implementations of the post-success hooks. Real delivery (email,
// ticket PDF, partner webhook) plugs in behind the same interfaces.

type logNotificationService struct {
	l logger.Logger
}

func NewLogNotificationService(l logger.Logger) NotificationService {
	return &logNotificationService{l: l}
}

func (s *logNotificationService) NotifyBookingConfirmed(ctx context.Context, bk *models.Booking) error {
	s.l.Info(ctx, "Booking confirmation notification triggered",
		"booking_uid", bk.UID,
		"customer_email", bk.CustomerEmail,
	)
	return nil
}

type logTicketService struct {
	l logger.Logger
}

func NewLogTicketService(l logger.Logger) TicketService {
	return &logTicketService{l: l}
}

func (s *logTicketService) GenerateTickets(ctx context.Context, bk *models.Booking) error {
	s.l.Info(ctx, "Ticket generation triggered",
		"booking_uid", bk.UID,
		"passengers", len(bk.Passengers),
	)
	return nil
}

type logPartnerHook struct {
	l logger.Logger
}

func NewLogPartnerHook(l logger.Logger) PartnerHook {
	return &logPartnerHook{l: l}
}

func (s *logPartnerHook) OnBookingConfirmed(ctx context.Context, bk *models.Booking) error {
	s.l.Info(ctx, "Partner confirmation hook triggered",
		"booking_uid", bk.UID,
		"partner_code", bk.PartnerCode,
	)
	return nil
}
