package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/delivery/kafka/producer"
	"github.com/safarika/busbook/internal/models"
	"github.com/safarika/busbook/internal/payment"
	repo "github.com/safarika/busbook/internal/repository/postgres"
	redisRepo "github.com/safarika/busbook/internal/repository/redis"
	"github.com/safarika/busbook/pkg/logger"
)

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingOutput, error)
	GetBooking(ctx context.Context, uid string) (*models.Booking, error)
	HandleBookingCreated(ctx context.Context, in BookingCreatedInput) error
	HandleBookingPayment(ctx context.Context, event kafka.BookingPaymentEvent) error
	HandlePaymentCallback(ctx context.Context, in PaymentCallbackInput) error
}

type bookingService struct {
	bkRepo      repo.BookingRepository
	atRepo      repo.PaymentAttemptRepository
	corrRepo    redisRepo.CorrelationRepository
	router      *payment.Router
	prod        producer.Producer
	notif       NotificationService
	tickets     TicketService
	partnerHook PartnerHook
	callbackURL string
	l           logger.Logger
}

func NewBookingService(
	bkRepo repo.BookingRepository,
	atRepo repo.PaymentAttemptRepository,
	corrRepo redisRepo.CorrelationRepository,
	router *payment.Router,
	prod producer.Producer,
	notif NotificationService,
	tickets TicketService,
	partnerHook PartnerHook,
	callbackURL string,
	l logger.Logger,
) BookingService {
	return &bookingService{
		bkRepo:      bkRepo,
		atRepo:      atRepo,
		corrRepo:    corrRepo,
		router:      router,
		prod:        prod,
		notif:       notif,
		tickets:     tickets,
		partnerHook: partnerHook,
		callbackURL: callbackURL,
		l:           l,
	}
}

// CreateBooking validates the request, persists the aggregate in one unit and
// publishes BookingCreated after the commit. A validation failure leaves no
// state observable downstream.
func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*CreateBookingOutput, error) {
	if err := validateCreateBooking(in); err != nil {
		return nil, err
	}

	passengers := make([]models.Passenger, 0, len(in.Passengers))
	var totalFare float64
	for _, p := range in.Passengers {
		totalFare += p.IndividualFare
		passengers = append(passengers, models.Passenger{
			FullName:       p.FullName,
			SeatID:         p.SeatID,
			IndividualFare: p.IndividualFare,
			TicketStatus:   models.TicketStatusActive,
			RefundStatus:   models.RefundStatusNone,
		})
	}

	bk := &models.Booking{
		UID:              models.NewBookingUID(),
		Status:           models.BookingStatusProcessing,
		PaymentStatus:    models.PaymentStatusPending,
		TotalBookingFare: totalFare,
		Currency:         in.Currency,
		PaymentMethod:    in.PaymentMethod,
		PartnerCode:      in.PartnerCode,
		AgentCode:        in.AgentCode,
		BusSystemCode:    in.BusSystemCode,
		RouteFrom:        in.RouteFrom,
		RouteTo:          in.RouteTo,
		TravelDate:       in.TravelDate,
		CustomerPhone:    in.CustomerPhone,
		CustomerEmail:    in.CustomerEmail,
		Passengers:       passengers,
	}

	if err := s.bkRepo.Create(ctx, bk); err != nil {
		s.l.Errorf(ctx, "service.bookingService.CreateBooking: %v", err)
		return nil, err
	}

	// Audit side channel: its failure must not fail booking creation.
	if err := s.corrRepo.Save(ctx, &redisRepo.CorrelationRecord{
		BookingUID:    bk.UID,
		Provider:      string(payment.ResolveProvider(bk.PartnerCode)),
		Amount:        bk.TotalBookingFare,
		Currency:      bk.Currency,
		CustomerPhone: bk.CustomerPhone,
		PartnerCode:   bk.PartnerCode,
		CreatedAt:     time.Now(),
	}); err != nil {
		s.l.Error(ctx, "Failed to save correlation record",
			"booking_uid", bk.UID,
			"error", err,
		)
	}

	if err := s.prod.PublishBookingCreated(ctx, kafka.BookingCreatedEvent{
		EventID:       uuid.NewString(),
		BookingUID:    bk.UID,
		Status:        string(bk.Status),
		TotalFare:     bk.TotalBookingFare,
		Currency:      bk.Currency,
		PaymentMethod: bk.PaymentMethod,
		PartnerCode:   bk.PartnerCode,
		AgentCode:     bk.AgentCode,
		RouteFrom:     bk.RouteFrom,
		RouteTo:       bk.RouteTo,
		TravelDate:    bk.TravelDate,
		CustomerPhone: bk.CustomerPhone,
		CustomerEmail: bk.CustomerEmail,
	}); err != nil {
		// The booking is already committed. The reconciliation sweeper picks
		// up PROCESSING bookings whose payment request never went out.
		s.l.Errorf(ctx, "service.bookingService.CreateBooking: %v", err)
	}

	s.l.Info(ctx, "Booking created",
		"booking_uid", bk.UID,
		"total_fare", bk.TotalBookingFare,
		"partner_code", bk.PartnerCode,
	)

	return &CreateBookingOutput{
		BookingUID: bk.UID,
		Status:     bk.Status,
		TotalFare:  bk.TotalBookingFare,
	}, nil
}

func (s *bookingService) GetBooking(ctx context.Context, uid string) (*models.Booking, error) {
	bk, err := s.bkRepo.FindByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, repo.ErrBookingNotFound) {
			s.l.Errorf(ctx, "service.bookingService.GetBooking: %v", err)
		}
		return nil, err
	}
	return bk, nil
}

func validateCreateBooking(in CreateBookingInput) error {
	if len(in.Passengers) == 0 {
		return ErrNoPassengers
	}

	if pastTravelDate(in.TravelDate, time.Now()) {
		return ErrPastTravelDate
	}

	seats := make(map[string]struct{}, len(in.Passengers))
	for _, p := range in.Passengers {
		if p.IndividualFare < 0 {
			return ErrInvalidFare
		}
		if p.SeatID != "" {
			if _, dup := seats[p.SeatID]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateSeat, p.SeatID)
			}
			seats[p.SeatID] = struct{}{}
		}
	}

	return nil
}

// pastTravelDate compares calendar dates in the travel date's own location.
// Truncating the UTC instant instead would shift the cutoff by the zone
// offset, rejecting same-day departures near midnight in partner timezones.
func pastTravelDate(travel, now time.Time) bool {
	ty, tm, td := travel.Date()
	ny, nm, nd := now.In(travel.Location()).Date()
	if ty != ny {
		return ty < ny
	}
	if tm != nm {
		return tm < nm
	}
	return td < nd
}
