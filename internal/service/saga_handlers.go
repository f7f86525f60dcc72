package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/models"
	"github.com/safarika/busbook/internal/payment"
	repo "github.com/safarika/busbook/internal/repository/postgres"
)

// HandleBookingCreated reaffirms PROCESSING and emits the payment request.
// Safe to repeat: redelivery after a partial run converges on the same state.
func (s *bookingService) HandleBookingCreated(ctx context.Context, in BookingCreatedInput) error {
	bk, err := s.bkRepo.FindByUID(ctx, in.BookingUID)
	if err != nil {
		if errors.Is(err, repo.ErrBookingNotFound) {
			// The creator is the only writer of the first record; absence is
			// a permanent data error, not a timing issue. Discard.
			s.l.Warn(ctx, "Booking not found for created event, discarding",
				"booking_uid", in.BookingUID,
			)
			return nil
		}
		return fmt.Errorf("failed to load booking: %w", err)
	}

	if bk.IsTerminal() {
		s.l.Info(ctx, "Booking already finalized, ignoring created event",
			"booking_uid", bk.UID,
			"status", bk.Status,
		)
		return nil
	}

	bk.Status = models.BookingStatusProcessing
	if err := s.bkRepo.Update(ctx, bk); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	prov := payment.ResolveProvider(bk.PartnerCode)

	if err := s.prod.PublishBookingPayment(ctx, kafka.BookingPaymentEvent{
		EventID:         uuid.NewString(),
		BookingUID:      bk.UID,
		Amount:          bk.TotalBookingFare,
		Currency:        bk.Currency,
		PaymentMethod:   bk.PaymentMethod,
		PaymentProvider: string(prov),
		CustomerPhone:   bk.CustomerPhone,
		CustomerEmail:   bk.CustomerEmail,
		CallbackURL:     s.callbackURL,
	}); err != nil {
		return fmt.Errorf("failed to publish payment event: %w", err)
	}

	s.l.Info(ctx, "Payment requested",
		"booking_uid", bk.UID,
		"provider", prov,
		"amount", bk.TotalBookingFare,
	)

	return nil
}

// HandleBookingPayment dispatches the payment request to the resolved
// provider. Provider failures are absorbed into the recorded attempt: the
// booking stays PROCESSING/PENDING and the log is not asked to redeliver.
func (s *bookingService) HandleBookingPayment(ctx context.Context, event kafka.BookingPaymentEvent) error {
	bk, err := s.bkRepo.FindByUID(ctx, event.BookingUID)
	if err != nil {
		if errors.Is(err, repo.ErrBookingNotFound) {
			s.l.Warn(ctx, "Booking not found for payment event, discarding",
				"booking_uid", event.BookingUID,
			)
			return nil
		}
		return fmt.Errorf("failed to load booking: %w", err)
	}

	if bk.IsTerminal() {
		s.l.Info(ctx, "Booking already finalized, ignoring payment event",
			"booking_uid", bk.UID,
			"status", bk.Status,
		)
		return nil
	}

	attempt := s.router.Dispatch(ctx, event)

	if err := s.atRepo.Create(ctx, &models.PaymentAttempt{
		BookingUID: bk.UID,
		Provider:   event.PaymentProvider,
		Outcome:    string(attempt.Outcome),
		Reference:  attempt.Reference,
	}); err != nil {
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}

	switch attempt.Outcome {
	case payment.OutcomeAccepted:
		s.l.Info(ctx, "Payment initiation accepted",
			"booking_uid", bk.UID,
			"provider", event.PaymentProvider,
			"reference", attempt.Reference,
		)
	default:
		// Absorbed: no automatic retry, no status change. The booking stays
		// PENDING for manual reconciliation.
		s.l.Warn(ctx, "Payment initiation did not go through",
			"booking_uid", bk.UID,
			"provider", event.PaymentProvider,
			"outcome", attempt.Outcome,
			"reason", attempt.Reason,
		)
	}

	return nil
}

// HandlePaymentCallback reconciles the provider callback and finalizes the
// booking. Every branch is idempotent; a duplicate callback for a terminal
// booking is a no-op.
func (s *bookingService) HandlePaymentCallback(ctx context.Context, in PaymentCallbackInput) error {
	bk, err := s.bkRepo.FindByUID(ctx, in.BookingUID)
	if err != nil {
		if errors.Is(err, repo.ErrBookingNotFound) {
			s.l.Warn(ctx, "Booking not found for payment callback, discarding",
				"booking_uid", in.BookingUID,
			)
			return nil
		}
		return fmt.Errorf("failed to load booking: %w", err)
	}

	if bk.IsTerminal() {
		s.l.Info(ctx, "Duplicate callback for finalized booking, ignoring",
			"booking_uid", bk.UID,
			"status", bk.Status,
		)
		return nil
	}

	confirmed := false
	switch in.PaymentStatus {
	case kafka.CallbackStatusSuccess:
		bk.Status = models.BookingStatusConfirmed
		bk.PaymentStatus = models.PaymentStatusPaid
		bk.ExternalBookingID = in.TransactionID
		bk.ExternalReference = in.ProviderReference
		confirmed = true

	case kafka.CallbackStatusPending:
		bk.PaymentStatus = models.PaymentStatusPending

	case kafka.CallbackStatusCancelled:
		bk.Status = models.BookingStatusCancelled
		bk.PaymentStatus = models.PaymentStatusFailed

	default:
		// FAILED and anything unrecognized close the booking rather than
		// leave it PROCESSING forever.
		bk.Status = models.BookingStatusFailed
		bk.PaymentStatus = models.PaymentStatusFailed
		if in.FailureReason != "" {
			bk.AppendNote(in.FailureReason)
		} else if in.PaymentStatus != kafka.CallbackStatusFailed {
			bk.AppendNote("unrecognized payment status: " + in.PaymentStatus)
		}
	}

	if err := s.bkRepo.Update(ctx, bk); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	s.l.Info(ctx, "Payment callback processed",
		"booking_uid", bk.UID,
		"payment_status", in.PaymentStatus,
		"status", bk.Status,
	)

	if confirmed {
		s.firePostSuccessHooks(ctx, bk)
	}

	return nil
}

// firePostSuccessHooks triggers the post-payment side effects. They sit
// outside the saga's consistency boundary: failures are logged and never
// surface to the consumer.
func (s *bookingService) firePostSuccessHooks(ctx context.Context, bk *models.Booking) {
	if err := s.tickets.GenerateTickets(ctx, bk); err != nil {
		s.l.Error(ctx, "Ticket generation failed",
			"booking_uid", bk.UID,
			"error", err,
		)
	}

	if err := s.notif.NotifyBookingConfirmed(ctx, bk); err != nil {
		s.l.Error(ctx, "Confirmation notification failed",
			"booking_uid", bk.UID,
			"error", err,
		)
	}

	if err := s.partnerHook.OnBookingConfirmed(ctx, bk); err != nil {
		s.l.Error(ctx, "Partner hook failed",
			"booking_uid", bk.UID,
			"error", err,
		)
	}
}
