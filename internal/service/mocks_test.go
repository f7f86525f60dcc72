package service

import (
	"context"
	"errors"
	"sync"
	"time"

	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/models"
	"github.com/safarika/busbook/internal/payment"
	repo "github.com/safarika/busbook/internal/repository/postgres"
	redisRepo "github.com/safarika/busbook/internal/repository/redis"
)

// fakeBookingRepo stores bookings by uid. FindByUID returns a copy so a
// handler mutating the loaded aggregate must call Update to persist, the same
// contract the gorm repository gives.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking

	createErr error
	findErr   error
	updateErr error
	staleErr  error

	updateCalls int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, bk *models.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	bk.CreatedAt = time.Now()
	f.bookings[bk.UID] = *bk
	return nil
}

func (f *fakeBookingRepo) FindByUID(ctx context.Context, uid string) (*models.Booking, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	bk, ok := f.bookings[uid]
	if !ok {
		return nil, repo.ErrBookingNotFound
	}
	cp := bk
	return &cp, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, bk *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.bookings[bk.UID] = *bk
	return nil
}

func (f *fakeBookingRepo) FindStaleProcessing(ctx context.Context, olderThan time.Time, limit int) ([]models.Booking, error) {
	if f.staleErr != nil {
		return nil, f.staleErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []models.Booking
	for _, bk := range f.bookings {
		if bk.Status == models.BookingStatusProcessing && bk.CreatedAt.Before(olderThan) {
			stale = append(stale, bk)
			if len(stale) == limit {
				break
			}
		}
	}
	return stale, nil
}

func (f *fakeBookingRepo) get(uid string) (models.Booking, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bk, ok := f.bookings[uid]
	return bk, ok
}

func (f *fakeBookingRepo) put(bk models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[bk.UID] = bk
}

type fakeAttemptRepo struct {
	mu        sync.Mutex
	attempts  []models.PaymentAttempt
	createErr error
}

func (f *fakeAttemptRepo) Create(ctx context.Context, at *models.PaymentAttempt) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *at)
	return nil
}

func (f *fakeAttemptRepo) CountByBookingUID(ctx context.Context, uid string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, at := range f.attempts {
		if at.BookingUID == uid {
			n++
		}
	}
	return n, nil
}

type fakeCorrelationRepo struct {
	mu      sync.Mutex
	records map[string]redisRepo.CorrelationRecord
	saveErr error
}

func newFakeCorrelationRepo() *fakeCorrelationRepo {
	return &fakeCorrelationRepo{records: make(map[string]redisRepo.CorrelationRecord)}
}

func (f *fakeCorrelationRepo) Save(ctx context.Context, rec *redisRepo.CorrelationRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[rec.BookingUID] = *rec
	return nil
}

func (f *fakeCorrelationRepo) Get(ctx context.Context, bookingUID string) (*redisRepo.CorrelationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[bookingUID]
	if !ok {
		return nil, errors.New("correlation record not found")
	}
	cp := rec
	return &cp, nil
}

type fakeProducer struct {
	mu         sync.Mutex
	created    []kafka.BookingCreatedEvent
	payments   []kafka.BookingPaymentEvent
	callbacks  []kafka.PaymentCallbackEvent
	createdErr error
	paymentErr error
}

func (f *fakeProducer) PublishBookingCreated(ctx context.Context, event kafka.BookingCreatedEvent) error {
	if f.createdErr != nil {
		return f.createdErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, event)
	return nil
}

func (f *fakeProducer) PublishBookingPayment(ctx context.Context, event kafka.BookingPaymentEvent) error {
	if f.paymentErr != nil {
		return f.paymentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments = append(f.payments, event)
	return nil
}

func (f *fakeProducer) PublishPaymentCallback(ctx context.Context, event kafka.PaymentCallbackEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, event)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) paymentEvents() []kafka.BookingPaymentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]kafka.BookingPaymentEvent, len(f.payments))
	copy(out, f.payments)
	return out
}

// fixedGateway answers every initiation with the same attempt.
type fixedGateway struct {
	attempt payment.Attempt
	calls   int
}

func (g *fixedGateway) Initiate(ctx context.Context, event kafka.BookingPaymentEvent) payment.Attempt {
	g.calls++
	return g.attempt
}

type hookRecorder struct {
	mu        sync.Mutex
	notified  []string
	ticketed  []string
	confirmed []string
	notifErr  error
	ticketErr error
}

func (h *hookRecorder) NotifyBookingConfirmed(ctx context.Context, bk *models.Booking) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.notifErr != nil {
		return h.notifErr
	}
	h.notified = append(h.notified, bk.UID)
	return nil
}

func (h *hookRecorder) GenerateTickets(ctx context.Context, bk *models.Booking) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ticketErr != nil {
		return h.ticketErr
	}
	h.ticketed = append(h.ticketed, bk.UID)
	return nil
}

func (h *hookRecorder) OnBookingConfirmed(ctx context.Context, bk *models.Booking) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.confirmed = append(h.confirmed, bk.UID)
	return nil
}
