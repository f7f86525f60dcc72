package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/safarika/busbook/config"
	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/delivery/kafka/producer"
	"github.com/safarika/busbook/internal/payment"
	repo "github.com/safarika/busbook/internal/repository/postgres"
	"github.com/safarika/busbook/pkg/logger"
)

// Reconciler re-emits payment requests for PROCESSING bookings older than the
// stale threshold that never produced a payment attempt. It closes the gap
// where the BookingPayment publish fails after the booking is committed.
type Reconciler interface {
	Start(ctx context.Context) error
	Stop() error
	SweepOnce(ctx context.Context) (int, error)
	GetStatus() ReconcilerStatus
}

type ReconcilerStatus struct {
	IsRunning  bool      `json:"is_running"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	LastSweep  time.Time `json:"last_sweep,omitempty"`
	TotalSwept int64     `json:"total_swept"`
	ErrorCount int64     `json:"error_count"`
}

type reconciler struct {
	bkRepo      repo.BookingRepository
	prod        producer.Producer
	l           logger.Logger
	interval    time.Duration
	threshold   time.Duration
	batchSize   int
	shutdownTO  time.Duration
	callbackURL string

	mu         sync.RWMutex
	isRunning  bool
	startedAt  time.Time
	lastSweep  time.Time
	totalSwept int64
	errorCount int64
	stopCh     chan struct{}
	ticker     *time.Ticker
	wg         sync.WaitGroup
}

func NewReconciler(
	bkRepo repo.BookingRepository,
	prod producer.Producer,
	l logger.Logger,
	cfg config.SagaConfig,
	callbackURL string,
) Reconciler {
	return &reconciler{
		bkRepo:      bkRepo,
		prod:        prod,
		l:           l,
		interval:    cfg.SweepInterval,
		threshold:   cfg.StaleThreshold,
		batchSize:   cfg.SweepBatchSize,
		shutdownTO:  cfg.ShutdownTimeout,
		callbackURL: callbackURL,
		stopCh:      make(chan struct{}),
	}
}

func (r *reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return errors.New("reconciler is already running")
	}

	r.l.Info(ctx, "Starting saga reconciler",
		"interval", r.interval,
		"stale_threshold", r.threshold,
		"batch_size", r.batchSize,
	)

	r.isRunning = true
	r.startedAt = time.Now()
	r.ticker = time.NewTicker(r.interval)

	r.wg.Add(1)
	go r.sweepLoop(ctx)

	return nil
}

func (r *reconciler) Stop() error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return errors.New("reconciler is not running")
	}

	r.l.Info(context.Background(), "Stopping saga reconciler...")

	close(r.stopCh)
	if r.ticker != nil {
		r.ticker.Stop()
	}
	// Release before waiting: the sweep loop takes the same lock to record
	// sweep results.
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.l.Info(context.Background(), "Saga reconciler stopped gracefully")
	case <-time.After(r.shutdownTO):
		r.l.Warn(context.Background(), "Saga reconciler shutdown timeout exceeded")
	}

	r.mu.Lock()
	r.isRunning = false
	r.mu.Unlock()
	return nil
}

func (r *reconciler) sweepLoop(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-r.ticker.C:
			n, err := r.SweepOnce(ctx)
			r.mu.Lock()
			r.lastSweep = time.Now()
			if err != nil {
				r.errorCount++
			}
			r.totalSwept += int64(n)
			r.mu.Unlock()

			if err != nil {
				r.l.Errorf(ctx, "service.reconciler.sweepLoop: %v", err)
			}
		}
	}
}

// SweepOnce re-publishes BookingPayment for every stale PROCESSING booking
// with no recorded attempt. Re-emission is safe: the payment consumer checks
// booking state before dispatching, and attempts are keyed by booking uid.
func (r *reconciler) SweepOnce(ctx context.Context) (int, error) {
	stale, err := r.bkRepo.FindStaleProcessing(ctx, time.Now().Add(-r.threshold), r.batchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for i := range stale {
		bk := &stale[i]
		prov := payment.ResolveProvider(bk.PartnerCode)

		if err := r.prod.PublishBookingPayment(ctx, kafka.BookingPaymentEvent{
			EventID:         uuid.NewString(),
			BookingUID:      bk.UID,
			Amount:          bk.TotalBookingFare,
			Currency:        bk.Currency,
			PaymentMethod:   bk.PaymentMethod,
			PaymentProvider: string(prov),
			CustomerPhone:   bk.CustomerPhone,
			CustomerEmail:   bk.CustomerEmail,
			CallbackURL:     r.callbackURL,
		}); err != nil {
			r.l.Error(ctx, "Failed to re-emit payment request",
				"booking_uid", bk.UID,
				"error", err,
			)
			continue
		}

		r.l.Info(ctx, "Re-emitted payment request for stale booking",
			"booking_uid", bk.UID,
			"created_at", bk.CreatedAt,
		)
		swept++
	}

	return swept, nil
}

func (r *reconciler) GetStatus() ReconcilerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return ReconcilerStatus{
		IsRunning:  r.isRunning,
		StartedAt:  r.startedAt,
		LastSweep:  r.lastSweep,
		TotalSwept: r.totalSwept,
		ErrorCount: r.errorCount,
	}
}
