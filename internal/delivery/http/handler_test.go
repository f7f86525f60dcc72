package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	kafka "github.com/safarika/busbook/internal/delivery/kafka"
	"github.com/safarika/busbook/internal/models"
	repo "github.com/safarika/busbook/internal/repository/postgres"
	"github.com/safarika/busbook/internal/service"
	"github.com/safarika/busbook/pkg/logger"
)

type stubBookingService struct {
	createOut *service.CreateBookingOutput
	createErr error
	createIn  *service.CreateBookingInput

	booking *models.Booking
	getErr  error
}

func (s *stubBookingService) CreateBooking(ctx context.Context, in service.CreateBookingInput) (*service.CreateBookingOutput, error) {
	s.createIn = &in
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createOut, nil
}

func (s *stubBookingService) GetBooking(ctx context.Context, uid string) (*models.Booking, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.booking, nil
}

func (s *stubBookingService) HandleBookingCreated(ctx context.Context, in service.BookingCreatedInput) error {
	return nil
}

func (s *stubBookingService) HandleBookingPayment(ctx context.Context, event kafka.BookingPaymentEvent) error {
	return nil
}

func (s *stubBookingService) HandlePaymentCallback(ctx context.Context, in service.PaymentCallbackInput) error {
	return nil
}

type stubReconciler struct {
	status service.ReconcilerStatus
}

func (s *stubReconciler) Start(ctx context.Context) error            { return nil }
func (s *stubReconciler) Stop() error                                { return nil }
func (s *stubReconciler) SweepOnce(ctx context.Context) (int, error) { return 0, nil }
func (s *stubReconciler) GetStatus() service.ReconcilerStatus        { return s.status }

func newTestRouter(svc service.BookingService, rec service.Reconciler) http.Handler {
	return NewRouter(NewHTTPHandler(svc, rec, logger.InitializeTestZapLogger()))
}

func validBookingBody() string {
	travel := time.Now().Add(72 * time.Hour).Format(time.RFC3339)
	return `{
		"currency": "TZS",
		"payment_method": "MOBILE_MONEY",
		"partner_code": "MIXX",
		"route_from": "Dar es Salaam",
		"route_to": "Dodoma",
		"travel_date": "` + travel + `",
		"customer_phone": "+255700000001",
		"passengers": [
			{"full_name": "Asha Mwinyi", "seat_id": "12A", "individual_fare": 10000},
			{"full_name": "Juma Mwinyi", "seat_id": "12B", "individual_fare": 15000}
		]
	}`
}

func TestCreateBookingEndpoint(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubBookingService{createOut: &service.CreateBookingOutput{
			BookingUID: "bk-1",
			Status:     models.BookingStatusProcessing,
			TotalFare:  25000,
		}}
		router := newTestRouter(svc, &stubReconciler{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(validBookingBody())))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (%s)", rec.Code, rec.Body)
		}
		var out service.CreateBookingOutput
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if out.BookingUID != "bk-1" || out.Status != models.BookingStatusProcessing {
			t.Errorf("response = %+v", out)
		}
		if svc.createIn == nil || len(svc.createIn.Passengers) != 2 {
			t.Errorf("service saw input %+v", svc.createIn)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &stubBookingService{}
		router := newTestRouter(svc, &stubReconciler{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{not json")))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if svc.createIn != nil {
			t.Error("malformed body must not reach the service")
		}
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := &stubBookingService{}
		router := newTestRouter(svc, &stubReconciler{})

		// seat_id is required on every passenger
		body := strings.Replace(validBookingBody(), `"seat_id": "12A", `, "", 1)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if svc.createIn != nil {
			t.Error("invalid body must not reach the service")
		}
	})

	t.Run("domain rejection", func(t *testing.T) {
		svc := &stubBookingService{createErr: service.ErrPastTravelDate}
		router := newTestRouter(svc, &stubReconciler{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(validBookingBody())))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
	})
}

func TestGetBookingEndpoint(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &stubBookingService{booking: &models.Booking{
			UID:    "bk-1",
			Status: models.BookingStatusConfirmed,
		}}
		router := newTestRouter(svc, &stubReconciler{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/bk-1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var bk models.Booking
		if err := json.Unmarshal(rec.Body.Bytes(), &bk); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if bk.Status != models.BookingStatusConfirmed {
			t.Errorf("status = %v, want CONFIRMED", bk.Status)
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &stubBookingService{getErr: repo.ErrBookingNotFound}
		router := newTestRouter(svc, &stubReconciler{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/no-such", nil))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(&stubBookingService{}, &stubReconciler{
		status: service.ReconcilerStatus{IsRunning: true, TotalSwept: 7},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sweeper/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("sweeper status = %d, want 200", rec.Code)
	}
	var st service.ReconcilerStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.IsRunning || st.TotalSwept != 7 {
		t.Errorf("status = %+v", st)
	}
}
