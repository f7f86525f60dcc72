package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	repo "github.com/safarika/busbook/internal/repository/postgres"
	"github.com/safarika/busbook/internal/service"
	"github.com/safarika/busbook/pkg/logger"
)

type HTTPHandler struct {
	bookingService service.BookingService
	reconciler     service.Reconciler
	logger         logger.Logger
	validator      *validator.Validate
}

func NewHTTPHandler(bookingService service.BookingService, reconciler service.Reconciler, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		bookingService: bookingService,
		reconciler:     reconciler,
		logger:         logger,
		validator:      validator.New(),
	}
}

// HealthCheck handles health check requests
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "busbook-saga",
	}
	h.respondJSON(w, http.StatusOK, response)
}

// CreateBooking handles booking creation requests and starts the saga.
func (h *HTTPHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookingInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	response, err := h.bookingService.CreateBooking(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPassengers),
			errors.Is(err, service.ErrPastTravelDate),
			errors.Is(err, service.ErrDuplicateSeat),
			errors.Is(err, service.ErrInvalidFare):
			h.respondError(w, http.StatusUnprocessableEntity, err.Error(), err)
		default:
			h.logger.Error(r.Context(), "Failed to create booking", "error", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to create booking", err)
		}
		return
	}

	h.respondJSON(w, http.StatusCreated, response)
}

// GetBooking handles booking status lookups by uid.
func (h *HTTPHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingUID := chi.URLParam(r, "bookingUid")
	if bookingUID == "" {
		h.respondError(w, http.StatusBadRequest, "Booking uid is required", nil)
		return
	}

	bk, err := h.bookingService.GetBooking(r.Context(), bookingUID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrBookingNotFound):
			h.respondError(w, http.StatusNotFound, "Booking not found", err)
		default:
			h.logger.Error(r.Context(), "Failed to get booking", "error", err, "booking_uid", bookingUID)
			h.respondError(w, http.StatusInternalServerError, "Failed to get booking", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, bk)
}

// SweeperStatus reports the reconciliation sweeper counters.
func (h *HTTPHandler) SweeperStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.reconciler.GetStatus())
}

// Helper functions

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error(context.Background(), "Failed to encode JSON response", "error", err)
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	response := map[string]interface{}{
		"error": message,
		"code":  statusCode,
	}

	if err != nil {
		h.logger.Debug(context.Background(), "Error response", "message", message, "error", err.Error())
	}

	h.respondJSON(w, statusCode, response)
}
