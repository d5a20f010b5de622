package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yuri-shui/FlightBooking/internal/model"
	"github.com/yuri-shui/FlightBooking/internal/queue"
	"github.com/yuri-shui/FlightBooking/internal/repository"
	queue_publisher "github.com/yuri-shui/FlightBooking/internal/service"
)

// BookingStore is the reservation transaction core as the handler sees
// it.  *repository.ReservationRepo satisfies it; tests substitute a mock.
type BookingStore interface {
	Book(ctx context.Context, userID uint64, it model.Itinerary) (repository.BookingResult, error)
	Cancel(ctx context.Context, userID uint64, flightIDs []uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Flight, error)
}

// FlightResolver resolves requested flight IDs into catalog records.
type FlightResolver interface {
	GetByIDs(ctx context.Context, ids []uint64) ([]model.Flight, error)
}

// ReservationHandler serves the authenticated booking endpoints.  All
// methods assume JWT middleware already ran; they return 401 when the
// user id cannot be extracted from the context.
type ReservationHandler struct {
	Bookings BookingStore
	Flights  FlightResolver
	// PublishEvents disables the AMQP publish in tests.
	PublishEvents bool
}

// NewReservationHandler constructs a ReservationHandler.  Both
// dependencies must be non-nil.
func NewReservationHandler(bookings BookingStore, flights FlightResolver) *ReservationHandler {
	if bookings == nil || flights == nil {
		panic("nil store passed to NewReservationHandler")
	}
	return &ReservationHandler{Bookings: bookings, Flights: flights, PublishEvents: true}
}

type bookReq struct {
	FlightIDs []uint64 `json:"flight_ids"`
}

// Book handles POST /v1/reservations.  The body names the one or two
// flight IDs of a previously searched itinerary.  Outcomes:
//
//	201 added                  – every leg reserved, transaction committed
//	409 flight_full            – a leg is at capacity, nothing reserved
//	409 day_full               – the user already holds a booking that date
//	409 serialization_conflict – a concurrent booking won; retryable
//
// Full flights and full days are answers, not faults, so they share the
// 409 status with a machine-readable status field.
func (h *ReservationHandler) Book(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body bookReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.FlightIDs) == 0 || len(body.FlightIDs) > 2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_ids must contain one or two flights"})
	}

	ctx := c.Request().Context()
	legs, err := h.Flights.GetByIDs(ctx, body.FlightIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load flights"})
	}
	if len(legs) != len(body.FlightIDs) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown flight id"})
	}
	it := model.Itinerary{Legs: legs}
	if err := it.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result, err := h.Bookings.Book(ctx, userID, it)
	if err != nil {
		if errors.Is(err, repository.ErrSerializationConflict) {
			return c.JSON(http.StatusConflict, echo.Map{
				"status":    "serialization_conflict",
				"error":     "a concurrent booking conflicted with this one",
				"retryable": true,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	switch result {
	case repository.BookingFlightFull:
		return c.JSON(http.StatusConflict, echo.Map{"status": result.String(), "error": "flight is fully booked"})
	case repository.BookingDayFull:
		return c.JSON(http.StatusConflict, echo.Map{"status": result.String(), "error": "a booking already exists for this date"})
	}

	if h.PublishEvents {
		go publishConfirmed(userID, getHandle(c), it)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"status":     result.String(),
		"total_time": it.TotalTime(),
		"legs":       it.Legs,
	})
}

// publishConfirmed fires the booking.confirmed event.  Failures are
// logged inside the publisher and otherwise ignored: the booking is
// already committed.
func publishConfirmed(userID uint64, handle string, it model.Itinerary) {
	date := it.Date()
	legs := make([]queue.BookedLeg, 0, len(it.Legs))
	for _, l := range it.Legs {
		legs = append(legs, queue.BookedLeg{
			FlightID:   l.ID,
			Carrier:    l.Carrier,
			FlightNum:  l.FlightNum,
			OriginCity: l.OriginCity,
			DestCity:   l.DestCity,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = queue_publisher.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		UserID:      userID,
		Handle:      handle,
		Date:        time.Date(date.Year, time.Month(date.Month), date.DayOfMonth, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		Legs:        legs,
		TotalTime:   it.TotalTime(),
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

type cancelReq struct {
	FlightIDs []uint64 `json:"flight_ids"`
}

// Cancel handles DELETE /v1/reservations.  It removes the user's
// reservations on each listed flight.  Cancelling a flight the user
// never booked is a no-op, so the endpoint is idempotent and always
// returns 204 unless the database fails.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body cancelReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.FlightIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "flight_ids is required"})
	}
	if err := h.Bookings.Cancel(c.Request().Context(), userID, body.FlightIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancellation failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/reservations.  It returns every flight the user
// currently holds a reservation on, ordered by date.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	flights, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": flights,
	})
}
