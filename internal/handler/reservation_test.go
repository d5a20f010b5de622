package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yuri-shui/FlightBooking/internal/handler"
	"github.com/yuri-shui/FlightBooking/internal/model"
	"github.com/yuri-shui/FlightBooking/internal/repository"
)

// Mock implementations

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Book(ctx context.Context, userID uint64, it model.Itinerary) (repository.BookingResult, error) {
	args := m.Called(ctx, userID, it)
	return args.Get(0).(repository.BookingResult), args.Error(1)
}

func (m *MockBookingStore) Cancel(ctx context.Context, userID uint64, flightIDs []uint64) error {
	args := m.Called(ctx, userID, flightIDs)
	return args.Error(0)
}

func (m *MockBookingStore) ListByUser(ctx context.Context, userID uint64) ([]model.Flight, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Flight), args.Error(1)
}

type MockFlightResolver struct {
	mock.Mock
}

func (m *MockFlightResolver) GetByIDs(ctx context.Context, ids []uint64) ([]model.Flight, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Flight), args.Error(1)
}

func testLeg(id uint64, origin, dest string, minutes int) model.Flight {
	return model.Flight{
		ID: id, Carrier: "Alaska Airlines Inc.", FlightNum: "24",
		OriginCity: origin, DestCity: dest,
		Year: 2015, Month: 6, DayOfMonth: 1, ActualTime: minutes,
	}
}

// newRequest builds an echo context with an authenticated user already
// injected, the way the JWT middleware would.
func newRequest(method, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/v1/reservations", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/v1/reservations", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
		c.Set("handle", "tester")
	}
	return c, rec
}

func newHandler(bookings *MockBookingStore, flights *MockFlightResolver) *handler.ReservationHandler {
	h := handler.NewReservationHandler(bookings, flights)
	h.PublishEvents = false // no broker in unit tests
	return h
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestBookAdded(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	legs := []model.Flight{
		testLeg(1, "Seattle WA", "Chicago IL", 240),
		testLeg(2, "Chicago IL", "Boston MA", 150),
	}
	flights.On("GetByIDs", mock.Anything, []uint64{1, 2}).Return(legs, nil)
	bookings.On("Book", mock.Anything, uint64(7), model.Itinerary{Legs: legs}).
		Return(repository.BookingAdded, nil)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1,2]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "added", body["status"])
	assert.EqualValues(t, 390, body["total_time"])
	bookings.AssertExpectations(t)
	flights.AssertExpectations(t)
}

func TestBookFlightFull(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	legs := []model.Flight{testLeg(1, "Seattle WA", "Boston MA", 300)}
	flights.On("GetByIDs", mock.Anything, []uint64{1}).Return(legs, nil)
	bookings.On("Book", mock.Anything, uint64(7), model.Itinerary{Legs: legs}).
		Return(repository.BookingFlightFull, nil)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "flight_full", decodeBody(t, rec)["status"])
}

func TestBookDayFull(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	legs := []model.Flight{testLeg(1, "Seattle WA", "Boston MA", 300)}
	flights.On("GetByIDs", mock.Anything, []uint64{1}).Return(legs, nil)
	bookings.On("Book", mock.Anything, uint64(7), model.Itinerary{Legs: legs}).
		Return(repository.BookingDayFull, nil)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "day_full", decodeBody(t, rec)["status"])
}

func TestBookSerializationConflictIsRetryable(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	legs := []model.Flight{testLeg(1, "Seattle WA", "Boston MA", 300)}
	flights.On("GetByIDs", mock.Anything, []uint64{1}).Return(legs, nil)
	bookings.On("Book", mock.Anything, uint64(7), model.Itinerary{Legs: legs}).
		Return(repository.BookingResult(0), repository.ErrSerializationConflict)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "serialization_conflict", body["status"])
	assert.Equal(t, true, body["retryable"])
}

func TestBookUnknownFlight(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	// One of the two requested IDs does not resolve.
	flights.On("GetByIDs", mock.Anything, []uint64{1, 999}).
		Return([]model.Flight{testLeg(1, "Seattle WA", "Chicago IL", 240)}, nil)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1,999]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	bookings.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookBrokenConnection(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	legs := []model.Flight{
		testLeg(1, "Seattle WA", "Chicago IL", 240),
		testLeg(2, "Denver CO", "Boston MA", 150),
	}
	flights.On("GetByIDs", mock.Anything, []uint64{1, 2}).Return(legs, nil)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1,2]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	bookings.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookRejectsSameFlightTwice(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	loop := testLeg(42, "Seattle WA", "Seattle WA", 60)
	flights.On("GetByIDs", mock.Anything, []uint64{42, 42}).
		Return([]model.Flight{loop, loop}, nil)

	c, rec := newRequest(http.MethodPost, `{"flight_ids":[42,42]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Book(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	bookings.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookRejectsBadLegCounts(t *testing.T) {
	for _, body := range []string{`{"flight_ids":[]}`, `{"flight_ids":[1,2,3]}`} {
		c, rec := newRequest(http.MethodPost, body, 7)
		require.NoError(t, newHandler(new(MockBookingStore), new(MockFlightResolver)).Book(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestBookUnauthorized(t *testing.T) {
	c, rec := newRequest(http.MethodPost, `{"flight_ids":[1]}`, 0)
	require.NoError(t, newHandler(new(MockBookingStore), new(MockFlightResolver)).Book(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancelIsIdempotent(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	// The store treats missing rows as a no-op; the handler just relays.
	bookings.On("Cancel", mock.Anything, uint64(7), []uint64{5, 6}).Return(nil)

	c, rec := newRequest(http.MethodDelete, `{"flight_ids":[5,6]}`, 7)
	require.NoError(t, newHandler(bookings, flights).Cancel(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	bookings.AssertExpectations(t)
}

func TestCancelRequiresFlightIDs(t *testing.T) {
	c, rec := newRequest(http.MethodDelete, `{"flight_ids":[]}`, 7)
	require.NoError(t, newHandler(new(MockBookingStore), new(MockFlightResolver)).Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReservations(t *testing.T) {
	bookings := new(MockBookingStore)
	flights := new(MockFlightResolver)
	booked := []model.Flight{
		testLeg(1, "Seattle WA", "Chicago IL", 240),
		testLeg(2, "Chicago IL", "Boston MA", 150),
	}
	bookings.On("ListByUser", mock.Anything, uint64(7)).Return(booked, nil)

	c, rec := newRequest(http.MethodGet, "", 7)
	require.NoError(t, newHandler(bookings, flights).List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	items, ok := decodeBody(t, rec)["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
}
