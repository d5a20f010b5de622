package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func leg(id uint64, origin, dest string, minutes int) Flight {
	return Flight{
		ID:         id,
		Carrier:    "Test Air",
		FlightNum:  "100",
		OriginCity: origin,
		DestCity:   dest,
		Year:       2015,
		Month:      6,
		DayOfMonth: 1,
		ActualTime: minutes,
	}
}

func TestItineraryTotalTime(t *testing.T) {
	direct := Itinerary{Legs: []Flight{leg(1, "Seattle WA", "Boston MA", 300)}}
	assert.Equal(t, 300, direct.TotalTime())

	connection := Itinerary{Legs: []Flight{
		leg(1, "Seattle WA", "Chicago IL", 240),
		leg(2, "Chicago IL", "Boston MA", 150),
	}}
	assert.Equal(t, 390, connection.TotalTime())
}

func TestItineraryDate(t *testing.T) {
	it := Itinerary{Legs: []Flight{leg(1, "Seattle WA", "Boston MA", 300)}}
	assert.Equal(t, Date{Year: 2015, Month: 6, DayOfMonth: 1}, it.Date())
	assert.Equal(t, Date{}, Itinerary{}.Date())
}

func TestItineraryValidate(t *testing.T) {
	t.Run("direct ok", func(t *testing.T) {
		it := Itinerary{Legs: []Flight{leg(1, "Seattle WA", "Boston MA", 300)}}
		assert.NoError(t, it.Validate())
	})

	t.Run("one connection ok", func(t *testing.T) {
		it := Itinerary{Legs: []Flight{
			leg(1, "Seattle WA", "Chicago IL", 240),
			leg(2, "Chicago IL", "Boston MA", 150),
		}}
		assert.NoError(t, it.Validate())
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, Itinerary{}.Validate(), ErrEmptyItinerary)
	})

	t.Run("three legs", func(t *testing.T) {
		it := Itinerary{Legs: []Flight{
			leg(1, "A", "B", 10), leg(2, "B", "C", 10), leg(3, "C", "D", 10),
		}}
		assert.ErrorIs(t, it.Validate(), ErrTooManyLegs)
	})

	t.Run("mixed dates", func(t *testing.T) {
		second := leg(2, "Chicago IL", "Boston MA", 150)
		second.DayOfMonth = 2
		it := Itinerary{Legs: []Flight{leg(1, "Seattle WA", "Chicago IL", 240), second}}
		assert.ErrorIs(t, it.Validate(), ErrMixedDates)
	})

	t.Run("same flight twice", func(t *testing.T) {
		// A self-loop flight would chain with itself; the id check has
		// to reject it before the connection check passes.
		loop := leg(1, "Seattle WA", "Seattle WA", 60)
		it := Itinerary{Legs: []Flight{loop, loop}}
		assert.ErrorIs(t, it.Validate(), ErrDuplicateLeg)
	})

	t.Run("broken connection", func(t *testing.T) {
		it := Itinerary{Legs: []Flight{
			leg(1, "Seattle WA", "Chicago IL", 240),
			leg(2, "Denver CO", "Boston MA", 150),
		}}
		assert.ErrorIs(t, it.Validate(), ErrBrokenConnection)
	})
}
